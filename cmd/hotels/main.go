package main

import (
	"frontdesk/internal/hotels/handler"
	"frontdesk/internal/hotels/repository"
	"frontdesk/internal/hotels/service"
	"frontdesk/internal/hotels/validator"
	"frontdesk/pkg/app"
	"frontdesk/pkg/config"
)

const ServiceName = "hotels"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Hotels service")
	hotelRepo := repository.NewMongoHotelRepository(cfg)
	hotelService := initServices(cfg, hotelRepo)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		handler.NewHealthHandler(cfg.Client.Mongo, hotelRepo.Count, cfg.Log),
		handler.NewHotelHandler(hotelService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, hotelRepo repository.HotelRepository) service.HotelService {
	hotelValidator := validator.NewHotelValidator()
	hotelService := service.NewHotelService(
		hotelRepo,
		hotelValidator,
		cfg,
	)

	cfg.Log.Info("Hotel service initialized", "database", cfg.MongoDatabaseName)
	return hotelService
}
