package main

import (
	"context"

	"frontdesk/internal/housekeeping"
	"frontdesk/internal/otaimport"
	"frontdesk/internal/reservations/cache"
	"frontdesk/internal/reservations/events"
	"frontdesk/internal/reservations/handler"
	"frontdesk/internal/reservations/repository"
	"frontdesk/internal/reservations/service"
	"frontdesk/internal/reservations/validator"
	"frontdesk/pkg/app"
	"frontdesk/pkg/client"
	"frontdesk/pkg/config"
	"frontdesk/pkg/contracts"
	"frontdesk/pkg/kafka"
	kafka_config "frontdesk/pkg/kafka/config"
	kafka_middleware "frontdesk/pkg/kafka/middleware"
	"frontdesk/pkg/resilience"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	eventsProducer := newProducer(cfg, kafkaCfg, kafkaCfg.ReservationEventsTopic)
	otaProducer := newProducer(cfg, kafkaCfg, kafkaCfg.OTAReservationsTopic)

	cfg.Log.Info("Starting Reservations service")
	reservationService := initServices(cfg, eventsProducer)

	scheduler := housekeeping.NewScheduler(reservationService, cfg)
	if err := scheduler.Start(); err != nil {
		cfg.Log.Fatal("Failed to start housekeeping scheduler", "error", err)
	}

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Client.Redis, cfg.Log),
		contracts.Handlers{
			handler.NewReservationHandler(reservationService, cfg.Log),
			otaimport.NewWebhookHandler(otaProducer, otaimport.NewBookingValidator(), cfg.Log),
		},
	)
	serverApp.OnShutdown(scheduler.Stop)
	serverApp.OnShutdown(func(context.Context) {
		for _, p := range []*kafka.Producer{eventsProducer, otaProducer} {
			if err := p.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "topic", p.Topic(), "error", err)
			}
		}
	})
	serverApp.Run()
}

func newProducer(cfg *config.Config, kafkaCfg *kafka_config.Config, topic string) *kafka.Producer {
	producer, err := kafka.NewProducer(kafkaCfg, topic, "", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(cfg.Metrics))
	}
	return producer
}

func initServices(cfg *config.Config, eventsProducer kafka.Publisher) service.ReservationService {
	hotelClient := client.NewHotelClient(
		cfg.HotelsServiceURL,
		cfg.ServiceClientTimeout,
		resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("hotels-service"), cfg.Log, cfg.Metrics.BreakerStateListener),
		cfg.Log,
	)
	availabilityCache := cache.NewAvailabilityCache(
		cfg.Client.Redis,
		resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("availability-cache"), cfg.Log, cfg.Metrics.BreakerStateListener),
		cfg.AvailabilityCacheTTL,
		ServiceName+":",
		cfg.Metrics,
		cfg.Log,
	)

	reservationService := service.NewReservationService(
		repository.NewMongoReservationRepository(cfg),
		repository.NewRoomLockRepository(cfg),
		hotelClient,
		availabilityCache,
		events.NewKafkaPublisher(eventsProducer, cfg.Log),
		validator.NewReservationValidator(),
		cfg,
	)

	cfg.Log.Info("Reservation service initialized",
		"database", cfg.MongoDatabaseName,
		"hotels_service_url", cfg.HotelsServiceURL,
	)
	return reservationService
}
