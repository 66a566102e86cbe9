package main

import (
	"context"
	"errors"
	"time"

	"frontdesk/internal/otaimport"
	"frontdesk/pkg/app"
	"frontdesk/pkg/client"
	"frontdesk/pkg/config"
	"frontdesk/pkg/contracts"
	"frontdesk/pkg/kafka"
	kafka_config "frontdesk/pkg/kafka/config"
	kafka_middleware "frontdesk/pkg/kafka/middleware"
	"frontdesk/pkg/resilience"
)

const (
	ServiceName = "ota-import"

	startupWait = 60 * time.Second
	pingWait    = time.Second
)

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	reservationClient := client.NewReservationClient(cfg.ReservationsServiceURL, cfg.ServiceClientTimeout)
	hotelClient := client.NewHotelClient(
		cfg.HotelsServiceURL,
		cfg.ServiceClientTimeout,
		resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("hotels-service"), cfg.Log, cfg.Metrics.BreakerStateListener),
		cfg.Log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reservationClient.WaitForHealthy(ctx, startupWait); err != nil {
		cfg.Log.Warn("Reservations service not healthy yet, consuming anyway", "error", err)
	}

	importer := otaimport.NewImporter(hotelClient, reservationClient, otaimport.NewBookingValidator(), cfg)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.OTAReservationsTopic,
		kafkaCfg.OTAImportGroupID,
		kafkaCfg.OTAReservationsDLQ,
		importer.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(cfg.Metrics))
	}

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Kafka consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		otaimport.NewHealthHandler(
			func(ctx context.Context) error { return reservationClient.WaitForHealthy(ctx, pingWait) },
			consumer.Lag,
			cfg.Log,
		),
		contracts.Handlers{},
	)
	serverApp.OnShutdown(func(shutdownCtx context.Context) {
		cancel()
		select {
		case <-consumerDone:
		case <-shutdownCtx.Done():
			cfg.Log.Warn("Kafka consumer did not stop before shutdown deadline")
		}
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	})
	serverApp.Run()
}
