package main

import (
	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/handler"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/repository"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/service"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/validator"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/rooms"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/app"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/config"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/events"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	registry := rooms.NewRegistry(cfg.Rooms)
	bookingService, publisher := initServices(cfg, registry)
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event producer", "error", err)
			}
		}()
	}

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(bookingService, registry, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, registry *rooms.Registry) (service.BookingService, *events.Producer) {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	store := repository.NewMongoReservationStore(cfg)
	locker := repository.NewMongoRoomLocker(cfg)

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		var err error
		producer, err = events.NewProducer(events.Config{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.ReservationEventsTopic,
			DLQTopic: cfg.ReservationEventsDLQ,
		})
		if err != nil {
			cfg.Log.Fatal("Failed to create event producer", "error", err)
		}
		producer.Use(events.LoggingMiddleware(cfg.Log))
		cfg.Log.Info("Reservation event producer enabled",
			"topic", cfg.ReservationEventsTopic,
			"dlq_topic", cfg.ReservationEventsDLQ,
		)
	} else {
		cfg.Log.Info("No Kafka brokers configured, reservation events disabled")
	}

	// A nil interface value would not compare equal to nil inside the
	// service, so only wrap the producer when it exists.
	var publisher events.Publisher
	if producer != nil {
		publisher = producer
	}

	bookingService := service.NewBookingService(
		store,
		locker,
		registry,
		reservationValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"rooms", len(cfg.Rooms),
	)
	return bookingService, producer
}
