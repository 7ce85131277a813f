package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "mb_meetings"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultLogLevel = "info"

	DefaultReservationEventsTopic = "reservation-events"
	DefaultReservationEventsDLQ   = "reservation-events-dlq"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultLockTTL           = 10 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond
	DefaultLockMaxAttempts   = 20

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)

// DefaultMeetingRooms mirrors the room catalog the scheduling front-end
// ships with; overridable via MEETING_ROOMS.
const DefaultMeetingRooms = `[
  {"id": "room-a", "name": "Conference Room A"},
  {"id": "room-b", "name": "Conference Room B"},
  {"id": "room-c", "name": "Boardroom"}
]`
