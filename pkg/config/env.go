package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvMeetingRooms = "MEETING_ROOMS"

	EnvKafkaBrokers           = "KAFKA_BROKERS"
	EnvReservationEventsTopic = "RESERVATION_EVENTS_TOPIC"
	EnvReservationEventsDLQ   = "RESERVATION_EVENTS_DLQ_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvLockTTL           = "ROOM_LOCK_TTL"
	EnvLockRetryInterval = "ROOM_LOCK_RETRY_INTERVAL"
	EnvLockMaxAttempts   = "ROOM_LOCK_MAX_ATTEMPTS"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
