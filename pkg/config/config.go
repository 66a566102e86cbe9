package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"frontdesk/pkg/client"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/metrics"
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoTransactions bool

	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	AvailabilityCacheTTL time.Duration

	Port string

	HotelsServiceURL       string
	ReservationsServiceURL string
	ServiceClientTimeout   time.Duration

	OTAWebhookSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultTimeZone           string
	DefaultReleaseHour        int
	DateCacheSize             int
	RoomMatchThreshold        float64
	MaxAvailabilityWindowDays int
	RoomLockTTL               time.Duration

	LockPurgeSchedule  string
	SalesCloseSchedule string

	Log     *logger.Logger
	Client  *client.Client
	Metrics *metrics.Metrics
}

// Load reads an optional .env file, then the environment. Invalid settings
// are fatal.
func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()
	logLevel := getEnvStr(EnvLogLevel, DefaultLogLevel)

	cfg := &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoTransactions: getEnvBool(EnvMongoTransactions, DefaultMongoTransactions),

		RedisAddr:            getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword:        getEnvStr(EnvRedisPassword, ""),
		RedisDB:              getEnvNum(EnvRedisDB, DefaultRedisDB),
		AvailabilityCacheTTL: getEnvDuration(EnvAvailabilityCacheTTL, DefaultAvailabilityCacheTTL),

		Port: getEnvStr(EnvPort, DefaultPort),

		HotelsServiceURL:       getEnvStr(EnvHotelsServiceURL, DefaultHotelsServiceURL),
		ReservationsServiceURL: getEnvStr(EnvReservationsServiceURL, DefaultReservationsServiceURL),
		ServiceClientTimeout:   getEnvDuration(EnvServiceClientTimeout, DefaultServiceClientTimeout),

		OTAWebhookSecret: getEnvStr(EnvOTAWebhookSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DefaultTimeZone:           getEnvStr(EnvDefaultTimeZone, DefaultTimeZone),
		DefaultReleaseHour:        getEnvNum(EnvDefaultReleaseHour, DefaultReleaseHour),
		DateCacheSize:             getEnvNum(EnvDateCacheSize, DefaultDateCacheSize),
		RoomMatchThreshold:        getEnvFloat(EnvRoomMatchThreshold, DefaultRoomMatchThreshold),
		MaxAvailabilityWindowDays: getEnvNum(EnvMaxAvailabilityWindowDays, DefaultMaxAvailabilityWindowDays),
		RoomLockTTL:               getEnvDuration(EnvRoomLockTTL, DefaultRoomLockTTL),

		LockPurgeSchedule:  getEnvStr(EnvLockPurgeSchedule, DefaultLockPurgeSchedule),
		SalesCloseSchedule: getEnvStr(EnvSalesCloseSchedule, DefaultSalesCloseSchedule),

		Log: logger.New(logger.Config{
			Level:     logLevel,
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client:  client.NewClient(),
		Metrics: metrics.New(metrics.DefaultConfig(serviceName)),
	}

	if _, ok := logger.ParseLevel(logLevel); !ok {
		cfg.Log.Warn("Unknown log level, using info", "log_level", logLevel)
	}
	if envFileErr != nil && !os.IsNotExist(envFileErr) {
		cfg.Log.Warn("Failed to read .env file", "error", envFileErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoDatabaseName, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}
	if cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty")
	}

	for name, raw := range map[string]string{
		"HotelsServiceURL":       cfg.HotelsServiceURL,
		"ReservationsServiceURL": cfg.ReservationsServiceURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("%s must be an absolute URL, got: %s", name, raw))
		}
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"AvailabilityCacheTTL", cfg.AvailabilityCacheTTL},
		{"ServiceClientTimeout", cfg.ServiceClientTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"RoomLockTTL", cfg.RoomLockTTL},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", p.name, p.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil || cfg.DefaultTimeZone == "" {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone must be an IANA zone name, got: %q", cfg.DefaultTimeZone))
	}
	if cfg.DefaultReleaseHour < 0 || cfg.DefaultReleaseHour > 23 {
		errors = append(errors, fmt.Sprintf("DefaultReleaseHour must be between 0 and 23, got: %d", cfg.DefaultReleaseHour))
	}
	if cfg.DateCacheSize <= 0 {
		errors = append(errors, fmt.Sprintf("DateCacheSize must be positive, got: %d", cfg.DateCacheSize))
	}
	if cfg.RoomMatchThreshold <= 0 || cfg.RoomMatchThreshold > 1 {
		errors = append(errors, fmt.Sprintf("RoomMatchThreshold must be in (0, 1], got: %g", cfg.RoomMatchThreshold))
	}
	if cfg.MaxAvailabilityWindowDays <= 0 {
		errors = append(errors, fmt.Sprintf("MaxAvailabilityWindowDays must be positive, got: %d", cfg.MaxAvailabilityWindowDays))
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"LockPurgeSchedule":  cfg.LockPurgeSchedule,
		"SalesCloseSchedule": cfg.SalesCloseSchedule,
	} {
		if _, err := parser.Parse(spec); err != nil {
			errors = append(errors, fmt.Sprintf("%s is not a valid cron spec (%s): %v", name, spec, err))
		}
	}

	if len(errors) > 0 {
		var b strings.Builder
		b.WriteString("Configuration validation failed:\n")
		for i, err := range errors {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", b.String())
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_transactions", cfg.MongoTransactions,
		"redis_addr", cfg.RedisAddr,
		"availability_cache_ttl", cfg.AvailabilityCacheTTL,
		"port", cfg.Port,
		"hotels_service_url", cfg.HotelsServiceURL,
		"reservations_service_url", cfg.ReservationsServiceURL,
		"ota_webhook_secret_set", cfg.OTAWebhookSecret != "",
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"default_time_zone", cfg.DefaultTimeZone,
		"default_release_hour", cfg.DefaultReleaseHour,
		"date_cache_size", cfg.DateCacheSize,
		"room_match_threshold", cfg.RoomMatchThreshold,
		"max_availability_window_days", cfg.MaxAvailabilityWindowDays,
		"room_lock_ttl", cfg.RoomLockTTL,
		"lock_purge_schedule", cfg.LockPurgeSchedule,
		"sales_close_schedule", cfg.SalesCloseSchedule,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return FallbackPaginationLimit
	}
	return min(limit, DefaultPaginationLimit)
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
