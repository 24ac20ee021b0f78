package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Alert        AlertConfig
	Notification NotificationConfig
	Metrics      MetricsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `validate:"required"`
	Env                   string `validate:"required"`
	Host                  string
	Port                  string `validate:"required,numeric"`
	Version               string
	RequestTimeoutSeconds int `validate:"gte=0"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32 `validate:"gte=0"`
	MinConns       int32 `validate:"gte=0"`
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string `validate:"required"`
	AccessTokenTTLMinutes int    `validate:"gte=0"`
	// JobKeyHash is a bcrypt hash of the key external schedulers send in X-Job-Key.
	JobKeyHash string
}

// AlertConfig tunes the SLA alert scheduler.
type AlertConfig struct {
	Enabled            bool
	CronSchedule       string `validate:"required_if=Enabled true"`
	ShopWorkers        int    `validate:"min=1,max=64"`
	CaseWorkers        int    `validate:"min=1,max=256"`
	RunTimeoutSeconds  int    `validate:"min=0"`
	SkipIfStillRunning bool
	ClaimTTLSeconds    int `validate:"min=0"`

	// LegacyFinalStatusesEnabled keeps the hardcoded terminal status keys for shops whose
	// status catalog predates the is_final_status flag.
	LegacyFinalStatusesEnabled bool
	LegacyFinalStatuses        []string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string `validate:"omitempty,url"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string `validate:"omitempty,startswith=/"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "repair-sla-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			JobKeyHash:            os.Getenv("AUTH_JOB_KEY_HASH"),
		},
		Alert: AlertConfig{
			Enabled:                    getEnvAsBool("ALERT_ENABLED", true),
			CronSchedule:               getEnv("ALERT_CRON_SCHEDULE", "@every 30m"),
			ShopWorkers:                getEnvAsInt("ALERT_SHOP_WORKERS", 4),
			CaseWorkers:                getEnvAsInt("ALERT_CASE_WORKERS", 8),
			RunTimeoutSeconds:          getEnvAsInt("ALERT_RUN_TIMEOUT_SECONDS", 300),
			SkipIfStillRunning:         getEnvAsBool("ALERT_SKIP_IF_STILL_RUNNING", false),
			ClaimTTLSeconds:            getEnvAsInt("ALERT_CLAIM_TTL_SECONDS", 600),
			LegacyFinalStatusesEnabled: getEnvAsBool("ALERT_LEGACY_FINAL_STATUSES_ENABLED", true),
			LegacyFinalStatuses:        getEnvAsList("ALERT_LEGACY_FINAL_STATUSES", DefaultLegacyFinalStatuses),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultLegacyFinalStatuses are the status keys treated as terminal before shops had a
// per-status is_final_status flag.
var DefaultLegacyFinalStatuses = []string{"completed", "delivered", "picked_up", "cancelled", "closed"}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RunTimeout returns the soft per-run deadline, zero when disabled.
func (a AlertConfig) RunTimeout() time.Duration {
	if a.RunTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RunTimeoutSeconds) * time.Second
}

// ClaimTTL returns how long a Redis alert claim lives.
func (a AlertConfig) ClaimTTL() time.Duration {
	if a.ClaimTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(a.ClaimTTLSeconds) * time.Second
}

// ActiveLegacyStatuses returns the legacy terminal keys when the flag is on.
func (a AlertConfig) ActiveLegacyStatuses() []string {
	if !a.LegacyFinalStatusesEnabled {
		return nil
	}
	return a.LegacyFinalStatuses
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
