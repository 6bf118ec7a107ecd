package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fc-faces/internal/images"
)

const (
	tokenModeJWT    = "jwt"
	tokenModeStatic = "static"
)

type Config struct {
	Env  string
	Port string

	AuthSecret   string
	TokenMode    string
	PasswordHash string

	DatabaseURL          string
	RunMigrations        bool
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetime    time.Duration
	DBConnMaxIdleTime    time.Duration
	AttemptRetention     time.Duration
	CleanupBatchSize     int
	CronSecret           string
	LoginMaxAttempts     int
	LoginLockDuration    time.Duration
	LoginThrottleBase    time.Duration
	LoginThrottleMax     time.Duration
	LoginRateLimitMax    int
	LoginRateLimitWindow time.Duration

	ImageRoot string
	S3        images.S3Config

	RosterCatalog   string
	RosterShortlist string
	RosterDenylist  []string
	RosterWatch     bool

	SentryDSN string
}

func (c Config) Production() bool {
	return c.Env == "production"
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	cfg := Config{
		Env:  envOrDefault("APP_ENV", "development"),
		Port: envOrDefault("PORT", "8080"),

		AuthSecret:   strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		TokenMode:    strings.ToLower(envOrDefault("AUTH_TOKEN_MODE", tokenModeJWT)),
		PasswordHash: strings.TrimSpace(os.Getenv("APP_PASSWORD_HASH")),

		DatabaseURL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RunMigrations:        EnvBoolOrDefault("RUN_MIGRATIONS_ON_STARTUP", false),
		DBMaxOpenConns:       envIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:       envIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime:    envMinutesOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30),
		DBConnMaxIdleTime:    envMinutesOrDefault("DB_CONN_MAX_IDLE_TIME_MINUTES", 10),
		AttemptRetention:     envDaysOrDefault("AUTH_ATTEMPT_RETENTION_DAYS", 30),
		CleanupBatchSize:     envIntOrDefault("AUTH_CLEANUP_BATCH_SIZE", 500),
		CronSecret:           os.Getenv("CRON_SECRET"),
		LoginMaxAttempts:     envIntOrDefault("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockDuration:    envMinutesOrDefault("LOGIN_LOCK_MINUTES", 15),
		LoginThrottleBase:    envMillisOrDefault("LOGIN_THROTTLE_BASE_MS", 300),
		LoginThrottleMax:     envMillisOrDefault("LOGIN_THROTTLE_MAX_MS", 3000),
		LoginRateLimitMax:    envIntOrDefault("LOGIN_RATE_LIMIT_MAX", 10),
		LoginRateLimitWindow: envSecondsOrDefault("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 60),

		ImageRoot: envOrDefault("IMAGE_ROOT", "public/images"),
		S3: images.S3Config{
			Bucket:    strings.TrimSpace(os.Getenv("IMAGE_S3_BUCKET")),
			Prefix:    strings.TrimSpace(os.Getenv("IMAGE_S3_PREFIX")),
			Region:    envOrDefault("IMAGE_S3_REGION", "us-east-1"),
			Endpoint:  strings.TrimSpace(os.Getenv("IMAGE_S3_ENDPOINT")),
			AccessKey: strings.TrimSpace(os.Getenv("IMAGE_S3_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("IMAGE_S3_SECRET_KEY")),
		},

		RosterCatalog:   strings.TrimSpace(os.Getenv("ROSTER_CATALOG")),
		RosterShortlist: strings.TrimSpace(os.Getenv("ROSTER_SHORTLIST")),
		RosterDenylist:  envList("ROSTER_DENYLIST"),
		RosterWatch:     EnvBoolOrDefault("ROSTER_WATCH", false),

		SentryDSN: os.Getenv("SENTRY_DSN"),
	}

	switch cfg.TokenMode {
	case tokenModeJWT, tokenModeStatic:
	default:
		return Config{}, fmt.Errorf("unsupported AUTH_TOKEN_MODE %q", cfg.TokenMode)
	}

	if cfg.Production() && cfg.TokenMode == tokenModeJWT {
		secret, err := mustEnv("AUTH_SECRET")
		if err != nil {
			return Config{}, err
		}
		cfg.AuthSecret = secret
	}

	return cfg, nil
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envMillisOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Millisecond
}

func envMinutesOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Minute
}

func envDaysOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * 24 * time.Hour
}

func envSecondsOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Second
}

// envList splits a comma-separated variable, dropping blanks.
func envList(name string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func EnvBoolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if value == "" {
		return fallback
	}

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
