package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerPort         int           `json:"server_port"`
	AppEnv             string        `json:"app_env"`
	JWTSecretKey       string        `json:"jwt_secret_key"`
	JWTExpirationHours int           `json:"jwt_expiration_hours"`
	DefaultRateLimit   int           `json:"default_rate_limit"`
	GlobalRateLimit    int           `json:"global_rate_limit"`
	DefaultTenants     []string      `json:"default_tenants"`
	SeedFloor          int           `json:"seed_floor"`
	SeedConcurrency    int           `json:"seed_concurrency"`
	SchemaCacheTTL     time.Duration `json:"schema_cache_ttl"`
	MigrationLockWait  time.Duration `json:"migration_lock_wait"`
	WorkerCount        int           `json:"worker_count"`
	WorkerPollInterval time.Duration `json:"worker_poll_interval"`
	CORSAllowedOrigins []string      `json:"cors_allowed_origins"`
}

func Load() (*Config, error) {
	serverPort, _ := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if serverPort == 0 {
		serverPort = 10000
	}

	jwtExpirationHours, _ := strconv.Atoi(os.Getenv("JWT_EXPIRATION_HOURS"))
	if jwtExpirationHours == 0 {
		jwtExpirationHours = 24
	}

	defaultRateLimit, _ := strconv.Atoi(os.Getenv("DEFAULT_RATE_LIMIT"))
	if defaultRateLimit == 0 {
		defaultRateLimit = 1000 // 1000 requests per minute per tenant
	}

	globalRateLimit, _ := strconv.Atoi(os.Getenv("GLOBAL_RATE_LIMIT"))
	if globalRateLimit == 0 {
		globalRateLimit = 10000 // 10000 requests per minute globally per IP
	}

	return &Config{
		ServerPort:         serverPort,
		AppEnv:             os.Getenv("APP_ENV"),
		JWTSecretKey:       os.Getenv("JWT_SECRET_KEY"),
		JWTExpirationHours: jwtExpirationHours,
		DefaultRateLimit:   defaultRateLimit,
		GlobalRateLimit:    globalRateLimit,
		DefaultTenants:     splitList(getEnvWithDefault("DEFAULT_TENANTS", "sap,ibm,public")),
		SeedFloor:          getEnvIntWithDefault("SEED_FLOOR", 30),
		SeedConcurrency:    getEnvIntWithDefault("SEED_CONCURRENCY", 1),
		SchemaCacheTTL:     getEnvDurationWithDefault("SCHEMA_CACHE_TTL", time.Minute),
		MigrationLockWait:  getEnvDurationWithDefault("MIGRATION_LOCK_WAIT", 30*time.Second),
		WorkerCount:        getEnvIntWithDefault("WORKER_COUNT", 1),
		WorkerPollInterval: getEnvDurationWithDefault("WORKER_POLL_INTERVAL", 5*time.Second),
		CORSAllowedOrigins: splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
	}, nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
