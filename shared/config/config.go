package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	// Runtime
	AppEnv      string
	ServicePort string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisEnabled     bool
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          string
	SnapshotCacheTTL string

	// MinIO Configuration
	MinIOEnabled      bool
	MinIOServerURL    string
	MinIORootUser     string
	MinIORootPassword string
	MinIOUseSSL       bool
	MinIOBucketName   string

	// Frontend URL (CORS and websocket origin)
	FrontendURL string

	// Organization directory
	RootPolicy       string
	PaletteSize      string
	ListDefaultLimit string
	ListMaxLimit     string

	// Write rate limiting
	WriteRateLimitMaxRequests   string
	WriteRateLimitWindowSeconds string
	WriteRateLimitBlockSeconds  string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	log := zap.L()
	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Info("✅ Environment loaded", zap.String("path", path))
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg = &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		ServicePort: getEnv("ORG_SERVICE_PORT", "8003"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "eduadmin"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisEnabled:     getEnvAsBool("REDIS_ENABLED", false),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnv("REDIS_DB", "0"),
		SnapshotCacheTTL: getEnv("SNAPSHOT_CACHE_TTL_SECONDS", "60"),

		// MinIO Configuration
		MinIOEnabled:      getEnvAsBool("MINIO_ENABLED", false),
		MinIOServerURL:    getEnv("MINIO_SERVER_URL", "http://localhost:9000"),
		MinIORootUser:     getEnv("MINIO_ROOT_USER", "minioadmin"),
		MinIORootPassword: getEnv("MINIO_ROOT_PASSWORD", "minioadmin"),
		MinIOUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		MinIOBucketName:   getEnv("MINIO_BUCKET_NAME", "eduadmin-exports"),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Organization directory
		RootPolicy:       getEnv("ORG_ROOT_POLICY", "warn"),
		PaletteSize:      getEnv("ORG_PALETTE_SIZE", "4"),
		ListDefaultLimit: getEnv("ORG_LIST_DEFAULT_LIMIT", "20"),
		ListMaxLimit:     getEnv("ORG_LIST_MAX_LIMIT", "100"),

		// Write rate limiting
		WriteRateLimitMaxRequests:   getEnv("WRITE_RATE_LIMIT_MAX_REQUESTS", "60"),
		WriteRateLimitWindowSeconds: getEnv("WRITE_RATE_LIMIT_WINDOW_SECONDS", "60"),
		WriteRateLimitBlockSeconds:  getEnv("WRITE_RATE_LIMIT_BLOCK_SECONDS", "60"),
	}

	log.Info("✅ Configuration loaded successfully", zap.String("env", cfg.AppEnv))
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetSnapshotCacheTTLSeconds returns the snapshot cache TTL as integer
func (c *Config) GetSnapshotCacheTTLSeconds() int {
	return atoiOr(c.SnapshotCacheTTL, 60)
}

// GetPaletteSize returns the number of level styles known to the diagram
func (c *Config) GetPaletteSize() int {
	return atoiOr(c.PaletteSize, 4)
}

// GetListDefaultLimit returns the page size used when the request has none
func (c *Config) GetListDefaultLimit() int {
	return atoiOr(c.ListDefaultLimit, 20)
}

// GetListMaxLimit returns the largest page size a request may ask for
func (c *Config) GetListMaxLimit() int {
	return atoiOr(c.ListMaxLimit, 100)
}

// GetWriteRateLimitMaxRequests returns write requests allowed per window as integer
func (c *Config) GetWriteRateLimitMaxRequests() int {
	return atoiOr(c.WriteRateLimitMaxRequests, 60)
}

// GetWriteRateLimitWindowSeconds returns the write rate limit window as integer
func (c *Config) GetWriteRateLimitWindowSeconds() int {
	return atoiOr(c.WriteRateLimitWindowSeconds, 60)
}

// GetWriteRateLimitBlockSeconds returns how long a throttled client stays blocked
func (c *Config) GetWriteRateLimitBlockSeconds() int {
	return atoiOr(c.WriteRateLimitBlockSeconds, 60)
}

// GetRedisDB returns the redis database number
func (c *Config) GetRedisDB() int {
	return atoiOr(c.RedisDB, 0)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func atoiOr(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil && v > 0 {
		return v
	}
	return fallback
}
