package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server     ServerConfig
	App        AppConfig
	PlatformDB DatabaseConfig
	TenantDB   TenantDBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Captcha    CaptchaConfig
	OTP        OTPConfig
	Mail       MailConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type AppConfig struct {
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// TenantDBConfig describes how per-tenant databases are reached. Tenant
// databases live on the same server as the platform database and are named
// db_tenant_<tenantID>.
type TenantDBConfig struct {
	MaxConns           int32
	MinConns           int32
	DialTimeoutSeconds int
	HealthCheckSeconds int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type CaptchaConfig struct {
	Driver   string // "http" or "noop"
	Endpoint string
	Secret   string
	MinScore float64
}

type OTPConfig struct {
	Driver   string // "http" or "mock"
	Endpoint string
	APIKey   string
}

type MailConfig struct {
	Driver string // "log" only for now
	From   string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		PlatformDB: DatabaseConfig{
			Host:     getEnv("PLATFORM_DB_HOST", "localhost"),
			Port:     getEnv("PLATFORM_DB_PORT", "5432"),
			User:     getEnv("PLATFORM_DB_USER", "yesp_api"),
			Password: getEnv("PLATFORM_DB_PASSWORD", "yesp_api_password"),
			DBName:   getEnv("PLATFORM_DB_NAME", "platform_db"),
			SSLMode:  getEnv("PLATFORM_DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvAsInt("PLATFORM_DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("PLATFORM_DB_MIN_CONNS", 5)),
		},
		TenantDB: TenantDBConfig{
			MaxConns:           int32(getEnvAsInt("TENANT_DB_MAX_CONNS", 20)),
			MinConns:           int32(getEnvAsInt("TENANT_DB_MIN_CONNS", 2)),
			DialTimeoutSeconds: getEnvAsInt("TENANT_DB_DIAL_TIMEOUT_SECONDS", 12),
			HealthCheckSeconds: getEnvAsInt("TENANT_DB_HEALTH_CHECK_SECONDS", 30),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Captcha: CaptchaConfig{
			Driver:   getEnv("CAPTCHA_DRIVER", "noop"),
			Endpoint: getEnv("CAPTCHA_ENDPOINT", "https://www.google.com/recaptcha/api/siteverify"),
			Secret:   getEnv("CAPTCHA_SECRET", ""),
			MinScore: getEnvAsFloat("CAPTCHA_MIN_SCORE", 0.5),
		},
		OTP: OTPConfig{
			Driver:   getEnv("OTP_DRIVER", "mock"),
			Endpoint: getEnv("OTP_ENDPOINT", ""),
			APIKey:   getEnv("OTP_API_KEY", ""),
		},
		Mail: MailConfig{
			Driver: getEnv("MAIL_DRIVER", "log"),
			From:   getEnv("MAIL_FROM", "no-reply@yesp.store"),
		},
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

// TenantConnectionString derives the per-tenant database address from the
// platform server address plus the tenant identifier. Hyphens are replaced
// with underscores so the database name stays a valid Postgres identifier.
func (c *Config) TenantConnectionString(tenantID string) string {
	dbName := fmt.Sprintf("db_tenant_%s", strings.ReplaceAll(tenantID, "-", "_"))
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PlatformDB.User,
		c.PlatformDB.Password,
		c.PlatformDB.Host,
		c.PlatformDB.Port,
		dbName,
		c.PlatformDB.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
