package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Gateway   GatewayConfig
	Scheduler SchedulerConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey      string
	ExpirationTime int // in hours
}

type GatewayConfig struct {
	PaystackSecretKey   string
	PaystackBaseURL     string
	MonnifyAPIKey       string
	MonnifySecretKey    string
	MonnifyContractCode string
	MonnifyBaseURL      string
	CallbackURL         string
	Timeout             time.Duration
}

type SchedulerConfig struct {
	Interval time.Duration
}

type AdminConfig struct {
	BootstrapToken string
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "ajebo_payments"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key"),
			ExpirationTime: getEnvInt("JWT_EXPIRY", 24),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Gateway: GatewayConfig{
			PaystackSecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
			PaystackBaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			MonnifyAPIKey:       getEnv("MONNIFY_API_KEY", ""),
			MonnifySecretKey:    getEnv("MONNIFY_SECRET_KEY", ""),
			MonnifyContractCode: getEnv("MONNIFY_CONTRACT_CODE", ""),
			MonnifyBaseURL:      getEnv("MONNIFY_BASE_URL", "https://api.monnify.com"),
			CallbackURL:         getEnv("PAYMENT_CALLBACK_URL", ""),
			Timeout:             getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),
		},
		Scheduler: SchedulerConfig{
			Interval: getEnvDuration("SCHEDULER_INTERVAL", time.Minute),
		},
		Admin: AdminConfig{
			BootstrapToken: getEnv("ADMIN_BOOTSTRAP_TOKEN", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
