package config

import (
	"os"
	"time"
)

type AccountServiceConfig struct {
	Port        string
	PostgresCfg PostgresConfig
	RedisCfg    RedisConfig
	MinioCfg    MinioConfig
	RabbitMQCfg RabbitMQConfig
	AuthCfg     AuthConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	ResourceURL string
	UseSSL      bool
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type AuthConfig struct {
	JWTSecret            string
	AccessTokenLifetime  time.Duration
	RefreshTokenLifetime time.Duration
	DefaultRoleSlug      string
}

func New() *AccountServiceConfig {
	return &AccountServiceConfig{
		Port: getEnv("PORT", "8080"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnv("DB_NAME", "account_service"),
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PWD"),
			DB:       0,
		},
		MinioCfg: MinioConfig{
			Endpoint:    os.Getenv("MINIO_ENDPOINT"),
			AccessKey:   os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:   os.Getenv("MINIO_SECRET_KEY"),
			Bucket:      getEnv("MINIO_BUCKET", "profile-pics"),
			ResourceURL: os.Getenv("MINIO_RESOURCE_URL"),
			UseSSL:      os.Getenv("MINIO_USE_SSL") == "true",
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: os.Getenv("RABBITMQ_USER"),
			Password: os.Getenv("RABBITMQ_PWD"),
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
		},
		AuthCfg: AuthConfig{
			JWTSecret:            os.Getenv("JWT_SECRET"),
			AccessTokenLifetime:  getDuration("ACCESS_TOKEN_LIFETIME", 30*time.Minute),
			RefreshTokenLifetime: getDuration("REFRESH_TOKEN_LIFETIME", 24*time.Hour),
			DefaultRoleSlug:      getEnv("DEFAULT_ROLE_SLUG", "member"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
