package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	pkg_config "github.com/msellami/medigate/pkg/config"
)

type Config struct {
	ListenAddr string
	LogLevel   string

	DatabaseURL string

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment")
	}

	cfg := &Config{
		ListenAddr: pkg_config.EnvDefault("AUTH_ADDR", ":8081"),
		LogLevel:   pkg_config.EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: pkg_config.MustNonEmpty(pkg_config.EnvDefault("DATABASE_URL", ""), "DATABASE_URL"),

		JWTSecret:   pkg_config.MustNonEmptyBytes([]byte(pkg_config.EnvDefault("JWT_SECRET", "")), "JWT_SECRET"),
		JWTIssuer:   pkg_config.EnvDefault("JWT_ISSUER", "medigate"),
		JWTAudience: pkg_config.EnvDefault("JWT_AUDIENCE", "medigate-api"),
		AccessTTL:   pkg_config.EnvDurationDefault("ACCESS_TOKEN_TTL", 60*time.Minute),
		RefreshTTL:  pkg_config.EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		KafkaBrokers: pkg_config.CSV(pkg_config.EnvDefault("KAFKA_BROKERS", "")),
		KafkaTopic:   pkg_config.EnvDefault("KAFKA_USER_EVENTS_TOPIC", "user_events"),
	}
	return cfg
}
