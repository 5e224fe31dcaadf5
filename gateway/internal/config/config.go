package config

import (
	"log"

	"github.com/joho/godotenv"

	pkg_config "github.com/msellami/medigate/pkg/config"
)

type Config struct {
	ListenAddr string
	LogLevel   string

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string

	AuthURL         string
	PatientURL      string
	DoctorURL       string
	AppointmentURL  string
	ImagingURL      string
	RecordURL       string
	NotificationURL string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment")
	}

	return &Config{
		ListenAddr: pkg_config.EnvDefault("GATEWAY_ADDR", ":8080"),
		LogLevel:   pkg_config.EnvDefault("LOG_LEVEL", "info"),

		JWTSecret:   pkg_config.MustNonEmptyBytes([]byte(pkg_config.EnvDefault("JWT_SECRET", "")), "JWT_SECRET"),
		JWTIssuer:   pkg_config.EnvDefault("JWT_ISSUER", "medigate"),
		JWTAudience: pkg_config.EnvDefault("JWT_AUDIENCE", "medigate-api"),

		AuthURL:         pkg_config.MustNonEmpty(pkg_config.EnvDefault("AUTH_URL", ""), "AUTH_URL"),
		PatientURL:      pkg_config.EnvDefault("PATIENT_URL", ""),
		DoctorURL:       pkg_config.EnvDefault("DOCTOR_URL", ""),
		AppointmentURL:  pkg_config.EnvDefault("APPOINTMENT_URL", ""),
		ImagingURL:      pkg_config.EnvDefault("IMAGING_URL", ""),
		RecordURL:       pkg_config.EnvDefault("RECORD_URL", ""),
		NotificationURL: pkg_config.EnvDefault("NOTIFICATION_URL", ""),
	}
}
