package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Simpaskor schedule upstream
	SimpaskorScheduleURL string
	SimpaskorTimeout     time.Duration

	// Uploads
	UploadDir      string
	MaxUploadBytes int64

	// Seed
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

var defaults = map[string]any{
	"ENV":                    "development",
	"LOG_LEVEL":              "info",
	"PORT":                   "8080",
	"DB_HOST":                "localhost",
	"DB_PORT":                "5432",
	"DB_USER":                "bukukas",
	"DB_PASSWORD":            "bukukas",
	"DB_NAME":                "bukukas",
	"DB_SSLMODE":             "disable",
	"JWT_SECRET":             "fallback-secret-key-for-dev-only",
	"JWT_EXPIRES_IN":         "24h",
	"SIMPASKOR_SCHEDULE_URL": "https://simpaskor.id/api/landing_page.php",
	"SIMPASKOR_TIMEOUT":      "10s",
	"UPLOAD_DIR":             "storage/public",
	"MAX_UPLOAD_BYTES":       2 << 20,
	"ADMIN_NAME":             "Administrator",
	"ADMIN_EMAIL":            "admin@bukukas.local",
	"ADMIN_PASSWORD":         "",
}

var appConfig *Config

// Load loads configuration from the environment, after reading .env if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	config := &Config{
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		Port: v.GetString("PORT"),

		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		JWTSecret: v.GetString("JWT_SECRET"),

		SimpaskorScheduleURL: v.GetString("SIMPASKOR_SCHEDULE_URL"),

		UploadDir:      v.GetString("UPLOAD_DIR"),
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		AdminName:     v.GetString("ADMIN_NAME"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	config.JWTExpirationDur = duration(v, "JWT_EXPIRES_IN", 24*time.Hour)
	config.SimpaskorTimeout = duration(v, "SIMPASKOR_TIMEOUT", 10*time.Second)

	appConfig = config
	return config, nil
}

// duration parses key as a Go duration, logging and falling back on bad input.
func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}
