package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa las pocas env vars que usa el servicio.
type Config struct {
	Port      string
	DBDSN     string
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration
}

// Load lee .env si existe (dev) y luego el entorno.
// En producción el .env normalmente no está y no es un error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:      getenv("PORT", "8080"),
		DBDSN:     os.Getenv("DB_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getenv("JWT_ISSUER", "pet-census"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
