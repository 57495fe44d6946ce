package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Port          string
	Env           string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string
	SessionSecret []byte
	SessionTTL    time.Duration
	UploadDir     string
	LogLevel      string
	CORSOrigins   []string
	RateLimitRPS  float64
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	// a missing .env is fine; the environment may carry everything
	_ = godotenv.Load()

	port := getEnv("PORT", ":3000")
	if port[0] != ':' {
		port = ":" + port
	}

	cfg := Config{
		Port:          port,
		Env:           getEnv("APP_ENV", "dev"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:       getEnv("MONGO_DB", "recipe_app"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionSecret: []byte(os.Getenv("SESSION_SECRET")),
		SessionTTL:    getDuration("SESSION_TTL", 12*time.Hour),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPS:  getFloat("RATE_LIMIT_RPS", 5),
	}

	if len(cfg.SessionSecret) == 0 {
		if !cfg.IsDev() {
			return Config{}, errors.New("SESSION_SECRET must be set outside dev")
		}
		cfg.SessionSecret = []byte("dev-only-session-secret")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
