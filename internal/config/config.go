package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string

	// CookieSalt is the application-wide salt mixed into cookie passwords.
	CookieSalt string

	// Push relay settings. An empty PushHost disables the relay and sync
	// payloads are logged instead.
	PushHost       string
	PushHTTPPort   string
	PushSocketPort string
	PushAuthKey    string
}

func Load() *Config {
	// Missing .env is fine; environment variables take over.
	_ = godotenv.Load()

	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", "courseboard"),
		DBPassword:     getEnv("DB_PASSWORD", "courseboard"),
		DBName:         getEnv("DB_NAME", "courseboard"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		SessionSecret:  getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		CookieSalt:     getEnv("COOKIE_SALT", "default-cookie-salt-change-me"),
		PushHost:       getEnv("PUSH_HOST", ""),
		PushHTTPPort:   getEnv("PUSH_HTTP_PORT", "8081"),
		PushSocketPort: getEnv("PUSH_SOCKET_PORT", "8082"),
		PushAuthKey:    getEnv("PUSH_AUTH_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
