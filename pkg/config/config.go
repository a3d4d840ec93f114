package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresUrl             string
	MongoURI                string
	MongoDatabase           string
	AdminUserID             uint
	LogLevel                string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresUrl:             getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DB", "vidora"),
		AdminUserID:             getEnvUint("ADMIN_USER_ID", 0),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint) uint {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint(parsed)
		}
	}
	return defaultValue
}
