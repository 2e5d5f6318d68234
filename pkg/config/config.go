package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port                    string
	Env                     string
	StoreDriver             string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	LogLevel                string
	LogFile                 string
	ObserverBuffer          int
}

// Load reads the configuration from the environment, after loading a .env file if present
func Load() *Config {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		StoreDriver:             getEnv("STORE_DRIVER", DriverMemory),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialhub"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFile:                 getEnv("LOG_FILE", ""),
		ObserverBuffer:          getEnvInt("OBSERVER_BUFFER", 64),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
