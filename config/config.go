package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendHTTP = "http"
	BackendS3   = "s3"
)

type Config struct {
	ServerURL          string
	TimeoutSeconds     int
	Iterations         int
	InsecureSkipVerify bool
	Backend            string

	// S3 backend settings.
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	config := &Config{
		ServerURL:          getEnv("SERVER_URL", ""),
		TimeoutSeconds:     getEnvInt("TIMEOUT", 30),
		Iterations:         getEnvInt("ITERATIONS", 1),
		InsecureSkipVerify: getEnvBool("INSECURE_SKIP_VERIFY", true),
		Backend:            strings.ToLower(getEnv("BACKEND", BackendHTTP)),
		ApiURL:             getEnv("API_URL", ""),
		AccessKey:          getEnv("ACCESS_KEY", ""),
		SecretKey:          getEnv("SECRET_KEY", ""),
		BucketName:         getEnv("BUCKET_NAME", ""),
		Region:             getEnv("REGION", ""),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring invalid integer in environment", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("ignoring invalid boolean in environment", "key", key, "value", value)
		return defaultValue
	}
	return b
}
