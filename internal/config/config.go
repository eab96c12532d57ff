package config

import (
	"log/slog"
	"os"
)

const (
	// MaxSamplesPerUpload bounds the number of self-play samples accepted in one request.
	MaxSamplesPerUpload = 20000

	// MaxGamesPerUpload bounds the number of finished games accepted in one request.
	MaxGamesPerUpload = 500
)

// ServerConfig holds all configuration values loaded from environment variables.
type ServerConfig struct {
	ServerHost        string
	ServerPort        string
	RedisURL          string
	PostgresURL       string
	BasicAuthUsername string
	BasicAuthPassword string
	Token             string
	Prefork           bool
}

// LoadServerConfig loads configuration from environment variables.
func LoadServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerHost:        getEnvMust("REVERSI_SERVER_HOST"),
		ServerPort:        getEnvMust("REVERSI_SERVER_PORT"),
		RedisURL:          getEnvMust("REVERSI_REDIS_URL"),
		PostgresURL:       getEnvMust("REVERSI_POSTGRES_URL"),
		BasicAuthUsername: getEnvMust("REVERSI_SERVER_BASIC_AUTH_USER"),
		BasicAuthPassword: getEnvMust("REVERSI_SERVER_BASIC_AUTH_PASS"),
		Token:             getEnvMust("REVERSI_SERVER_TOKEN"),
		Prefork:           getEnvMustBool("REVERSI_SERVER_PREFORK"),
	}
}

// UploadConfig tells self-play workers where to submit finished games.
type UploadConfig struct {
	ServerURL string
	Token     string
}

func LoadUploadConfig() *UploadConfig {
	return &UploadConfig{
		ServerURL: getEnvMust("REVERSI_SERVER_URL"),
		Token:     getEnvMust("REVERSI_SERVER_TOKEN"),
	}
}

// getEnvMust either returns the environment variable or logs a fatal error if it is not set.
func getEnvMust(key string) string {
	value := os.Getenv(key)
	if value == "" {
		slog.Error("Environment variable is not set", "key", key)
		os.Exit(1)
	}
	return value
}

func getEnvMustBool(key string) bool {
	value := getEnvMust(key)

	if value != "true" && value != "false" {
		slog.Error("Cannot load environment variable, it must be \"true\" or \"false\"", "key", key, "value", value)
		os.Exit(1)
	}

	return value == "true"
}
