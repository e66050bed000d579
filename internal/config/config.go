// Package config loads process configuration from the environment, with an
// optional .env file for development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the endpoints shared by the CLI and the relay daemon.
type Config struct {
	// ServerURL is the hosted relay base URL used by create/join.
	ServerURL string

	// TranslateAPI is the translation backend base URL.
	TranslateAPI string

	// RelayListen is the address the relay daemon listens on.
	RelayListen string
}

// Load reads configuration from the environment. A missing .env file is not
// an error; system environment variables always apply.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerURL:    getEnv("TRANSLACHAT_SERVER", "http://localhost:3000"),
		TranslateAPI: getEnv("TRANSLATE_API", "http://localhost:5050"),
		RelayListen:  getEnv("RELAYD_ADDR", ":3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
