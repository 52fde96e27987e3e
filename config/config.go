// uniconnect/config/config.go
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// JwtKey signs and verifies session tokens. Tests override it directly.
var JwtKey []byte

// Load reads the .env file when present and pulls the secrets the server
// cannot run without.
func Load() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on process environment")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET environment variable not set")
		os.Exit(1)
	}
	JwtKey = []byte(secret)
}
