package cli

import "os"

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	UserID      string
	DisplayName string
	Output      string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("GUESSNUM_SERVER", "http://localhost:8080"),
		UserID:      os.Getenv("GUESSNUM_USER"),
		DisplayName: os.Getenv("GUESSNUM_NAME"),
		Output:      "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
