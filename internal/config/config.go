package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultSpoonacularURL = "https://api.spoonacular.com"
	defaultMLServiceURL   = "http://localhost:8000"
	defaultPort           = "5050"
	defaultCORSOrigin     = "http://localhost:4200"
	defaultUploadDir      = "uploads"
	defaultUserID         = 1

	// ClassifierHTTP forwards images to the classification service.
	ClassifierHTTP = "http"
	// ClassifierGemini asks Gemini for the ingredient label.
	ClassifierGemini = "gemini"
)

// Config holds the configuration for the application.
type Config struct {
	DatabaseURL       string
	DatabaseAccessKey string

	SpoonacularURL    string
	SpoonacularAPIKey string

	MLServiceURL      string
	ClassifierBackend string
	GeminiAPIKey      string

	Port           string
	AllowedOrigins []string
	UploadDir      string
	DefaultUserID  int64
	LogLevel       string
}

// Load reads a .env file from the working directory when one exists and then
// builds the Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return NewFromEnv()
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	spoonacularKey := os.Getenv("SPOONACULAR_API_KEY")
	if spoonacularKey == "" {
		slog.Warn("SPOONACULAR_API_KEY environment variable not set, recipe search will fail upstream")
	}

	backend := strings.ToLower(getEnv("CLASSIFIER_BACKEND", ClassifierHTTP))
	if backend != ClassifierHTTP && backend != ClassifierGemini {
		return nil, fmt.Errorf("CLASSIFIER_BACKEND must be %q or %q, got %q", ClassifierHTTP, ClassifierGemini, backend)
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if backend == ClassifierGemini && geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	port := getEnv("PORT", defaultPort)
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
	}

	userID := int64(defaultUserID)
	if raw := os.Getenv("DEFAULT_USER_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid DEFAULT_USER_ID %q", raw)
		}
		userID = id
	}

	origins := splitList(getEnv("CORS_ORIGIN", defaultCORSOrigin))
	if len(origins) == 0 {
		origins = []string{defaultCORSOrigin}
	}

	return &Config{
		DatabaseURL:       databaseURL,
		DatabaseAccessKey: os.Getenv("DATABASE_ACCESS_KEY"),
		SpoonacularURL:    strings.TrimRight(getEnv("SPOONACULAR_BASE_URL", defaultSpoonacularURL), "/"),
		SpoonacularAPIKey: spoonacularKey,
		MLServiceURL:      strings.TrimRight(getEnv("ML_SERVICE_URL", defaultMLServiceURL), "/"),
		ClassifierBackend: backend,
		GeminiAPIKey:      geminiKey,
		Port:              port,
		AllowedOrigins:    origins,
		UploadDir:         getEnv("UPLOAD_DIR", defaultUploadDir),
		DefaultUserID:     userID,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}, nil
}

// DSN returns the database connection string with the access key applied as
// the password when one is configured.
func (c *Config) DSN() (string, error) {
	if c.DatabaseAccessKey == "" {
		return c.DatabaseURL, nil
	}
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	username := "postgres"
	if u.User != nil && u.User.Username() != "" {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, c.DatabaseAccessKey)
	return u.String(), nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
