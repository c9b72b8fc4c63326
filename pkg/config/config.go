package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Firebase
	FirebaseCredentials string
	FirebaseProjectID   string
	FirebaseWebAPIKey   string
	IdentityToolkitURL  string

	// StoreDriver selects the document store: "firestore" or "memory"
	StoreDriver string

	// Relational store for refresh and device tokens
	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string

	// Pub/Sub task events
	GoogleProjectID   string
	GoogleCredentials string
	PubSubTopic       string

	// Schedule suggestion
	AIProvider     string
	GeminiAPIKey   string
	ScheduleAPIURL string
	OllamaBaseURL  string
	OllamaModel    string

	CalendarEventMode string
	Timezone          string
	ReminderInterval  time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour), // 7 days

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseWebAPIKey:   getEnv("FIREBASE_WEB_API_KEY", ""),
		IdentityToolkitURL:  getEnv("IDENTITY_TOOLKIT_URL", "https://identitytoolkit.googleapis.com/v1"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "firestore")),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL: getEnv("DATABASE_URL", "timesync.db"),

		GoogleProjectID:   getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		PubSubTopic:       getEnv("PUBSUB_TOPIC", "task-events"),

		AIProvider:     strings.ToLower(getEnv("AI_PROVIDER", "gemini")),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		ScheduleAPIURL: getEnv("SCHEDULE_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"),
		OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:    getEnv("OLLAMA_MODEL", "llama3"),

		CalendarEventMode: strings.ToLower(getEnv("CALENDAR_EVENT_MODE", "hour")),
		Timezone:          getEnv("TIMEZONE", "UTC"),
		ReminderInterval:  getDuration("REMINDER_INTERVAL", time.Minute),
	}
}

// Location resolves Timezone, falling back to UTC on unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if exp := os.Getenv(key); exp != "" {
		if parsed, err := time.ParseDuration(exp); err == nil {
			return parsed
		}
	}
	return defaultValue
}
