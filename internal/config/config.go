package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"

	AuthFirebase = "firebase"
	AuthLocal    = "local"
)

type Config struct {
	ProjectID     string
	Region        string
	LogLevel      string
	Port          string
	KMSKeyName    string
	VertexModel   string
	GeminiModel   string
	OpenAIModel   string
	OpenAIBaseURL string
	AIPlatform    string
	StoreBackend  string
	SQLitePath    string
	AuthMode      string
	FetchTimeout  time.Duration
	RateLimit     float64
	RateBurst     int
	FieldDebounce time.Duration
}

// New reads the environment. A .env file in the working directory is loaded
// first when present; variables already set win.
func New() *Config {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) *Config {
	cfg := &Config{
		ProjectID:     getenv("PROJECTID"),
		Region:        orDefault(getenv("REGION"), "us-central1"),
		LogLevel:      orDefault(getenv("LOGLEVEL"), "info"),
		Port:          orDefault(getenv("PORT"), "8080"),
		KMSKeyName:    getenv("KMSKEYNAME"),
		VertexModel:   getenv("VERTEXMODEL"),
		GeminiModel:   orDefault(getenv("GEMINIMODEL"), "gemini-2.0-flash"),
		OpenAIModel:   getenv("OPENAIMODEL"),
		OpenAIBaseURL: getenv("OPENAIBASEURL"),
		AIPlatform:    getenv("AIPLATFORM"),
		StoreBackend:  getStoreBackend(getenv("STOREBACKEND")),
		SQLitePath:    orDefault(getenv("SQLITEPATH"), "findash.db"),
		AuthMode:      getAuthMode(getenv("AUTHMODE")),
		FetchTimeout:  getDuration(getenv("FETCHTIMEOUT"), 30*time.Second),
		RateLimit:     getFloat(getenv("RATELIMIT"), 10),
		RateBurst:     getInt(getenv("RATEBURST"), 20),
		FieldDebounce: getDuration(getenv("FIELDDEBOUNCE"), 500*time.Millisecond),
	}
	return cfg
}

func getStoreBackend(v string) string {
	switch v {
	case StoreFirestore:
		return StoreFirestore
	default: // "sqlite"
		return StoreSQLite
	}
}

func getAuthMode(v string) string {
	switch v {
	case AuthFirebase:
		return AuthFirebase
	default: // "local"
		return AuthLocal
	}
}

// ---- Helpers ----
func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func getDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getFloat(v string, fallback float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func getInt(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
