package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"course-notes-be/pkg/database"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Search   SearchConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port                string
	BaseURL             string
	Environment         string
	LogFilePath         string
	CorsAllowedOrigins  string
	NatsURL             string
	EventTopic          string // in-process topic feeding the search indexer
	MaxPaginatedResults int
}

type DatabaseConfig struct {
	Connection      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogQueries      bool
}

type SearchConfig struct {
	Disabled  bool // ES_DISABLED, search stays in the database when true
	Addresses []string
	Index     string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "3000"),
			BaseURL:             getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:             getEnv("NATS_URL", ""),
			EventTopic:          getEnv("NOTE_EVENTS_TOPIC_NAME", "NOTE_LIFECYCLE"),
			MaxPaginatedResults: getEnvAsPositiveInt("MAX_PAGINATED_RESULTS", 500),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 60)) * time.Minute,
			LogQueries:      getEnvAsBool("DB_LOG_QUERIES", false),
		},
		Search: SearchConfig{
			Disabled:  getEnvAsBool("ES_DISABLED", true),
			Addresses: getEnvAsList("ES_URL", []string{"http://localhost:9200"}),
			Index:     getEnv("ES_INDEX", "notes_index"),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// Pool converts the database settings for pkg/database.
func (c DatabaseConfig) Pool() database.PoolConfig {
	return database.PoolConfig{
		MaxIdleConns:    c.MaxIdleConns,
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		LogQueries:      c.LogQueries,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsPositiveInt rejects zero and negative values in favour of fallback.
func getEnvAsPositiveInt(key string, fallback int) int {
	if value := getEnvAsInt(key, fallback); value > 0 {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, e.g. "http://es1:9200,http://es2:9200".
func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}

	var values []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
