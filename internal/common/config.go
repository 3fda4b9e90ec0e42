package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	LLM      LLMConfig
	Policy   PolicyConfig
	Schedule ScheduleConfig
	Ingest   IngestConfig
	Notify   NotifyConfig
}

// DatabaseConfig holds artifact store configuration.
type DatabaseConfig struct {
	Driver          string // "sqlite" or "postgres"
	Path            string // sqlite data directory
	DSN             string // postgres DSN
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string
}

// LLMConfig holds configuration for the chat-completions worker backend.
type LLMConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float32
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// PolicyConfig carries the pipeline thresholds. These are policy defaults, not
// hard-coded truths; tests and deployments may tune them.
type PolicyConfig struct {
	MinPoolSize  int // candidates required before shortlisting
	ShortlistCap int // max shortlist entries
	FinalPickCap int // max final picks
}

// ScheduleConfig controls interview slot search.
type ScheduleConfig struct {
	Timezone     string
	DayStartHour int // first bookable hour, local
	DayEndHour   int // slots must end by this hour, local
	SlotDuration time.Duration
	SlotGap      time.Duration
	MaxAttempts  int
	CalendarID   string
	TokenPath    string
}

// IngestConfig controls the CV inbox watcher.
type IngestConfig struct {
	InboxDirs []string
	Debounce  time.Duration
}

// NotifyConfig holds HR notification settings.
type NotifyConfig struct {
	SenderEmail string
	HREmail     string
	TokenPath   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Path:            getEnv("DB_PATH", "./data"),
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		LLM: LLMConfig{
			BaseURL:           getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			APIKey:            getEnv("GROQ_API_KEY", ""),
			Model:             getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			Temperature:       getEnvAsFloat32("GROQ_TEMPERATURE", 0.0),
			MaxTokens:         getEnvAsInt("GROQ_MAX_TOKENS", 2048),
			Timeout:           getEnvAsDuration("GROQ_TIMEOUT", 45*time.Second),
			RequestsPerSecond: getEnvAsFloat64("GROQ_RPS", 2),
		},
		Policy: PolicyConfig{
			MinPoolSize:  getEnvAsInt("MIN_POOL_SIZE", 10),
			ShortlistCap: getEnvAsInt("SHORTLIST_CAP", 5),
			FinalPickCap: getEnvAsInt("FINAL_PICK_CAP", 3),
		},
		Schedule: ScheduleConfig{
			Timezone:     getEnv("SCHEDULE_TZ", "Asia/Karachi"),
			DayStartHour: getEnvAsInt("SCHEDULE_DAY_START", 13),
			DayEndHour:   getEnvAsInt("SCHEDULE_DAY_END", 22),
			SlotDuration: getEnvAsDuration("SCHEDULE_SLOT", 30*time.Minute),
			SlotGap:      getEnvAsDuration("SCHEDULE_GAP", 15*time.Minute),
			MaxAttempts:  getEnvAsInt("SCHEDULE_MAX_ATTEMPTS", 50),
			CalendarID:   getEnv("CALENDAR_ID", "primary"),
			TokenPath:    getEnv("GOOGLE_TOKEN_PATH", "token.json"),
		},
		Ingest: IngestConfig{
			InboxDirs: splitEnvList(getEnv("CV_INBOX_DIRS", "./data/inbox")),
			Debounce:  getEnvAsDuration("CV_INBOX_DEBOUNCE", 500*time.Millisecond),
		},
		Notify: NotifyConfig{
			SenderEmail: getEnv("SENDER_EMAIL", ""),
			HREmail:     getEnv("HR_EMAIL", ""),
			TokenPath:   getEnv("GOOGLE_TOKEN_PATH", "token.json"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitEnvList(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required for the postgres driver", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GROQ_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Policy.MinPoolSize <= 0 || c.Policy.ShortlistCap <= 0 || c.Policy.FinalPickCap <= 0 {
		return NewAppError("CONFIG_ERROR", "pipeline policy values must be positive", ErrInvalidInput)
	}
	return nil
}
