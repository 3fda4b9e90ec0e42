package groq

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Config for the Groq chat-completions client. Groq exposes an
// OpenAI-compatible API, so only the base URL and model differ.
type Config struct {
	APIKey            string        // if empty, falls back to env GROQ_API_KEY
	BaseURL           string        // default https://api.groq.com/openai/v1
	Model             string        // e.g., "llama-3.3-70b-versatile"
	Temperature       float32       // 0..2
	MaxTokens         int           // completion cap per request
	Timeout           time.Duration // http client timeout
	RequestsPerSecond float64       // client-side throttle; <=0 disables
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     logger,
	}
}
