// Package config provides environment configuration for the API server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/airbnblite/airbot/internal/settings"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	APIContext         string
	CORSOrigins        []string

	// Database
	DatabaseURL string

	// NATS settings, empty URL disables events and ingest claims
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings
	JWTSecret        string
	JWTExpiration    time.Duration
	AdminAuthEnabled bool
	AdminEmails      []string

	// LLM settings
	LLMProvider     string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string
	ChatModel       string
	ClassifierModel string

	// Embeddings
	EmbeddingProvider   string
	EmbedModel          string
	EmbeddingDimensions int

	// Vector store, empty host selects the in-memory store
	QdrantHost          string
	QdrantPort          int
	QdrantAPIKey        string
	QdrantUseTLS        bool
	QdrantCollection    string
	VectorSchemaVersion int

	// Retrieval
	InsuranceContextMethod string
	DocumentFetchTimeout   time.Duration
	SearchLimit            int
	MaxExcerptChars        int
	MaxContextChars        int
	MaxHistoryMessages     int

	// Support contact
	SupportName           string
	SupportEmail          string
	InsuranceSupportEmail string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration. A .env file in the working directory is loaded
// first, then the YAML file at path (or $CONFIG_FILE) fills in any variable
// not already set in the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := applyFile(path); err != nil {
			return nil, err
		}
	}

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "7076"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		APIContext:         normalizeContext(getEnv("API_CONTEXT", "/")),
		CORSOrigins:        getListEnv("CORS_ORIGINS", []string{"*"}),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "file:airbnblite.db?_foreign_keys=on"),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret:        getEnv("JWT_SECRET", "development-secret-change-in-production"),
		JWTExpiration:    getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
		AdminAuthEnabled: getBoolEnv("ADMIN_AUTH_ENABLED", false),
		AdminEmails:      getListEnv("ADMIN_EMAILS", nil),

		// LLM
		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		ChatModel:       getEnv("CHAT_MODEL", ""),
		ClassifierModel: getEnv("CLASSIFIER_MODEL", ""),

		// Embeddings
		EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
		EmbedModel:          getEnv("EMBED_MODEL", "text-embedding-3-small"),
		EmbeddingDimensions: getIntEnv("EMBEDDING_DIMENSIONS", 0),

		// Vector store
		QdrantHost:          getEnv("QDRANT_HOST", ""),
		QdrantPort:          getIntEnv("QDRANT_PORT", 6334),
		QdrantAPIKey:        getEnv("QDRANT_API_KEY", ""),
		QdrantUseTLS:        getBoolEnv("QDRANT_USE_TLS", false),
		QdrantCollection:    getEnv("QDRANT_COLLECTION", "insurance_policies"),
		VectorSchemaVersion: getIntEnv("VECTOR_SCHEMA_VERSION", 1),

		// Retrieval
		InsuranceContextMethod: getEnv("INSURANCE_CONTEXT_METHOD", string(settings.MethodPDFExtract)),
		DocumentFetchTimeout:   getDurationEnv("DOCUMENT_FETCH_TIMEOUT", 10*time.Second),
		SearchLimit:            getIntEnv("SEARCH_LIMIT", 3),
		MaxExcerptChars:        getIntEnv("MAX_EXCERPT_CHARS", 12000),
		MaxContextChars:        getIntEnv("MAX_CONTEXT_CHARS", 24000),
		MaxHistoryMessages:     getIntEnv("MAX_HISTORY_MESSAGES", 20),

		// Support contact
		SupportName:           getEnv("SUPPORT_NAME", "AirbnbLite Support"),
		SupportEmail:          getEnv("SUPPORT_EMAIL", "support@airbnblite.com"),
		InsuranceSupportEmail: getEnv("INSURANCE_SUPPORT_EMAIL", "insurance@airbnblite.com"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}, nil
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	switch c.EmbeddingProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}
	if _, err := settings.ParseMethod(c.InsuranceContextMethod); err != nil {
		return fmt.Errorf("INSURANCE_CONTEXT_METHOD: %w", err)
	}
	if c.SearchLimit <= 0 {
		return errors.New("SEARCH_LIMIT must be positive")
	}
	if c.MaxExcerptChars <= 0 || c.MaxContextChars <= 0 || c.MaxHistoryMessages <= 0 {
		return errors.New("context limits must be positive")
	}
	if c.DocumentFetchTimeout <= 0 {
		return errors.New("DOCUMENT_FETCH_TIMEOUT must be positive")
	}
	if c.EmbeddingDimensions < 0 {
		return errors.New("EMBEDDING_DIMENSIONS cannot be negative")
	}
	if c.VectorSchemaVersion <= 0 {
		return errors.New("VECTOR_SCHEMA_VERSION must be positive")
	}
	return nil
}

// CollectionName returns the versioned vector collection name.
func (c *Config) CollectionName() string {
	return fmt.Sprintf("%s_v%d", c.QdrantCollection, c.VectorSchemaVersion)
}

// applyFile reads a flat YAML map of variable names to values and exports
// the ones missing from the environment.
func applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	for key, value := range values {
		key = strings.ToUpper(key)
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

func normalizeContext(ctx string) string {
	ctx = "/" + strings.Trim(ctx, "/")
	if ctx == "/" {
		return ""
	}
	return ctx
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
