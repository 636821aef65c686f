package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Agent    AgentConfig
	Analysis AnalysisConfig
	Retry    RetryConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Indexer  IndexerConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port    string
	Env     string
	Version string
}

type AuthConfig struct {
	APIKeys []string
}

// AgentConfig selects and parameterizes the upstream LLM transport.
// Transport is "sdk" (genai client) or "rest" (direct generativelanguage API).
type AgentConfig struct {
	Transport   string
	APIKey      string
	Model       string
	EmbedModel  string
	MaxTokens   int32
	Temperature float32
}

type AnalysisConfig struct {
	Timeout       time.Duration
	MaxConcurrent int
	MaxFileSize   int64
}

type RetryConfig struct {
	MaxAttempts int
	Delays      []time.Duration
	MaxElapsed  time.Duration
}

type StorageConfig struct {
	UploadPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type IndexerConfig struct {
	Concurrency int
}

type MetricsConfig struct {
	Port string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8000"),
			Env:     getEnv("ENV", "development"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Auth: AuthConfig{
			APIKeys: getEnvAsCSV("API_KEYS", ""),
		},
		Agent: AgentConfig{
			Transport:   getEnv("AGENT_TRANSPORT", "sdk"),
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel:  getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			MaxTokens:   int32(getEnvAsInt("GEMINI_MAX_TOKENS", 8192)),
			Temperature: float32(getEnvAsFloat("GEMINI_TEMPERATURE", 0.3)),
		},
		Analysis: AnalysisConfig{
			Timeout:       time.Duration(getEnvAsInt("ANALYSIS_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxConcurrent: getEnvAsInt("CONCURRENT_REQUESTS_LIMIT", 10),
			MaxFileSize:   int64(getEnvAsInt("MAX_FILE_SIZE_MB", 10)) * 1024 * 1024,
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			Delays:      getEnvAsDurationList("RETRY_DELAYS", "1s,2s,4s"),
			MaxElapsed:  time.Duration(getEnvAsInt("RETRY_MAX_TOTAL_SECONDS", 30)) * time.Second,
		},
		Storage: StorageConfig{
			UploadPath: getEnv("UPLOAD_PATH", "./uploads"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cyber_cv_analyzer"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "cv_profiles"),
		},
		Indexer: IndexerConfig{
			Concurrency: getEnvAsInt("INDEXER_CONCURRENCY", 2),
		},
		Metrics: MetricsConfig{
			Port: getEnv("METRICS_PORT", "9090"),
		},
	}

	if len(cfg.Auth.APIKeys) == 0 {
		log.Println("⚠️  API_KEYS is empty: every request will be rejected with 401")
	} else {
		log.Printf("🔑 Loaded %d API key(s): %s\n", len(cfg.Auth.APIKeys), keyPreviews(cfg.Auth.APIKeys))
	}

	return cfg
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// keyPreviews renders at most the first 8 characters of each key, so
// configured keys never land in logs whole.
func keyPreviews(keys []string) string {
	previews := make([]string, 0, len(keys))
	for _, k := range keys {
		if len(k) > 8 {
			k = k[:8] + "..."
		}
		previews = append(previews, k)
	}
	return strings.Join(previews, ", ")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsCSV(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func getEnvAsDurationList(key string, defaultValue string) []time.Duration {
	parse := func(s string) []time.Duration {
		var out []time.Duration
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d, err := time.ParseDuration(part)
			if err != nil || d <= 0 {
				return nil
			}
			out = append(out, d)
		}
		return out
	}

	if values := parse(getEnv(key, defaultValue)); len(values) > 0 {
		return values
	}
	return parse(defaultValue)
}
