package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Aws       AwsConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Backoff   BackoffConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
	AnalyticsTopic     string
}

type DatabaseConfig struct {
	Connection string // direct DSN; when empty, credentials come from the secret store
	SecretId   string
	SSLMode    string
}

type AwsConfig struct {
	Region           string
	EmbeddingModel   string
	ChatModel        string
	RerankModel      string
	AnthropicVersion string
}

type AIConfig struct {
	Provider      string // "bedrock" or "ollama"
	OllamaBaseURL string
	OllamaModel   string
}

type RetrievalConfig struct {
	K                  int
	ExtraLimit         int
	Facets             []string
	MaxFacetValues     int
	ContextMaxChunks   int
	MaxEmbedInputChars int
	UseFacets          bool
	UseRerank          bool
}

type BackoffConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxJitter  time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			RedisURL:           getEnv("REDIS_URL", ""),
			AnalyticsTopic:     getEnv("QUERY_ANALYTICS_TOPIC_NAME", "QUERY_ANSWERED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			SecretId:   getEnv("DB_SECRET_ID", ""),
			SSLMode:    getEnv("DB_SSL_MODE", "require"),
		},
		Aws: AwsConfig{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			EmbeddingModel:   getEnv("EMBEDDING_MODEL_ID", "amazon.titan-embed-text-v1"),
			ChatModel:        getEnv("CHAT_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
			RerankModel:      getEnv("RERANK_MODEL_ID", "cohere.rerank-v3-5:0"),
			AnthropicVersion: getEnv("ANTHROPIC_VERSION", "bedrock-2023-05-31"),
		},
		Ai: AIConfig{
			Provider:      getEnv("AI_PROVIDER", "bedrock"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:   getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Retrieval: RetrievalConfig{
			K:                  getEnvAsInt("RETRIEVAL_K", 5),
			ExtraLimit:         getEnvAsInt("FACET_EXTRA_LIMIT", 5),
			Facets:             getEnvAsSlice("FACETS", []string{"source", "title", "section"}),
			MaxFacetValues:     getEnvAsInt("MAX_FACET_VALUES", 2),
			ContextMaxChunks:   getEnvAsInt("CONTEXT_MAX_CHUNKS", 12),
			MaxEmbedInputChars: getEnvAsInt("MAX_EMBED_INPUT_CHARS", 8000),
			UseFacets:          getEnvAsBool("FE_RAG_ENABLE", true),
			UseRerank:          getEnvAsBool("RERANK_ENABLE", true),
		},
		Backoff: BackoffConfig{
			MaxRetries: getEnvAsInt("BACKOFF_MAX_RETRIES", 10),
			BaseDelay:  getEnvAsDuration("BACKOFF_BASE_DELAY", time.Second),
			MaxJitter:  getEnvAsDuration("BACKOFF_MAX_JITTER", time.Second),
		},
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
