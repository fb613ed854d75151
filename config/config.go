package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	HTTPPort     string
	HTTPSPort    string
	Domains      []string
	CertCacheDir string

	UploadDir     string
	MaxUploadSize int64

	OpenAIAPIKey string

	VectorBackend      string // "postgres" or "memory"
	EmbeddingModel     string
	EmbeddingDimension int
	EmbeddingAPIURL    string

	LLMModel     string
	LLMAPIURL    string
	MaxNewTokens int
	Temperature  float64

	ChunkSize    int
	ChunkOverlap int
	MaxResults   int

	RateLimitPerMinute int
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		HTTPPort:     getEnv("HTTP_PORT", "8086"),
		HTTPSPort:    getEnv("HTTPS_PORT", "443"),
		Domains:      []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir: getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),

		UploadDir:     getEnv("UPLOAD_DIR", "data/uploads"),
		MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE", 10*1024*1024)),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		VectorBackend:      getEnv("VECTOR_BACKEND", "postgres"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 1536),
		EmbeddingAPIURL:    getEnv("EMBEDDING_API_URL", "https://api.openai.com/v1/embeddings"),

		LLMModel:     getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIURL:    getEnv("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		MaxNewTokens: getEnvAsInt("MAX_NEW_TOKENS", 512),
		Temperature:  getEnvAsFloat("TEMPERATURE", 0.7),

		ChunkSize:    getEnvAsInt("CHUNK_SIZE", 512),
		ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 50),
		MaxResults:   getEnvAsInt("MAX_RESULTS", 20),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
