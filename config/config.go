package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/redrussianarmy/self-rag/log"
)

// DefaultIngestURLs are the pages indexed when none are configured.
var DefaultIngestURLs = []string{
	"https://en.wikipedia.org/wiki/Retrieval-augmented_generation",
	"https://en.wikipedia.org/wiki/Large_language_model",
	"https://en.wikipedia.org/wiki/Prompt_engineering",
}

type Config struct {
	OpenAI     OpenAIConfig
	Search     SearchConfig
	Store      StoreConfig
	Workflow   WorkflowConfig
	Checkpoint CheckpointConfig
	Ingest     IngestConfig

	MetricsAddr string
	LogLevel    string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

type SearchConfig struct {
	Provider   string // "tavily" or "brave"
	TavilyKey  string
	BraveKey   string
	MaxResults int
	Domains    []string
	CacheTTL   time.Duration
}

type StoreConfig struct {
	Backend     string // "memory" or "pgvector"
	DatabaseURL string
	TopK        int
}

type WorkflowConfig struct {
	MaxGenerations   int
	CallTimeout      time.Duration
	GradeConcurrency int
	// RecursionLimit of zero derives the limit from MaxGenerations.
	RecursionLimit int
}

type CheckpointConfig struct {
	Backend    string // "none", "memory", "redis", "postgres", "sqlite"
	RedisAddr  string
	SqlitePath string
}

type IngestConfig struct {
	URLs []string
	// OnStart ingests into persistent stores at startup. The in-memory
	// store is always ingested.
	OnStart bool
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded, using system environment")
	}

	return &Config{
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Search: SearchConfig{
			Provider:   getEnv("SELF_RAG_SEARCH_PROVIDER", "tavily"),
			TavilyKey:  getEnv("TAVILY_API_KEY", ""),
			BraveKey:   getEnv("BRAVE_API_KEY", ""),
			MaxResults: getEnvAsInt("SELF_RAG_SEARCH_MAX_RESULTS", 5),
			Domains:    getEnvAsList("SELF_RAG_SEARCH_DOMAINS", []string{"wikipedia.org", "en.wikipedia.org"}),
			CacheTTL:   getEnvAsDuration("SELF_RAG_SEARCH_CACHE_TTL", 0),
		},
		Store: StoreConfig{
			Backend:     getEnv("SELF_RAG_STORE", "memory"),
			DatabaseURL: getEnv("SELF_RAG_DATABASE_URL", ""),
			TopK:        getEnvAsInt("SELF_RAG_TOP_K", 4),
		},
		Workflow: WorkflowConfig{
			MaxGenerations:   getEnvAsInt("SELF_RAG_MAX_GENERATIONS", 3),
			CallTimeout:      getEnvAsDuration("SELF_RAG_CALL_TIMEOUT", 60*time.Second),
			GradeConcurrency: getEnvAsInt("SELF_RAG_GRADE_CONCURRENCY", 1),
			RecursionLimit:   getEnvAsInt("SELF_RAG_RECURSION_LIMIT", 0),
		},
		Checkpoint: CheckpointConfig{
			Backend:    getEnv("SELF_RAG_CHECKPOINT", "none"),
			RedisAddr:  getEnv("SELF_RAG_REDIS_ADDR", "localhost:6379"),
			SqlitePath: getEnv("SELF_RAG_SQLITE_PATH", "selfrag.db"),
		},
		Ingest: IngestConfig{
			URLs:    getEnvAsList("SELF_RAG_INGEST_URLS", DefaultIngestURLs),
			OnStart: getEnvAsBool("SELF_RAG_INGEST_ON_START", false),
		},
		MetricsAddr: getEnv("SELF_RAG_METRICS_ADDR", ""),
		LogLevel:    getEnv("SELF_RAG_LOG_LEVEL", "info"),
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

// getEnvAsDuration accepts Go durations ("90s") or a plain number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	log.Warn("invalid duration %q for %s, using %s", strValue, key, fallback)
	return fallback
}

// getEnvAsList splits a comma-separated value, dropping empty items.
func getEnvAsList(key string, fallback []string) []string {
	strValue, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(strValue, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
