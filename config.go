package studyhint

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the studyhint engine.
type Config struct {
	// DBPath is the full path to the SQLite database file.
	// If empty, defaults to ~/.studyhint/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set. Options: "home" (default) uses ~/.studyhint/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// DataDir is the root course-material directory scanned by IngestDir.
	// Materials live under <DataDir>/pdfs/materials, assignments under
	// <DataDir>/pdfs/assignments.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// LLM providers
	Chat      LLMConfig `json:"chat" yaml:"chat"`
	Embedding LLMConfig `json:"embedding" yaml:"embedding"`

	// Hint generation
	Temperature     float64 `json:"temperature" yaml:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens" yaml:"max_output_tokens"`

	// Retrieval
	MaxResults   int     `json:"max_results" yaml:"max_results"`
	WeightVector float64 `json:"weight_vector" yaml:"weight_vector"`
	WeightFTS    float64 `json:"weight_fts" yaml:"weight_fts"`

	// Chunking for plain course material
	ChunkSize    int `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`

	// Sessions
	MaxHistory            int `json:"max_history" yaml:"max_history"`
	SessionTimeoutMinutes int `json:"session_timeout_minutes" yaml:"session_timeout_minutes"`

	// HTTP server
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`

	// Embedding dimensions (must match model)
	EmbeddingDim int `json:"embedding_dim" yaml:"embedding_dim"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"` // gemini, ollama, custom
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// DefaultConfig returns a Config with the stock setup: Gemini for hint
// generation, local Ollama for embeddings, database in ~/.studyhint/.
func DefaultConfig() Config {
	return Config{
		DBName:     "studyhint",
		StorageDir: "home",
		DataDir:    "data",
		Chat: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash-exp",
		},
		Embedding: LLMConfig{
			Provider: "ollama",
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Temperature:           0.7,
		MaxOutputTokens:       1024,
		MaxResults:            5,
		WeightVector:          1.0,
		WeightFTS:             1.0,
		ChunkSize:             1000,
		ChunkOverlap:          200,
		MaxHistory:            20,
		SessionTimeoutMinutes: 60,
		ListenAddr:            ":8000",
		EmbeddingDim:          768,
	}
}

// LoadEnv builds a Config from DefaultConfig overlaid with environment
// variables, reading a .env file first if one exists.
func LoadEnv() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Chat.APIKey = v
	}
	if v := os.Getenv("STUDYHINT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("STUDYHINT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("STUDYHINT_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		cfg.Chat.Model = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("MAX_OUTPUT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxOutputTokens = n
		}
	}
	if v := os.Getenv("MAX_HISTORY_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxHistory = n
		}
	}
	if v := os.Getenv("SESSION_TIMEOUT_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SessionTimeoutMinutes = n
		}
	}

	return cfg
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "studyhint"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		return filepath.Join(home, ".studyhint", name+".db")
	}
}
