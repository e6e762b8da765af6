// Package profile holds the runtime configuration of the server.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Server
	Mode string // "prod", "dev" or "demo"
	Addr string
	Port int
	Data string // data directory (sqlite driver)

	// Storage driver: sqlite, postgres or s3
	Driver     string
	DSN        string
	BlobBucket string // s3 driver
	S3Region   string // s3 driver

	// Genesiss generation API (agents, simple chat fallback)
	GenesissAPIURL string
	GenesissAPIKey string

	// Internet search proxy
	JinaAPIKeys []string

	// Planner LLM (OpenAI-compatible protocol). When no API key is set
	// the planner falls back to the Genesiss simple chat endpoint.
	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
	LLMTimeout  int // seconds

	// Trailing-edge quiet window for coalescing canvas saves.
	CanvasDebounce time.Duration

	Version string
}

// Provider default configurations for the planner LLM, applied when the
// base URL or model is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled reports whether a direct planner LLM is configured.
func (p *Profile) IsLLMEnabled() bool {
	return p.LLMAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.GenesissAPIURL = getEnvOrDefault("GENESISS_API_URL", "https://genesiss.tech/api")
	p.GenesissAPIKey = getEnvOrDefault("GENESISS_API_KEY", "")

	if keys := os.Getenv("GENESISS_JINA_API_KEYS"); keys != "" {
		for _, k := range strings.Split(keys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				p.JinaAPIKeys = append(p.JinaAPIKeys, k)
			}
		}
	}

	p.LLMProvider = getEnvOrDefault("GENESISS_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("GENESISS_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("GENESISS_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("GENESISS_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("GENESISS_LLM_TIMEOUT_SECONDS", 120)

	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	p.BlobBucket = getEnvOrDefault("GENESISS_BLOB_BUCKET", p.BlobBucket)
	p.S3Region = getEnvOrDefault("GENESISS_S3_REGION", "us-east-1")

	if ms := getEnvOrDefaultInt("GENESISS_CANVAS_DEBOUNCE_MS", 0); ms > 0 {
		p.CanvasDebounce = time.Duration(ms) * time.Millisecond
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies.
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	switch p.Driver {
	case "sqlite":
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("genesiss_%s.db", p.Mode))
		}
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn required for postgres driver")
		}
	case "s3":
		if p.BlobBucket == "" {
			return errors.New("blob bucket required for s3 driver")
		}
	default:
		return errors.Errorf("unknown storage driver %q", p.Driver)
	}

	if p.CanvasDebounce <= 0 {
		p.CanvasDebounce = time.Second
	}
	return nil
}
