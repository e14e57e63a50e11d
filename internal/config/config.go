package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ModelProfile pins a model identifier to a fixed generation profile.
// Each pipeline role runs on its own profile so cheap classification never
// pays generation-tier prices.
type ModelProfile struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	LLM struct {
		Provider    string        `yaml:"provider"`
		APIKey      string        `yaml:"api_key"`
		Timeout     time.Duration `yaml:"timeout"` // per-call timeout
		Classifier  ModelProfile  `yaml:"classifier"`
		Analyst     ModelProfile  `yaml:"analyst"`
		Writer      ModelProfile  `yaml:"writer"`
	} `yaml:"llm"`

	Pipeline struct {
		MaxRevisions int           `yaml:"max_revisions"`
		MaxRetries   int           `yaml:"max_retries"`
		BaseDelay    time.Duration `yaml:"base_delay"`
		Deadline     time.Duration `yaml:"deadline"` // end-to-end cap per run
	} `yaml:"pipeline"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`

	Uploads struct {
		MaxFileSize       int64    `yaml:"max_file_size"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
		AllowedMIMETypes  []string `yaml:"allowed_mime_types"`
		MinTextLength     int      `yaml:"min_text_length"`
	} `yaml:"uploads"`

	RateLimit struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerMinute float64 `yaml:"requests_per_minute"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	CORS struct {
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"cors"`

	Logging struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// DefaultConfig returns the built-in configuration defaults
func DefaultConfig() *Config {
	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.LLM.Provider = "claude"
	config.LLM.Timeout = 60 * time.Second
	config.LLM.Classifier = ModelProfile{Model: "claude-3-5-haiku-20241022", Temperature: 0.0, MaxTokens: 256}
	config.LLM.Analyst = ModelProfile{Model: "claude-3-7-sonnet-20250219", Temperature: 0.2, MaxTokens: 1024}
	config.LLM.Writer = ModelProfile{Model: "claude-opus-4-20250514", Temperature: 0.6, MaxTokens: 1024}

	config.Pipeline.MaxRevisions = 3
	config.Pipeline.MaxRetries = 3
	config.Pipeline.BaseDelay = 1 * time.Second
	config.Pipeline.Deadline = 5 * time.Minute

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second
	config.Redis.CacheTTL = 24 * time.Hour

	config.Uploads.MaxFileSize = 5 * 1024 * 1024
	config.Uploads.AllowedExtensions = []string{".pdf", ".txt", ".docx", ".html"}
	config.Uploads.AllowedMIMETypes = []string{
		"application/pdf",
		"text/plain",
		"text/html",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	config.Uploads.MinTextLength = 100

	config.RateLimit.Enabled = true
	config.RateLimit.RequestsPerMinute = 30
	config.RateLimit.Burst = 5

	config.CORS.AllowOrigins = []string{"*"}

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := DefaultConfig()

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	// Also support LLM_API_KEY for compatibility
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.LLM.Timeout = d
		}
	}

	if model := os.Getenv("LLM_CLASSIFIER_MODEL"); model != "" {
		c.LLM.Classifier.Model = model
	}

	if model := os.Getenv("LLM_ANALYST_MODEL"); model != "" {
		c.LLM.Analyst.Model = model
	}

	if model := os.Getenv("LLM_WRITER_MODEL"); model != "" {
		c.LLM.Writer.Model = model
	}

	if revisions := os.Getenv("PIPELINE_MAX_REVISIONS"); revisions != "" {
		if n, err := strconv.Atoi(revisions); err == nil {
			c.Pipeline.MaxRevisions = n
		}
	}

	if deadline := os.Getenv("PIPELINE_DEADLINE"); deadline != "" {
		if d, err := time.ParseDuration(deadline); err == nil {
			c.Pipeline.Deadline = d
		}
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.Redis.CacheTTL = d
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if rpm := os.Getenv("RATE_LIMIT_PER_MINUTE"); rpm != "" {
		if n, err := strconv.ParseFloat(rpm, 64); err == nil {
			c.RateLimit.RequestsPerMinute = n
		}
	}

	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		var parsed []string
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				parsed = append(parsed, origin)
			}
		}
		c.CORS.AllowOrigins = parsed
	}
}
