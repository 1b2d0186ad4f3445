package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	IndexBackendWeaviate = "weaviate"
	IndexBackendMemory   = "memory"

	VisionProviderOpenAI = "openai"
	VisionProviderGemini = "gemini"
)

type Config struct {
	Port           string         `mapstructure:"port"`
	UploadDir      string         `mapstructure:"upload_dir"`
	IndexBackend   string         `mapstructure:"index_backend"`
	VisionProvider string         `mapstructure:"vision_provider"`
	AI             AIConfig       `mapstructure:"ai"`
	Google         GoogleConfig   `mapstructure:"google"`
	Weaviate       WeaviateConfig `mapstructure:"weaviate"`
	Throttle       ThrottleConfig `mapstructure:"throttle"`
	Chunking       ChunkingConfig `mapstructure:"chunking"`
}

// AIConfig points at any OpenAI-compatible completion endpoint. The base
// URL selects the provider; the key is read from the environment.
type AIConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"TOGETHER_API_KEY"`
	TextModel   string `mapstructure:"text_model"`
	VisionModel string `mapstructure:"vision_model"`
}

type GoogleConfig struct {
	APIKeys        []string `mapstructure:"api_keys"`
	APIKey         string   `mapstructure:"GOOGLE_API_KEY"`
	EmbeddingModel string   `mapstructure:"embedding_model"`
	VisionModel    string   `mapstructure:"vision_model"`
}

type WeaviateConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"`
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

// ThrottleConfig replaces the usual sleep-every-N-calls workaround with an
// explicit requests-per-second budget plus bounded retries on throttling
// errors from the summarization provider.
type ThrottleConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
}

type ChunkingConfig struct {
	MaxChunkSize  int  `mapstructure:"max_chunk_size"`
	OverlapSize   int  `mapstructure:"overlap_size"`
	ExtractImages bool `mapstructure:"extract_images"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("ai.TOGETHER_API_KEY", "TOGETHER_API_KEY")
	v.BindEnv("google.GOOGLE_API_KEY", "GOOGLE_API_KEY")
	v.BindEnv("weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.IndexBackend == "" {
		c.IndexBackend = IndexBackendWeaviate
	}
	if c.VisionProvider == "" {
		c.VisionProvider = VisionProviderOpenAI
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.together.xyz/v1"
	}
	if c.AI.TextModel == "" {
		c.AI.TextModel = "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free"
	}
	if c.AI.VisionModel == "" {
		c.AI.VisionModel = "meta-llama/Llama-3.2-90B-Vision-Instruct-Turbo"
	}
	if c.Google.EmbeddingModel == "" {
		c.Google.EmbeddingModel = "embedding-001"
	}
	if c.Google.VisionModel == "" {
		c.Google.VisionModel = "gemini-1.5-flash"
	}
	if len(c.Google.APIKeys) == 0 && c.Google.APIKey != "" {
		c.Google.APIKeys = []string{c.Google.APIKey}
	}
	if c.Throttle.RequestsPerSecond == 0 {
		c.Throttle.RequestsPerSecond = 2
	}
	if c.Throttle.Burst == 0 {
		c.Throttle.Burst = 1
	}
	if c.Throttle.MaxRetries == 0 {
		c.Throttle.MaxRetries = 3
	}
	if c.Throttle.RetryDelay == 0 {
		c.Throttle.RetryDelay = 2 * time.Second
	}
	if c.Chunking.MaxChunkSize == 0 {
		c.Chunking.MaxChunkSize = 1024
	}
	if c.Chunking.OverlapSize == 0 {
		c.Chunking.OverlapSize = 128
	}
}

// Validate fails fast before any work begins when a credential required by
// the selected backends is missing.
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("TOGETHER_API_KEY not found in environment variables")
	}
	if c.IndexBackend != IndexBackendWeaviate && c.IndexBackend != IndexBackendMemory {
		return fmt.Errorf("unknown index backend %q", c.IndexBackend)
	}
	if c.IndexBackend == IndexBackendMemory && len(c.Google.APIKeys) == 0 {
		return fmt.Errorf("GOOGLE_API_KEY not found in environment variables")
	}
	if c.IndexBackend == IndexBackendWeaviate && c.Weaviate.Host == "" {
		return fmt.Errorf("weaviate host is required for the weaviate index backend")
	}
	if c.VisionProvider != VisionProviderOpenAI && c.VisionProvider != VisionProviderGemini {
		return fmt.Errorf("unknown vision provider %q", c.VisionProvider)
	}
	if c.VisionProvider == VisionProviderGemini && len(c.Google.APIKeys) == 0 {
		return fmt.Errorf("GOOGLE_API_KEY not found in environment variables")
	}
	if c.Chunking.OverlapSize >= c.Chunking.MaxChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than max chunk size %d",
			c.Chunking.OverlapSize, c.Chunking.MaxChunkSize)
	}
	return nil
}
