package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "test-key")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("WEAVIATE_APIKEY", "")

	path := writeConfigFile(t, `
index_backend: weaviate
weaviate:
  host: localhost:8081
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, VisionProviderOpenAI, cfg.VisionProvider)
	assert.Equal(t, "https://api.together.xyz/v1", cfg.AI.BaseURL)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
	assert.Equal(t, "embedding-001", cfg.Google.EmbeddingModel)
	assert.Equal(t, float64(2), cfg.Throttle.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Throttle.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Throttle.RetryDelay)
	assert.Equal(t, 1024, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 128, cfg.Chunking.OverlapSize)
}

func TestLoadConfigReadsValuesFromFile(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "test-key")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	path := writeConfigFile(t, `
port: "9090"
upload_dir: data/pdfs
index_backend: memory
vision_provider: gemini
ai:
  text_model: custom-model
throttle:
  requests_per_second: 5
  max_retries: 7
chunking:
  max_chunk_size: 2048
  overlap_size: 256
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "data/pdfs", cfg.UploadDir)
	assert.Equal(t, IndexBackendMemory, cfg.IndexBackend)
	assert.Equal(t, VisionProviderGemini, cfg.VisionProvider)
	assert.Equal(t, "custom-model", cfg.AI.TextModel)
	assert.Equal(t, float64(5), cfg.Throttle.RequestsPerSecond)
	assert.Equal(t, 7, cfg.Throttle.MaxRetries)
	assert.Equal(t, 2048, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, []string{"google-key"}, cfg.Google.APIKeys)
}

func TestLoadConfigMissingTogetherKey(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "")

	path := writeConfigFile(t, `
index_backend: weaviate
weaviate:
  host: localhost:8081
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOGETHER_API_KEY")
}

func TestLoadConfigMemoryBackendNeedsGoogleKey(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "test-key")
	t.Setenv("GOOGLE_API_KEY", "")

	path := writeConfigFile(t, `
index_backend: memory
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestLoadConfigWeaviateBackendNeedsHost(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "test-key")

	path := writeConfigFile(t, `
index_backend: weaviate
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weaviate host")
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "test-key")

	path := writeConfigFile(t, `
index_backend: redis
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown index backend")
}

func TestLoadConfigRejectsOverlapLargerThanChunk(t *testing.T) {
	t.Setenv("TOGETHER_API_KEY", "test-key")

	path := writeConfigFile(t, `
index_backend: weaviate
weaviate:
  host: localhost:8081
chunking:
  max_chunk_size: 100
  overlap_size: 100
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
