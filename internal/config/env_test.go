package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.DataDir)
	assert.Equal(t, "", cfg.DBURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "", cfg.APIKeys)
	assert.Equal(t, 8, cfg.SearchLimit)
	assert.Equal(t, 2000, cfg.CandidateLimit)

	assert.True(t, cfg.KeepAlive.Enabled)
	assert.Equal(t, 21600.0, cfg.KeepAlive.IntervalSeconds)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	// Struct tag defaults must be literals, so this test keeps them in
	// sync with the constants in config.go.
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host, "Host struct tag default should match DefaultHost")
	assert.Equal(t, DefaultPort, cfg.Port, "Port struct tag default should match DefaultPort")
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel, "LogLevel struct tag default should match DefaultLogLevel")
	assert.Equal(t, DefaultSearchLimit, cfg.SearchLimit, "SearchLimit struct tag default should match DefaultSearchLimit")
	assert.Equal(t, DefaultCandidateLimit, cfg.CandidateLimit, "CandidateLimit struct tag default should match DefaultCandidateLimit")

	assert.Equal(t, DefaultEndpointTimeout.Seconds(), cfg.EmbeddingEndpoint.Timeout, "Timeout struct tag default should match DefaultEndpointTimeout")
	assert.Equal(t, DefaultEndpointMaxRetries, cfg.EmbeddingEndpoint.MaxRetries, "MaxRetries struct tag default should match DefaultEndpointMaxRetries")
	assert.Equal(t, DefaultEndpointInitialDelay.Seconds(), cfg.EmbeddingEndpoint.InitialDelay, "InitialDelay struct tag default should match DefaultEndpointInitialDelay")
	assert.Equal(t, DefaultEndpointBackoffFactor, cfg.EmbeddingEndpoint.BackoffFactor, "BackoffFactor struct tag default should match DefaultEndpointBackoffFactor")
	assert.Equal(t, DefaultEndpointMaxTokens, cfg.EmbeddingEndpoint.MaxTokens, "MaxTokens struct tag default should match DefaultEndpointMaxTokens")
	assert.Equal(t, DefaultAnalysisTemperature, cfg.AnalysisEndpoint.Temperature, "Temperature struct tag default should match DefaultAnalysisTemperature")

	assert.Equal(t, DefaultKeepAliveInterval, cfg.KeepAlive.IntervalSeconds, "IntervalSeconds struct tag default should match DefaultKeepAliveInterval")
}

func TestLoadFromEnv_OverrideValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_DIR", "/custom/data")
	t.Setenv("DB_URL", "postgres://localhost/pricedex")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("API_KEYS", "key1,key2,key3")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/custom/data", cfg.DataDir)
	assert.Equal(t, "postgres://localhost/pricedex", cfg.DBURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "key1,key2,key3", cfg.APIKeys)
}

func TestLoadFromEnv_EmbeddingEndpoint(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("EMBEDDING_ENDPOINT_BASE_URL", "https://api.openai.com/v1")
	t.Setenv("EMBEDDING_ENDPOINT_MODEL", "text-embedding-3-small")
	t.Setenv("EMBEDDING_ENDPOINT_API_KEY", "sk-test-key")
	t.Setenv("EMBEDDING_ENDPOINT_TIMEOUT", "120")
	t.Setenv("EMBEDDING_ENDPOINT_MAX_RETRIES", "3")
	t.Setenv("EMBEDDING_ENDPOINT_INITIAL_DELAY", "1.5")
	t.Setenv("EMBEDDING_ENDPOINT_BACKOFF_FACTOR", "1.5")
	t.Setenv("EMBEDDING_ENDPOINT_MAX_TOKENS", "8000")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.EmbeddingEndpoint.IsConfigured())
	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingEndpoint.BaseURL)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingEndpoint.Model)
	assert.Equal(t, "sk-test-key", cfg.EmbeddingEndpoint.APIKey)
	assert.Equal(t, 120.0, cfg.EmbeddingEndpoint.Timeout)
	assert.Equal(t, 3, cfg.EmbeddingEndpoint.MaxRetries)
	assert.Equal(t, 1.5, cfg.EmbeddingEndpoint.InitialDelay)
	assert.Equal(t, 1.5, cfg.EmbeddingEndpoint.BackoffFactor)
	assert.Equal(t, 8000, cfg.EmbeddingEndpoint.MaxTokens)
}

func TestLoadFromEnv_AnalysisEndpoint(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("ANALYSIS_ENDPOINT_BASE_URL", "https://api.groq.com/openai/v1")
	t.Setenv("ANALYSIS_ENDPOINT_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("ANALYSIS_ENDPOINT_API_KEY", "gsk-test-key")
	t.Setenv("ANALYSIS_ENDPOINT_TEMPERATURE", "0.5")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.AnalysisEndpoint.IsConfigured())
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.AnalysisEndpoint.BaseURL)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.AnalysisEndpoint.Model)
	assert.Equal(t, "gsk-test-key", cfg.AnalysisEndpoint.APIKey)
	assert.Equal(t, 0.5, cfg.AnalysisEndpoint.Temperature)
}

func TestLoadFromEnv_KeepAlive(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("KEEP_ALIVE_ENABLED", "false")
	t.Setenv("KEEP_ALIVE_INTERVAL_SECONDS", "3600")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.KeepAlive.Enabled)
	assert.Equal(t, 3600.0, cfg.KeepAlive.IntervalSeconds)
}

func TestLoadFromEnv_SearchLimits(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SEARCH_LIMIT", "25")
	t.Setenv("CANDIDATE_LIMIT", "500")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.SearchLimit)
	assert.Equal(t, 500, cfg.CandidateLimit)
}

func TestEnvConfig_ToAppConfig(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("DATA_DIR", "/test/data")
	t.Setenv("DB_URL", "postgres://test/db")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("API_KEYS", "key1,key2")
	t.Setenv("EMBEDDING_ENDPOINT_MODEL", "text-embedding-3-small")
	t.Setenv("ANALYSIS_ENDPOINT_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("KEEP_ALIVE_ENABLED", "false")
	t.Setenv("SEARCH_LIMIT", "3")

	envCfg, err := LoadFromEnv()
	require.NoError(t, err)

	cfg := envCfg.ToAppConfig()

	assert.Equal(t, "/test/data", cfg.DataDir())
	assert.Equal(t, "postgres://test/db", cfg.DBURL())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, []string{"key1", "key2"}, cfg.APIKeys())
	assert.NotNil(t, cfg.EmbeddingEndpoint())
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingEndpoint().Model())
	assert.NotNil(t, cfg.AnalysisEndpoint())
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.AnalysisEndpoint().Model())
	assert.False(t, cfg.KeepAlive().Enabled())
	assert.Equal(t, 3, cfg.SearchLimit())
}

func TestEndpointEnv_ToEndpoint(t *testing.T) {
	env := EndpointEnv{
		BaseURL:       "https://api.example.com",
		Model:         "test-model",
		APIKey:        "test-key",
		Timeout:       120,
		MaxRetries:    3,
		InitialDelay:  1.5,
		BackoffFactor: 1.5,
		MaxTokens:     8000,
		Temperature:   0.3,
	}

	endpoint := env.ToEndpoint()

	assert.Equal(t, "https://api.example.com", endpoint.BaseURL())
	assert.Equal(t, "test-model", endpoint.Model())
	assert.Equal(t, "test-key", endpoint.APIKey())
	assert.Equal(t, 120*time.Second, endpoint.Timeout())
	assert.Equal(t, 3, endpoint.MaxRetries())
	assert.Equal(t, time.Duration(1.5*float64(time.Second)), endpoint.InitialDelay())
	assert.Equal(t, 1.5, endpoint.BackoffFactor())
	assert.Equal(t, 8000, endpoint.MaxTokens())
	assert.Equal(t, 0.3, endpoint.Temperature())
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected LogFormat
	}{
		{"json", LogFormatJSON},
		{"JSON", LogFormatJSON},
		{"pretty", LogFormatPretty},
		{"PRETTY", LogFormatPretty},
		{"", LogFormatPretty},
		{"invalid", LogFormatPretty},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseLogFormat(tc.input))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `DATA_DIR=/from/dotenv
LOG_LEVEL=DEBUG
API_KEYS=key1,key2
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	clearEnvVars(t)

	err = LoadDotEnv(envFile)
	require.NoError(t, err)

	assert.Equal(t, "/from/dotenv", os.Getenv("DATA_DIR"))
	assert.Equal(t, "DEBUG", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "key1,key2", os.Getenv("API_KEYS"))
}

func TestLoadDotEnv_NonExistent(t *testing.T) {
	clearEnvVars(t)

	err := LoadDotEnv("/nonexistent/.env")
	assert.NoError(t, err)
}

func TestMustLoadDotEnv_NonExistent(t *testing.T) {
	clearEnvVars(t)

	err := MustLoadDotEnv("/nonexistent/.env")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `DATA_DIR=/config/data
LOG_LEVEL=WARN
EMBEDDING_ENDPOINT_MODEL=test-embedding
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	clearEnvVars(t)

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "/config/data", cfg.DataDir())
	assert.Equal(t, "WARN", cfg.LogLevel())
	assert.NotNil(t, cfg.EmbeddingEndpoint())
	assert.Equal(t, "test-embedding", cfg.EmbeddingEndpoint().Model())
}

// clearEnvVars unsets all config-related environment variables
func clearEnvVars(t *testing.T) {
	t.Helper()

	vars := []string{
		"HOST",
		"PORT",
		"DATA_DIR",
		"DB_URL",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"API_KEYS",
		"EMBEDDING_ENDPOINT_BASE_URL",
		"EMBEDDING_ENDPOINT_MODEL",
		"EMBEDDING_ENDPOINT_API_KEY",
		"EMBEDDING_ENDPOINT_TIMEOUT",
		"EMBEDDING_ENDPOINT_MAX_RETRIES",
		"EMBEDDING_ENDPOINT_INITIAL_DELAY",
		"EMBEDDING_ENDPOINT_BACKOFF_FACTOR",
		"EMBEDDING_ENDPOINT_MAX_TOKENS",
		"EMBEDDING_ENDPOINT_TEMPERATURE",
		"ANALYSIS_ENDPOINT_BASE_URL",
		"ANALYSIS_ENDPOINT_MODEL",
		"ANALYSIS_ENDPOINT_API_KEY",
		"ANALYSIS_ENDPOINT_TIMEOUT",
		"ANALYSIS_ENDPOINT_MAX_RETRIES",
		"ANALYSIS_ENDPOINT_INITIAL_DELAY",
		"ANALYSIS_ENDPOINT_BACKOFF_FACTOR",
		"ANALYSIS_ENDPOINT_MAX_TOKENS",
		"ANALYSIS_ENDPOINT_TEMPERATURE",
		"KEEP_ALIVE_ENABLED",
		"KEEP_ALIVE_INTERVAL_SECONDS",
		"SEARCH_LIMIT",
		"CANDIDATE_LIMIT",
	}

	for _, v := range vars {
		_ = os.Unsetenv(v)
	}
}
