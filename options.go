package pricedex

import (
	"io"
	"log/slog"

	"github.com/pricedex/pricedex/infrastructure/provider"
	"github.com/pricedex/pricedex/internal/config"
)

// databaseType identifies the database.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	database          databaseType
	dbPath            string
	dbDSN             string
	dataDir           string
	modelDir          string
	textProvider      provider.TextGenerator
	embeddingProvider provider.Embedder
	logger            *slog.Logger
	apiKeys           []string
	searchLimit       int
	candidateLimit    int
	temperature       float64
	maxTokens         int
	keepAlive         config.KeepAliveConfig
	closers           []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
// This ensures all defaults come from the single source of truth.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:        config.DefaultDataDir(),
		searchLimit:    config.DefaultSearchLimit,
		candidateLimit: config.DefaultCandidateLimit,
		temperature:    config.DefaultAnalysisTemperature,
		maxTokens:      config.DefaultEndpointMaxTokens,
		keepAlive:      config.NewKeepAliveConfig(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres configures PostgreSQL as the database.
// Serverless providers that pause idle databases pair well with the
// keep-alive probe, see WithKeepAlive.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithOpenAI sets OpenAI as the AI provider (text + embeddings).
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		p := provider.NewOpenAIProvider(apiKey)
		c.textProvider = p
		c.embeddingProvider = p
	}
}

// WithOpenAIConfig sets OpenAI with custom configuration.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		p := provider.NewOpenAIProviderFromConfig(cfg)
		c.textProvider = p
		c.embeddingProvider = p
	}
}

// WithAnthropic sets Anthropic Claude as the text generation provider.
// Requires a separate embedding provider since Anthropic doesn't provide embeddings.
func WithAnthropic(apiKey string) Option {
	return func(c *clientConfig) {
		p := provider.NewAnthropicProvider(apiKey)
		c.textProvider = p
	}
}

// WithAnthropicConfig sets Anthropic Claude with custom configuration.
func WithAnthropicConfig(cfg provider.AnthropicConfig) Option {
	return func(c *clientConfig) {
		p := provider.NewAnthropicProviderFromConfig(cfg)
		c.textProvider = p
	}
}

// WithTextProvider sets a custom text generation provider.
// Without one, price analysis falls back to a local trend summary.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithEmbeddingProvider sets a custom embedding provider.
func WithEmbeddingProvider(p provider.Embedder) Option {
	return func(c *clientConfig) {
		c.embeddingProvider = p
	}
}

// WithDataDir sets the data directory for database and model storage.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithModelDir sets the directory where built-in model files are stored.
// Defaults to {dataDir}/models if not specified.
func WithModelDir(dir string) Option {
	return func(c *clientConfig) {
		c.modelDir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAPIKeys sets the API keys for HTTP API authentication.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = keys
	}
}

// WithSearchLimit sets the default number of matches returned per search.
// Values <= 0 are ignored.
func WithSearchLimit(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.searchLimit = n
		}
	}
}

// WithCandidateLimit sets how many priced records are fetched per search
// before similarity ranking. Values <= 0 are ignored.
func WithCandidateLimit(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.candidateLimit = n
		}
	}
}

// WithAnalysisTemperature sets the sampling temperature for price analysis.
func WithAnalysisTemperature(t float64) Option {
	return func(c *clientConfig) {
		c.temperature = t
	}
}

// WithAnalysisMaxTokens sets the token limit for price analysis responses.
// Values <= 0 are ignored.
func WithAnalysisMaxTokens(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithKeepAlive sets the database keep-alive configuration.
func WithKeepAlive(cfg config.KeepAliveConfig) Option {
	return func(c *clientConfig) {
		c.keepAlive = cfg
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(c io.Closer) Option {
	return func(cfg *clientConfig) {
		cfg.closers = append(cfg.closers, c)
	}
}
