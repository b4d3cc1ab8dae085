package main

import (
	"strings"

	"github.com/pricedex/pricedex"
	"github.com/pricedex/pricedex/infrastructure/provider"
	"github.com/pricedex/pricedex/internal/config"
)

// clientOptions returns the pricedex.Option slice derived from the shared
// parts of AppConfig: database storage, embedding provider, and analysis
// provider. Callers append entrypoint-specific options (API keys, limits)
// before passing the full slice to pricedex.New.
func clientOptions(cfg config.AppConfig) []pricedex.Option {
	opts := storageOptions(cfg)
	opts = append(opts, embeddingOptions(cfg)...)
	opts = append(opts, analysisOptions(cfg)...)
	return opts
}

// storageOptions returns the pricedex.Option for the configured database backend.
func storageOptions(cfg config.AppConfig) []pricedex.Option {
	dbURL := cfg.DBURL()

	if dbURL != "" && !isSQLite(dbURL) {
		return []pricedex.Option{pricedex.WithPostgres(dbURL)}
	}

	dbPath := cfg.DataDir() + "/pricedex.db"
	if dbURL != "" && isSQLite(dbURL) {
		dbPath = strings.TrimPrefix(dbURL, "sqlite:///")
		if dbPath == dbURL {
			dbPath = strings.TrimPrefix(dbURL, "sqlite:")
		}
	}

	return []pricedex.Option{pricedex.WithSQLite(dbPath)}
}

// embeddingOptions returns a pricedex.Option for the embedding provider when
// the embedding endpoint is fully configured, or an empty slice otherwise.
// Without one the client falls back to the built-in hugot model.
func embeddingOptions(cfg config.AppConfig) []pricedex.Option {
	endpoint := cfg.EmbeddingEndpoint()
	if endpoint == nil || !endpoint.IsConfigured() || endpoint.APIKey() == "" {
		return nil
	}

	p := provider.NewOpenAIProviderFromConfig(provider.OpenAIConfig{
		APIKey:         endpoint.APIKey(),
		BaseURL:        endpoint.BaseURL(),
		EmbeddingModel: endpoint.Model(),
		Timeout:        endpoint.Timeout(),
		MaxRetries:     endpoint.MaxRetries(),
		InitialDelay:   endpoint.InitialDelay(),
		BackoffFactor:  endpoint.BackoffFactor(),
		CacheDir:       endpoint.CacheDir(),
	})

	return []pricedex.Option{pricedex.WithEmbeddingProvider(p)}
}

// analysisOptions returns pricedex.Options for the analysis text provider
// when the analysis endpoint is fully configured, or an empty slice
// otherwise. Without one, analysis falls back to a local trend summary.
func analysisOptions(cfg config.AppConfig) []pricedex.Option {
	endpoint := cfg.AnalysisEndpoint()
	if endpoint == nil || !endpoint.IsConfigured() || endpoint.APIKey() == "" {
		return nil
	}

	p := provider.NewOpenAIProviderFromConfig(provider.OpenAIConfig{
		APIKey:        endpoint.APIKey(),
		BaseURL:       endpoint.BaseURL(),
		ChatModel:     endpoint.Model(),
		Timeout:       endpoint.Timeout(),
		MaxRetries:    endpoint.MaxRetries(),
		InitialDelay:  endpoint.InitialDelay(),
		BackoffFactor: endpoint.BackoffFactor(),
		CacheDir:      endpoint.CacheDir(),
	})

	return []pricedex.Option{
		pricedex.WithTextProvider(p),
		pricedex.WithAnalysisTemperature(endpoint.Temperature()),
		pricedex.WithAnalysisMaxTokens(endpoint.MaxTokens()),
	}
}

// isSQLite checks if the database URL is for SQLite.
func isSQLite(url string) bool {
	return strings.HasPrefix(url, "sqlite:")
}
