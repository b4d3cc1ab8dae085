// Package pricedex provides a library for indexing and searching commodity
// product price records.
//
// Pricedex stores product records keyed by HSN code and country, embeds
// their canonical text for cosine-similarity search, and generates
// LLM-backed price trend analyses over the stored history.
//
// Basic usage:
//
//	client, err := pricedex.New(
//	    pricedex.WithSQLite(".pricedex/data.db"),
//	    pricedex.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Store a product with its price history
//	result, err := client.Products.Upsert(ctx, product.Candidate{
//	    Name:    "Ceramic tiles",
//	    HSNCode: "690100",
//	    Country: "japan",
//	    Prices:  map[string]float64{"2023": 12.5, "2024": 13.1},
//	})
//
//	// Similarity search over priced records
//	matches, err := client.Search.Query(ctx, "glazed ceramic tiles",
//	    service.WithTopK(5),
//	)
//
//	// Price trend analysis for the closest match
//	report, err := client.Analysis.Analyze(ctx, "ceramic tiles from japan")
package pricedex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/pricedex/pricedex/application/service"
	"github.com/pricedex/pricedex/infrastructure/persistence"
	"github.com/pricedex/pricedex/infrastructure/provider"
	"github.com/pricedex/pricedex/internal/config"
	"github.com/pricedex/pricedex/internal/database"
)

// ErrNoDatabase indicates no database was configured.
var ErrNoDatabase = errors.New("pricedex: no database configured, use WithSQLite or WithPostgres")

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = service.ErrClientClosed

// Client is the main entry point for the pricedex library.
// The database keep-alive probe starts automatically on creation.
//
// Access resources via struct fields:
//
//	client.Products.Upsert(ctx, candidate)
//	client.Search.Query(ctx, "query")
//	client.Analysis.Analyze(ctx, "query")
type Client struct {
	// Public resource fields (direct service access)
	Products    *service.Indexer
	Search      *service.Retriever
	Maintenance *service.Maintenance
	Analysis    *service.Analyzer

	db           database.Database
	productStore *persistence.ProductStore
	keepAlive    *service.KeepAlive

	hugotEmbedding *provider.HugotEmbedding
	closers        []io.Closer

	logger  *slog.Logger
	dataDir string
	apiKeys []string
	closed  atomic.Bool
	mu      sync.Mutex
}

// New creates a new Client with the given options.
// The keep-alive probe is started automatically when enabled.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, ErrNoDatabase
	}

	// Set up logger
	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	// Set up data directory
	dataDir, err := config.PrepareDataDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}

	// Create built-in embedding provider if no external provider is configured
	var hugotEmbedding *provider.HugotEmbedding
	if cfg.embeddingProvider == nil {
		modelDir := cfg.modelDir
		if modelDir == "" {
			modelDir = filepath.Join(dataDir, "models")
		}
		hugotEmbedding = provider.NewHugotEmbedding(modelDir)
		if hugotEmbedding.Available() {
			cfg.embeddingProvider = hugotEmbedding
			logger.Info("built-in embedding provider enabled", slog.String("model_dir", modelDir))
		} else {
			return nil, fmt.Errorf("no embedding model found in %s, run 'go run ./tools/download-model' or configure an external embedding provider", modelDir)
		}
	}

	// Build database URL
	ctx := context.Background()
	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("build database url: %w", err)
	}

	// Open database
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Run auto migration
	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	// Create stores
	productStore := persistence.NewProductStore(db, logger)

	client := &Client{
		db:             db,
		productStore:   productStore,
		hugotEmbedding: hugotEmbedding,
		closers:        cfg.closers,
		logger:         logger,
		dataDir:        dataDir,
		apiKeys:        cfg.apiKeys,
	}

	// Initialize service fields directly
	client.Products = service.NewIndexer(productStore, cfg.embeddingProvider, &client.closed, logger)
	client.Search = service.NewRetriever(productStore, cfg.embeddingProvider, cfg.searchLimit, cfg.candidateLimit, &client.closed, logger)
	client.Maintenance = service.NewMaintenance(productStore, &client.closed, logger)
	client.Analysis = service.NewAnalyzer(client.Search, cfg.textProvider, cfg.temperature, cfg.maxTokens, &client.closed, logger)

	// Start the background keep-alive probe
	client.keepAlive = service.NewKeepAlive(cfg.keepAlive, productStore, logger)
	client.keepAlive.Start(ctx)

	return client, nil
}

// Close releases all resources and stops the keep-alive probe.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.keepAlive.Stop()

	// Close built-in embedding provider
	if c.hugotEmbedding != nil {
		if err := c.hugotEmbedding.Close(); err != nil {
			c.logger.Error("failed to close hugot embedding", slog.Any("error", err))
		}
	}

	// Close registered resources (e.g. caching transports)
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	// Close the database
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("pricedex client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// APIKeys returns the API keys configured for HTTP write-protection.
func (c *Client) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// DataDir returns the resolved data directory.
func (c *Client) DataDir() string {
	return c.dataDir
}

// buildDatabaseURL constructs the database URL from configuration.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres:
		return cfg.dbDSN, nil
	default:
		return "", ErrNoDatabase
	}
}
