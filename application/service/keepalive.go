package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pricedex/pricedex/domain/product"
	"github.com/pricedex/pricedex/internal/config"
)

// KeepAlive pings the backing store on a timer. Serverless databases pause
// after a period of inactivity; a minimal periodic read keeps them warm so
// interactive requests never pay the resume cost.
type KeepAlive struct {
	store    product.Store
	logger   *slog.Logger
	interval time.Duration
	enabled  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewKeepAlive creates a new KeepAlive from config and dependencies.
func NewKeepAlive(cfg config.KeepAliveConfig, store product.Store, logger *slog.Logger) *KeepAlive {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeepAlive{
		store:    store,
		logger:   logger,
		interval: cfg.Interval(),
		enabled:  cfg.Enabled(),
	}
}

// Start begins periodic pinging in a background goroutine.
// If disabled, this is a no-op.
func (k *KeepAlive) Start(ctx context.Context) {
	if !k.enabled {
		k.logger.Info("keep-alive disabled")
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	ctx, k.cancel = context.WithCancel(ctx)
	k.wg.Go(func() {
		k.run(ctx)
	})

	k.logger.Info("keep-alive started", slog.Duration("interval", k.interval))
}

// Stop cancels the background goroutine and waits for it to finish.
func (k *KeepAlive) Stop() {
	k.mu.Lock()
	cancel := k.cancel
	k.cancel = nil
	k.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	k.wg.Wait()
	k.logger.Info("keep-alive stopped")
}

func (k *KeepAlive) run(ctx context.Context) {
	// Ping immediately on startup
	k.ping(ctx)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.ping(ctx)
		}
	}
}

func (k *KeepAlive) ping(ctx context.Context) {
	if err := k.store.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		k.logger.Warn("keep-alive ping failed", slog.String("error", err.Error()))
		return
	}
	k.logger.Debug("keep-alive ping succeeded")
}
