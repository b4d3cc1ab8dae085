package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pricedex/pricedex/infrastructure/provider"
)

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("pricedex: client is closed")

// ErrStore indicates a persistence failure.
var ErrStore = errors.New("store failure")

// ErrEmbedder indicates the embedding provider failed.
var ErrEmbedder = errors.New("embedding failure")

// ErrGenerator indicates the text generation provider failed.
var ErrGenerator = errors.New("text generation failure")

// ErrNoMatch indicates a search returned no candidates to analyze.
var ErrNoMatch = errors.New("no matching product")

// ErrTransient marks failures that are safe for the caller to retry, such as
// provider rate limits and timeouts.
var ErrTransient = errors.New("transient failure")

// wrapTransient tags rate-limit and deadline failures with ErrTransient so
// callers can retry without inspecting provider internals.
func wrapTransient(err error) error {
	var providerErr *provider.ProviderError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, provider.ErrRateLimited):
		return fmt.Errorf("%w: %w", ErrTransient, err)
	case errors.As(err, &providerErr) && providerErr.IsRateLimited():
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}
