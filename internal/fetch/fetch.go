// Package fetch retrieves a single document as text.
package fetch

import (
	"context"
	"fmt"

	"github.com/hpungsan/linkgrab/internal/config"
)

// Fetcher retrieves a document as text and owns any resources it holds.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
	Close() error
}

// New returns the fetcher selected by cfg.Fetcher.
func New(cfg *config.Config) (Fetcher, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	switch cfg.Fetcher {
	case "", config.FetcherHTTP:
		return NewHTTP(cfg), nil
	case config.FetcherBrowser:
		return NewBrowser(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetcher %q (want %q or %q)", cfg.Fetcher, config.FetcherHTTP, config.FetcherBrowser)
	}
}

// checkStatus rejects any status outside 200-299.
func checkStatus(code int, status string) error {
	if code < 200 || code > 299 {
		return fmt.Errorf("unexpected status: %s", status)
	}
	return nil
}
