package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html/charset"

	"github.com/hpungsan/linkgrab/internal/config"
)

// HTTP fetches documents with a plain GET.
type HTTP struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// NewHTTP creates an HTTP fetcher. A zero FetchTimeoutSeconds means no timeout.
func NewHTTP(cfg *config.Config) *HTTP {
	return &HTTP{
		client:    &http.Client{Timeout: cfg.FetchTimeout()},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
	}
}

// FetchText GETs url and returns the body decoded to UTF-8.
// Any non-2xx response is an error.
func (h *HTTP) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, resp.Status); err != nil {
		return "", err
	}

	var body io.Reader = resp.Body
	if h.maxBody > 0 {
		body = io.LimitReader(body, h.maxBody)
	}

	// Honour the declared charset, falling back to sniffing the body
	decoded, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	text, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(text), nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
