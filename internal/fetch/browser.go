package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/hpungsan/linkgrab/internal/config"
)

// Browser renders documents in headless Chrome and returns the resulting markup.
// Chrome is started lazily on the first fetch.
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	wait     time.Duration
}

// NewBrowser creates a Browser fetcher.
func NewBrowser(cfg *config.Config) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  cfg.FetchTimeout(),
		wait:     time.Duration(cfg.BrowserWaitMS) * time.Millisecond,
	}
}

// FetchText navigates a fresh tab to url and returns the outer HTML of <html>.
// A non-2xx document response is an error.
func (b *Browser) FetchText(ctx context.Context, url string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	// Tie the tab to the caller's context
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if b.timeout > 0 {
		var timeoutCancel context.CancelFunc
		tabCtx, timeoutCancel = context.WithTimeout(tabCtx, b.timeout)
		defer timeoutCancel()
	}

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
	if err != nil {
		return "", err
	}
	if err := checkResponse(resp); err != nil {
		return "", err
	}

	tasks := chromedp.Tasks{chromedp.WaitReady("body")}
	if b.wait > 0 {
		tasks = append(tasks, chromedp.Sleep(b.wait))
	}

	var page string
	tasks = append(tasks, chromedp.OuterHTML("html", &page))

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return "", err
	}
	return page, nil
}

// checkResponse applies the status rule to the main document response.
// A nil response means no network request was made.
func checkResponse(resp *network.Response) error {
	if resp == nil {
		return nil
	}
	status := fmt.Sprintf("%d %s", resp.Status, resp.StatusText)
	return checkStatus(int(resp.Status), status)
}

// Close shuts down the browser.
func (b *Browser) Close() error {
	b.cancel()
	return nil
}
