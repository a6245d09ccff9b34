package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultRenderTimeout bounds a single headless-Chromium page render.
const DefaultRenderTimeout = 30 * time.Second

// RenderHTML loads a listing page in headless Chromium and returns the
// DOM serialized after scripts have run. Used for venues whose event
// tables are built client-side and therefore invisible to a plain GET.
func RenderHTML(parentCtx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("render: URL is required")
	}
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Small extra delay for late table builds.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("render: chromedp run failed: %w", err)
	}

	return []byte(html), nil
}
