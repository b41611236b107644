package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/umerzulfiqar021/Puppeteer/antidetect"
	"github.com/umerzulfiqar021/Puppeteer/config"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// serverlessBinCandidates are probed when no binary path is configured.
// headless-shell is the minimal bundled browser used in short-lived
// execution environments.
var serverlessBinCandidates = []string{
	"/headless-shell/headless-shell",
	"/opt/headless-shell/headless-shell",
	"/usr/bin/headless-shell",
}

// Serverless drives a minimal bundled browser binary through chromedp.
// Same contract as the local backend: one fresh browser per request,
// released on every exit path (the chromedp context cancels tear the
// process down).
type Serverless struct {
	cfg        config.BackendConfig
	ad         *antidetect.Controller
	navTimeout time.Duration
}

// NewServerless creates the serverless-packaged browser backend.
func NewServerless(cfg config.BackendConfig, ad *antidetect.Controller, navTimeout time.Duration) *Serverless {
	return &Serverless{cfg: cfg, ad: ad, navTimeout: navTimeout}
}

func (b *Serverless) Kind() models.BackendKind { return models.BackendServerless }

func (b *Serverless) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	bin := b.cfg.ServerlessBin
	if bin == "" {
		bin = findServerlessBinary()
	}
	if bin == "" {
		return nil, transientErr(b.Kind(), "no headless-shell binary found", nil)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(bin),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if ua := b.ad.UserAgent(); ua != "" {
		opts = append(opts, chromedp.UserAgent(ua))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise; cancel tears down the browser process.
	taskCtx, cancelTask := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTask()

	b.ad.Pause(ctx)

	navCtx, cancelNav := context.WithTimeout(taskCtx, b.navTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(req.URL)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, transientErr(b.Kind(), "navigation timed out", err)
		}
		return nil, transientErr(b.Kind(), "navigation failed", err)
	}

	b.dismissConsent(taskCtx)
	b.triggerLazyContent(ctx, taskCtx)

	var html, title, finalURL string
	if err := chromedp.Run(taskCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Title(&title),
		chromedp.Location(&finalURL),
	); err != nil {
		return nil, transientErr(b.Kind(), "failed to extract page HTML", err)
	}
	if finalURL == "" {
		finalURL = req.URL
	}

	return &RenderResult{
		HTML:          html,
		FinalURL:      finalURL,
		Title:         title,
		ContentLength: len(html),
		Backend:       b.Kind(),
		Diagnostics: map[string]any{
			"mode":    string(req.Mode),
			"browser": bin,
		},
	}, nil
}

// dismissConsent clicks the first matching consent selector, best-effort.
func (b *Serverless) dismissConsent(taskCtx context.Context) {
	for _, sel := range b.ad.ConsentSelectors() {
		var clicked bool
		js := fmt.Sprintf(
			`(() => { const el = document.querySelector(%q); if (el) { el.click(); return true; } return false; })()`,
			sel,
		)
		if err := chromedp.Run(taskCtx, chromedp.Evaluate(js, &clicked)); err != nil {
			slog.Debug("consent probe failed", "selector", sel, "error", err)
			continue
		}
		if clicked {
			slog.Debug("consent overlay dismissed", "selector", sel)
			return
		}
	}
}

// triggerLazyContent scrolls the viewport in fixed increments with pauses.
func (b *Serverless) triggerLazyContent(ctx, taskCtx context.Context) {
	adCfg := b.ad.Config()
	if !adCfg.TriggerLazyLoad {
		return
	}
	for i := 0; i < adCfg.ScrollSteps; i++ {
		if ctx.Err() != nil {
			return
		}
		err := chromedp.Run(taskCtx,
			chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil))
		if err != nil {
			slog.Debug("scroll step failed", "step", i, "error", err)
			return
		}
		b.ad.Pause(ctx)
	}
}

// findServerlessBinary probes the usual headless-shell install locations.
func findServerlessBinary() string {
	for _, candidate := range serverlessBinCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
