package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/umerzulfiqar021/Puppeteer/antidetect"
	"github.com/umerzulfiqar021/Puppeteer/config"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// Local launches a fresh, isolated headless browser process for every
// render call and kills it unconditionally at the end of the call — no
// session survives a request.
type Local struct {
	cfg        config.BackendConfig
	ad         *antidetect.Controller
	navTimeout time.Duration
}

// NewLocal creates the local headless-browser backend.
func NewLocal(cfg config.BackendConfig, ad *antidetect.Controller, navTimeout time.Duration) *Local {
	return &Local{cfg: cfg, ad: ad, navTimeout: navTimeout}
}

func (b *Local) Kind() models.BackendKind { return models.BackendLocal }

func (b *Local) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	l := launcher.New().
		Headless(b.cfg.Headless).
		NoSandbox(b.cfg.NoSandbox)

	if b.cfg.BrowserBin != "" {
		l = l.Bin(b.cfg.BrowserBin)
	}

	applyStealthFlags(l)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, transientErr(b.Kind(), "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, transientErr(b.Kind(), "failed to connect to browser", err)
	}

	// Guaranteed cleanup on every exit path: close the connection, then
	// kill the browser process so nothing leaks across requests.
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			slog.Warn("browser close failed", "backend", b.Kind(), "error", closeErr)
		}
		l.Kill()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, transientErr(b.Kind(), "failed to create page", err)
	}

	return renderRodPage(ctx, b.Kind(), page, req, b.ad, b.navTimeout)
}

// applyStealthFlags sets the launch flags that strip the obvious automation
// markers from a fresh browser process.
func applyStealthFlags(l *launcher.Launcher) {
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
}
