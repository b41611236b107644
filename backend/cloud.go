package backend

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/umerzulfiqar021/Puppeteer/antidetect"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// Cloud renders through an externally hosted browser reached over the
// DevTools protocol. Credentials (if any) are embedded opaquely in the
// websocket URL. Disconnecting closes our session but leaves the remote
// browser process running.
type Cloud struct {
	wsURL      string
	ad         *antidetect.Controller
	navTimeout time.Duration
}

// NewCloud creates the cloud browser-service backend.
func NewCloud(wsURL string, ad *antidetect.Controller, navTimeout time.Duration) *Cloud {
	return &Cloud{wsURL: wsURL, ad: ad, navTimeout: navTimeout}
}

func (b *Cloud) Kind() models.BackendKind { return models.BackendCloud }

func (b *Cloud) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	browser := rod.New().ControlURL(b.wsURL)
	if err := browser.Connect(); err != nil {
		return nil, transientErr(b.Kind(), "failed to connect to cloud browser", err)
	}
	// Close disconnects the websocket but does NOT kill the hosted browser.
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, transientErr(b.Kind(), "failed to create page on cloud browser", err)
	}
	defer func() { _ = page.Close() }()

	return renderRodPage(ctx, b.Kind(), page, req, b.ad, b.navTimeout)
}
