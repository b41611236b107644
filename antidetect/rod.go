package antidetect

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// configToProto maps human-readable config strings to Rod protocol resource types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// trackerDomains is a set of analytics/advertising domains blocked to shrink
// both load time and fingerprint surface.
var trackerDomains = map[string]struct{}{
	"doubleclick.net":         {},
	"googlesyndication.com":   {},
	"googleadservices.com":    {},
	"google-analytics.com":    {},
	"googletagmanager.com":    {},
	"connect.facebook.net":    {},
	"facebook.com":            {},
	"hotjar.com":              {},
	"mixpanel.com":            {},
	"segment.io":              {},
	"scorecardresearch.com":   {},
	"criteo.com":              {},
	"taboola.com":             {},
	"outbrain.com":            {},
	"amazon-adsystem.com":     {},
	"optimizely.com":          {},
	"demdex.net":              {},
	"adnxs.com":               {},
}

// isTrackerDomain checks a hostname and its parent domains against the blocklist.
func isTrackerDomain(host string) bool {
	host = strings.ToLower(host)
	if _, ok := trackerDomains[host]; ok {
		return true
	}
	for {
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
		if _, ok := trackerDomains[host]; ok {
			return true
		}
	}
}

// PreparePage applies the pre-navigation behaviors to a rod page: user-agent
// override, seeded headers and cookies, and the resource-blocking hijack
// router. It must run before Navigate — the hijack and header overrides only
// affect navigations that happen after they are installed.
//
// The returned router is nil when nothing is blocked; otherwise the caller
// must defer router.Stop().
func (c *Controller) PreparePage(page *rod.Page, targetURL string) *rod.HijackRouter {
	if ua := c.UserAgent(); ua != "" {
		_ = proto.NetworkSetUserAgentOverride{UserAgent: ua}.Call(page)
	}

	if headers := c.SeedHeaders(targetURL); len(headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)
	}

	host := ""
	if u, err := url.Parse(targetURL); err == nil {
		host = u.Host
	}
	for _, cookie := range c.SeedCookies(host) {
		_, _ = proto.NetworkSetCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: cookie.Domain,
			Path:   cookie.Path,
		}.Call(page)
	}

	return c.mountHijack(page)
}

// mountHijack installs a request interceptor that blocks the configured
// resource types and known tracker domains. Returns nil if blocking is off.
func (c *Controller) mountHijack(page *rod.Page) *rod.HijackRouter {
	if !c.cfg.BlockResources {
		return nil
	}

	blocked := make(map[proto.NetworkResourceType]struct{}, len(c.cfg.BlockedResourceTypes))
	for _, name := range c.cfg.BlockedResourceTypes {
		if rt, ok := configToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 {
		return nil
	}

	router := page.HijackRequests()

	// Pattern "*" + empty resourceType = intercept everything, then decide
	// per request.
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, shouldBlock := blocked[ctx.Request.Type()]; shouldBlock {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if u, err := url.Parse(ctx.Request.URL().String()); err == nil {
			if isTrackerDomain(u.Hostname()) {
				ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine. It exits
	// when router.Stop() is called.
	go router.Run()

	return router
}

// DismissConsent scans the fixed ordered selector list and clicks the first
// match. Absence of every selector is tolerated silently.
func (c *Controller) DismissConsent(p *rod.Page) {
	if !c.cfg.DismissConsent {
		return
	}
	for _, sel := range consentSelectors {
		els, err := p.Elements(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		if err := els[0].Click(proto.InputMouseButtonLeft, 1); err != nil {
			slog.Debug("consent click failed", "selector", sel, "error", err)
			continue
		}
		slog.Debug("consent overlay dismissed", "selector", sel)
		return
	}
}

// TriggerLazyContent scrolls the viewport in fixed increments with pauses so
// lazy-loaded sections hydrate.
func (c *Controller) TriggerLazyContent(ctx context.Context, p *rod.Page) {
	if !c.cfg.TriggerLazyLoad {
		return
	}

	viewportHeight := 800
	if res, err := p.Eval(`() => window.innerHeight`); err == nil {
		if h := res.Value.Int(); h > 0 {
			viewportHeight = h
		}
	}

	for i := 0; i < c.cfg.ScrollSteps; i++ {
		if ctx.Err() != nil {
			return
		}
		if err := p.Mouse.Scroll(0, float64(viewportHeight), 0); err != nil {
			slog.Debug("scroll step failed", "step", i, "error", err)
			return
		}
		c.Pause(ctx)
	}
}

// WaitHydrated waits until the hydration selector yields more than the
// configured number of items, up to the hydration timeout. A timeout means
// "feature absent", never an error.
func (c *Controller) WaitHydrated(p *rod.Page) {
	if !c.cfg.TriggerLazyLoad || c.cfg.HydrationSelector == "" || c.cfg.HydrationMinItems <= 0 {
		return
	}
	timeout := c.cfg.HydrationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	err := p.Timeout(timeout).WaitElementsMoreThan(c.cfg.HydrationSelector, c.cfg.HydrationMinItems-1)
	if err != nil {
		slog.Debug("hydration wait did not converge, proceeding with current DOM",
			"selector", c.cfg.HydrationSelector, "error", err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
