// Package antidetect implements the evasion behaviors used by the
// browser-driven backends: identity rotation, cookie/header seeding,
// resource blocking, human-like pacing, consent dismissal and lazy-content
// triggering. Each behavior is mechanical and independently toggleable.
package antidetect

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/umerzulfiqar021/Puppeteer/config"
)

// userAgents is the fixed pool a session identity is drawn from. Desktop
// Chrome/Firefox/Safari on the three major platforms.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",
}

// consentSelectors is the fixed ordered list of consent/overlay dismissers.
// The first match found is clicked; absence of all of them is fine.
var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	`button[aria-label="Dismiss sign-in info."]`,
	`button[aria-label="Accept cookies"]`,
	`[data-testid="cookie-banner"] button`,
	`button[id*="accept"]`,
}

// Controller applies the configured anti-detection behaviors. One
// Controller serves all requests; the per-session identity is chosen on
// each call to UserAgent.
type Controller struct {
	cfg config.AntiDetectConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Controller for the given configuration.
func New(cfg config.AntiDetectConfig) *Controller {
	return &Controller{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// UserAgent returns one pseudo-randomly selected user agent for a session,
// or the empty string when rotation is disabled (callers keep the browser
// default in that case).
func (c *Controller) UserAgent() string {
	if !c.cfg.RotateUserAgent {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return userAgents[c.rng.Intn(len(userAgents))]
}

// SeedHeaders returns the request headers that mimic a returning visitor
// arriving from a search engine.
func (c *Controller) SeedHeaders(targetURL string) map[string]string {
	if !c.cfg.SeedIdentity {
		return nil
	}
	headers := map[string]string{
		"Accept-Language": "en-US,en;q=0.9",
		"Sec-Fetch-Site":  "cross-site",
		"Sec-Fetch-Mode":  "navigate",
	}
	if u, err := url.Parse(targetURL); err == nil {
		headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
	}
	return headers
}

// SeedCookies returns a small cookie set that makes the session look like a
// returning visitor rather than a first contact.
func (c *Controller) SeedCookies(host string) []http.Cookie {
	if !c.cfg.SeedIdentity {
		return nil
	}
	c.mu.Lock()
	visits := 2 + c.rng.Intn(4)
	c.mu.Unlock()

	firstSeen := time.Now().AddDate(0, 0, -(7 + visits)).Unix()
	return []http.Cookie{
		{Name: "bkng_prue", Value: "1", Domain: host, Path: "/"},
		{Name: "cors_js", Value: "1", Domain: host, Path: "/"},
		{Name: "OptanonAlertBoxClosed", Value: time.Unix(firstSeen, 0).UTC().Format(time.RFC3339), Domain: host, Path: "/"},
	}
}

// Pause sleeps for a randomized interval between the configured bounds, to
// break up uniform timing signatures. It returns early if the context ends
// or when humanized delays are disabled.
func (c *Controller) Pause(ctx context.Context) {
	if !c.cfg.HumanizeDelays {
		return
	}
	c.mu.Lock()
	span := c.cfg.MaxDelay - c.cfg.MinDelay
	d := c.cfg.MinDelay
	if span > 0 {
		d += time.Duration(c.rng.Int63n(int64(span)))
	}
	c.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// ConsentSelectors exposes the ordered dismissal list for non-rod drivers.
func (c *Controller) ConsentSelectors() []string {
	if !c.cfg.DismissConsent {
		return nil
	}
	return consentSelectors
}

// Config returns the controller's configuration (read-only use).
func (c *Controller) Config() config.AntiDetectConfig {
	return c.cfg
}
