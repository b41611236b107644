package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"

	"github.com/umerzulfiqar021/Puppeteer/antidetect"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// RenderAPI is the stateless backend: one HTTP call to a remote service
// that renders the URL in its own browser fleet and returns the final HTML.
// No browser is managed on our side at all.
type RenderAPI struct {
	endpoint    string
	apiKey      string
	countryHint string
	ad          *antidetect.Controller
	client      *http.Client
}

// renderAPIPayload is the request body sent to the render service.
type renderAPIPayload struct {
	URL         string            `json:"url"`
	CountryCode string            `json:"country_code,omitempty"`
	Actions     []renderAPIAction `json:"actions,omitempty"`
}

// renderAPIAction is one post-load step the service executes before
// returning the HTML.
type renderAPIAction struct {
	Type         string `json:"type"` // "wait" | "scroll_to_bottom"
	Milliseconds int    `json:"milliseconds,omitempty"`
}

// renderAPIResponse is the service's JSON response.
type renderAPIResponse struct {
	HTML        string `json:"html"`
	ResolvedURL string `json:"resolved_url"`
	StatusCode  int    `json:"status_code"`
}

// NewRenderAPI creates the remote render-API backend. The transport carries
// a Chrome-like TLS fingerprint so even the hop to the render service blends
// in with browser traffic.
func NewRenderAPI(endpoint, apiKey, countryHint string, ad *antidetect.Controller, timeout time.Duration) *RenderAPI {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("renderapi: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &RenderAPI{
		endpoint:    endpoint,
		apiKey:      apiKey,
		countryHint: countryHint,
		ad:          ad,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

func (b *RenderAPI) Kind() models.BackendKind { return models.BackendRenderAPI }

func (b *RenderAPI) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	// Best-effort action script: wait for hydration to start, scroll to the
	// bottom to trigger lazy sections, wait for them to land.
	payload := renderAPIPayload{
		URL:         req.URL,
		CountryCode: b.countryHint,
		Actions: []renderAPIAction{
			{Type: "wait", Milliseconds: 1500},
			{Type: "scroll_to_bottom"},
			{Type: "wait", Milliseconds: 1500},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fatalErr(b.Kind(), "failed to encode render request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fatalErr(b.Kind(), "failed to build render request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", b.apiKey)
	if ua := b.ad.UserAgent(); ua != "" {
		httpReq.Header.Set("User-Agent", ua)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, transientErr(b.Kind(), "render service unreachable", err)
	}
	defer resp.Body.Close()

	// Auth failures and exhausted quotas are transient from the
	// orchestrator's point of view: try the next backend.
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, transientErr(b.Kind(), "render service rejected credentials", nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired:
		return nil, transientErr(b.Kind(), "render service quota exhausted", nil)
	case resp.StatusCode >= 400:
		return nil, transientErr(b.Kind(), fmt.Sprintf("render service returned status %d", resp.StatusCode), nil)
	}

	// Read with a 10 MB cap to bound memory use.
	const maxBody = 10 << 20
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, transientErr(b.Kind(), "failed to read render response", err)
	}

	var decoded renderAPIResponse
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.HTML == "" {
		// Some deployments return the rendered HTML directly.
		decoded = renderAPIResponse{HTML: string(raw), ResolvedURL: req.URL}
	}
	if decoded.ResolvedURL == "" {
		decoded.ResolvedURL = req.URL
	}

	return &RenderResult{
		HTML:          decoded.HTML,
		FinalURL:      decoded.ResolvedURL,
		Title:         extractTitle(decoded.HTML),
		ContentLength: len(decoded.HTML),
		Backend:       b.Kind(),
		Diagnostics: map[string]any{
			"mode":            string(req.Mode),
			"service_status":  resp.StatusCode,
			"upstream_status": decoded.StatusCode,
		},
	}, nil
}

// extractTitle uses the HTML tokenizer to find the first <title> element.
func extractTitle(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	inTitle := false
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
