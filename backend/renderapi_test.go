package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/umerzulfiqar021/Puppeteer/antidetect"
	"github.com/umerzulfiqar021/Puppeteer/config"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

func newTestRenderAPI(t *testing.T, handler http.HandlerFunc) *RenderAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ad := antidetect.New(config.AntiDetectConfig{RotateUserAgent: true})
	b := NewRenderAPI(srv.URL, "test-key", "us", ad, 5*time.Second)
	// The test server speaks plain HTTP; drop the utls transport.
	b.client = srv.Client()
	return b
}

func TestRenderAPI_Render(t *testing.T) {
	var gotPayload renderAPIPayload
	b := newTestRenderAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(renderAPIResponse{
			HTML:        "<html><head><title>Hotels in Paris</title></head><body>ok</body></html>",
			ResolvedURL: "https://www.booking.com/searchresults.html?ss=Paris",
			StatusCode:  200,
		})
	})

	res, err := b.Render(context.Background(), &RenderRequest{
		URL:  "https://www.booking.com/searchresults.html?ss=Paris",
		Mode: models.ModeSearch,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if res.Title != "Hotels in Paris" {
		t.Errorf("title = %q", res.Title)
	}
	if res.Backend != models.BackendRenderAPI {
		t.Errorf("backend = %q", res.Backend)
	}
	if res.ContentLength == 0 {
		t.Error("content length not set")
	}

	// The action script is wait → scroll_to_bottom → wait.
	if len(gotPayload.Actions) != 3 ||
		gotPayload.Actions[0].Type != "wait" ||
		gotPayload.Actions[1].Type != "scroll_to_bottom" ||
		gotPayload.Actions[2].Type != "wait" {
		t.Errorf("unexpected action script: %+v", gotPayload.Actions)
	}
	if gotPayload.CountryCode != "us" {
		t.Errorf("country hint = %q", gotPayload.CountryCode)
	}
}

func TestRenderAPI_QuotaExhaustedIsTransient(t *testing.T) {
	b := newTestRenderAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := b.Render(context.Background(), &RenderRequest{URL: "https://example.com", Mode: models.ModeSearch})
	if err == nil {
		t.Fatal("expected error")
	}
	renderErr, ok := err.(*RenderError)
	if !ok {
		t.Fatalf("error type %T, want *RenderError", err)
	}
	if !renderErr.Transient {
		t.Error("quota exhaustion must be transient so the orchestrator fails over")
	}
}

func TestRenderAPI_RawHTMLFallback(t *testing.T) {
	b := newTestRenderAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>Raw</title></head><body></body></html>"))
	})

	res, err := b.Render(context.Background(), &RenderRequest{URL: "https://example.com/page", Mode: models.ModeDetail})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Title != "Raw" {
		t.Errorf("title = %q, want fallback-parsed title", res.Title)
	}
	if res.FinalURL != "https://example.com/page" {
		t.Errorf("final URL = %q, want request URL fallback", res.FinalURL)
	}
}
