package scraper

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/umerzulfiqar021/Puppeteer/backend"
	"github.com/umerzulfiqar021/Puppeteer/cache"
	"github.com/umerzulfiqar021/Puppeteer/config"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

const twoCardsPage = `<html><head><title>Hotels in Paris</title></head><body>
<div data-testid="property-card"><div data-testid="title">Alpha Hotel</div></div>
<div data-testid="property-card"><div data-testid="title">Beta Hotel</div></div>
</body></html>`

const emptyResultsPage = `<html><head><title>Hotels in Paris</title></head><body>
<p>No property cards rendered.</p></body></html>`

const blockedPage = `<html><head><title>Access Denied</title></head><body>
<p>Request rejected.</p></body></html>`

// fakeBackend is a scripted Backend for pipeline tests.
type fakeBackend struct {
	kind  models.BackendKind
	html  string
	title string
	err   error
	calls int
}

func (f *fakeBackend) Kind() models.BackendKind { return f.kind }

func (f *fakeBackend) Render(_ context.Context, req *backend.RenderRequest) (*backend.RenderResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	title := f.title
	if title == "" {
		title = "Hotels in Paris"
	}
	return &backend.RenderResult{
		HTML:          f.html,
		FinalURL:      req.URL,
		Title:         title,
		ContentLength: len(f.html),
		Backend:       f.kind,
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Scraper: config.ScraperConfig{
			RenderTimeout:     5 * time.Second,
			NavigationTimeout: time.Second,
		},
		Validation: config.ValidationConfig{
			MinContentLength:    10,
			BlockedTitleMarkers: []string{"access denied", "just a moment"},
			RobotTextMarkers:    []string{"verify you are a human"},
			ErrorURLMarkers:     []string{"searchresults_error"},
		},
	}
}

func testOrchestrator(backends ...backend.Backend) *Orchestrator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(backends, testConfig(), cache.New(16), log)
}

func searchReq() *models.SearchRequest {
	return &models.SearchRequest{
		Location: "Paris",
		Checkin:  "2030-06-01",
		Checkout: "2030-06-03",
	}
}

func TestSearchHotels_FailoverToAlternateBackend(t *testing.T) {
	first := &fakeBackend{kind: models.BackendCloud, html: emptyResultsPage}
	second := &fakeBackend{kind: models.BackendLocal, html: twoCardsPage}
	o := testOrchestrator(first, second)

	resp := o.SearchHotels(context.Background(), searchReq())

	if !resp.Success {
		t.Fatalf("success = false, error = %+v", resp.Error)
	}
	if resp.Count != 2 || len(resp.Hotels) != 2 {
		t.Errorf("count = %d, hotels = %d", resp.Count, len(resp.Hotels))
	}
	if !resp.Debug.Failover {
		t.Error("failover flag not set")
	}
	if resp.Debug.Backend != models.BackendLocal {
		t.Errorf("winning backend = %s", resp.Debug.Backend)
	}
	want := []models.BackendKind{models.BackendCloud, models.BackendLocal}
	if len(resp.Debug.BackendsTried) != 2 ||
		resp.Debug.BackendsTried[0] != want[0] || resp.Debug.BackendsTried[1] != want[1] {
		t.Errorf("backends_tried = %v, want %v", resp.Debug.BackendsTried, want)
	}
}

func TestSearchHotels_NoBackendConfigured(t *testing.T) {
	o := testOrchestrator()

	resp := o.SearchHotels(context.Background(), searchReq())

	if resp.Success {
		t.Fatal("success on empty backend pool")
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeBackendUnavailable {
		t.Errorf("error = %+v, want %s", resp.Error, models.ErrCodeBackendUnavailable)
	}
	if len(resp.Debug.BackendsTried) != 0 {
		t.Errorf("backends_tried = %v, want none", resp.Debug.BackendsTried)
	}
}

func TestSearchHotels_PreferredBackendPromoted(t *testing.T) {
	first := &fakeBackend{kind: models.BackendCloud, html: twoCardsPage}
	second := &fakeBackend{kind: models.BackendLocal, html: twoCardsPage}
	o := testOrchestrator(first, second)

	req := searchReq()
	req.PreferredBackend = models.BackendLocal
	resp := o.SearchHotels(context.Background(), req)

	if !resp.Success {
		t.Fatalf("success = false, error = %+v", resp.Error)
	}
	if resp.Debug.Backend != models.BackendLocal {
		t.Errorf("backend = %s, want local", resp.Debug.Backend)
	}
	if first.calls != 0 {
		t.Errorf("non-preferred backend rendered %d times", first.calls)
	}
}

func TestSearchHotels_UnconfiguredPreferenceRejected(t *testing.T) {
	o := testOrchestrator(&fakeBackend{kind: models.BackendCloud, html: twoCardsPage})

	req := searchReq()
	req.PreferredBackend = models.BackendServerless
	resp := o.SearchHotels(context.Background(), req)

	if resp.Success {
		t.Fatal("success with unconfigured preferred backend")
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeBackendUnavailable {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestSearchHotels_DisableFailoverStopsAfterFirstAttempt(t *testing.T) {
	first := &fakeBackend{kind: models.BackendCloud, html: emptyResultsPage}
	second := &fakeBackend{kind: models.BackendLocal, html: twoCardsPage}
	o := testOrchestrator(first, second)

	req := searchReq()
	req.DisableFailover = true
	resp := o.SearchHotels(context.Background(), req)

	if resp.Success {
		t.Fatal("success despite disabled failover and empty first attempt")
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeExtractionEmpty {
		t.Errorf("error = %+v", resp.Error)
	}
	if second.calls != 0 {
		t.Errorf("alternate backend rendered %d times with failover disabled", second.calls)
	}
	if len(resp.Debug.BackendsTried) != 1 {
		t.Errorf("backends_tried = %v", resp.Debug.BackendsTried)
	}
}

func TestSearchHotels_BlockedPageTriggersFailover(t *testing.T) {
	first := &fakeBackend{kind: models.BackendCloud, html: blockedPage, title: "Access Denied"}
	second := &fakeBackend{kind: models.BackendLocal, html: twoCardsPage}
	o := testOrchestrator(first, second)

	resp := o.SearchHotels(context.Background(), searchReq())

	if !resp.Success {
		t.Fatalf("success = false, error = %+v", resp.Error)
	}
	if !resp.Debug.BlockDetected {
		t.Error("block_detected not set after blocked first attempt")
	}
	if !resp.Debug.Failover || resp.Debug.Backend != models.BackendLocal {
		t.Errorf("debug = %+v", resp.Debug)
	}
}

func TestSearchHotels_TransientRenderErrorFailsOver(t *testing.T) {
	first := &fakeBackend{
		kind: models.BackendRenderAPI,
		err:  &backend.RenderError{Backend: models.BackendRenderAPI, Transient: true, Message: "quota exhausted"},
	}
	second := &fakeBackend{kind: models.BackendLocal, html: twoCardsPage}
	o := testOrchestrator(first, second)

	resp := o.SearchHotels(context.Background(), searchReq())

	if !resp.Success {
		t.Fatalf("success = false, error = %+v", resp.Error)
	}
	if !resp.Debug.Failover {
		t.Error("transient render error did not trigger failover")
	}
}

func TestSearchHotels_FatalRenderErrorDoesNotFailOver(t *testing.T) {
	first := &fakeBackend{
		kind: models.BackendLocal,
		err:  &backend.RenderError{Backend: models.BackendLocal, Transient: false, Message: "browser binary not found"},
	}
	second := &fakeBackend{kind: models.BackendCloud, html: twoCardsPage}
	o := testOrchestrator(first, second)

	resp := o.SearchHotels(context.Background(), searchReq())

	if resp.Success {
		t.Fatal("success despite fatal first attempt")
	}
	if second.calls != 0 {
		t.Errorf("alternate backend rendered %d times after a fatal error", second.calls)
	}
}

func TestSearchHotels_SingleFailoverOnly(t *testing.T) {
	first := &fakeBackend{kind: models.BackendCloud, html: emptyResultsPage}
	second := &fakeBackend{kind: models.BackendLocal, html: emptyResultsPage}
	third := &fakeBackend{kind: models.BackendServerless, html: twoCardsPage}
	o := testOrchestrator(first, second, third)

	resp := o.SearchHotels(context.Background(), searchReq())

	if resp.Success {
		t.Fatal("success after two empty attempts; a third attempt must not happen")
	}
	if third.calls != 0 {
		t.Errorf("third backend rendered %d times, fail-over is single-shot", third.calls)
	}
	if len(resp.Debug.BackendsTried) != 2 {
		t.Errorf("backends_tried = %v", resp.Debug.BackendsTried)
	}
}

func TestSearchHotels_CacheHitSkipsRender(t *testing.T) {
	b := &fakeBackend{kind: models.BackendCloud, html: twoCardsPage}
	o := testOrchestrator(b)

	req := searchReq()
	req.MaxAge = 60_000
	first := o.SearchHotels(context.Background(), req)
	if !first.Success || first.Debug.CacheStatus != "miss" {
		t.Fatalf("first call: success=%v cache=%s", first.Success, first.Debug.CacheStatus)
	}

	renders := b.calls
	second := o.SearchHotels(context.Background(), req)
	if !second.Success || second.Debug.CacheStatus != "hit" {
		t.Fatalf("second call: success=%v cache=%s", second.Success, second.Debug.CacheStatus)
	}
	if b.calls != renders {
		t.Errorf("cache hit still rendered (%d -> %d calls)", renders, b.calls)
	}
	if second.Count != first.Count {
		t.Errorf("cached count = %d, want %d", second.Count, first.Count)
	}
}

func TestSearchHotels_InvalidInputNeverRenders(t *testing.T) {
	b := &fakeBackend{kind: models.BackendCloud, html: twoCardsPage}
	o := testOrchestrator(b)

	resp := o.SearchHotels(context.Background(), &models.SearchRequest{Location: "   "})

	if resp.Success {
		t.Fatal("success with blank location")
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %+v", resp.Error)
	}
	if b.calls != 0 {
		t.Errorf("backend rendered %d times for invalid input", b.calls)
	}
}

const detailPage = `<html><head>
<script type="application/ld+json">{"@type":"Hotel","name":"Alpha Hotel"}</script>
</head><body><p>hotel page body text long enough</p></body></html>`

func TestGetHotelDetail_Success(t *testing.T) {
	b := &fakeBackend{kind: models.BackendCloud, html: detailPage, title: "Alpha Hotel"}
	o := testOrchestrator(b)

	resp := o.GetHotelDetail(context.Background(), &models.DetailRequest{
		URL: "https://www.booking.com/hotel/fr/alpha.html?aid=9",
	})

	if !resp.Success {
		t.Fatalf("success = false, error = %+v", resp.Error)
	}
	if resp.Detail == nil || resp.Detail.Name != "Alpha Hotel" {
		t.Errorf("detail = %+v", resp.Detail)
	}
	if resp.Debug.Backend != models.BackendCloud {
		t.Errorf("backend = %s", resp.Debug.Backend)
	}
}

func TestGetHotelDetail_EmptyURLRejected(t *testing.T) {
	b := &fakeBackend{kind: models.BackendCloud, html: detailPage}
	o := testOrchestrator(b)

	resp := o.GetHotelDetail(context.Background(), &models.DetailRequest{URL: "  "})

	if resp.Success {
		t.Fatal("success with blank url")
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %+v", resp.Error)
	}
	if b.calls != 0 {
		t.Errorf("backend rendered %d times", b.calls)
	}
}

func TestGetHotelDetail_EmptyExtractionFailsOver(t *testing.T) {
	first := &fakeBackend{kind: models.BackendCloud, html: "<html><body>nothing useful here at all</body></html>"}
	second := &fakeBackend{kind: models.BackendLocal, html: detailPage}
	o := testOrchestrator(first, second)

	resp := o.GetHotelDetail(context.Background(), &models.DetailRequest{
		URL: "https://www.booking.com/hotel/fr/alpha.html",
	})

	if !resp.Success {
		t.Fatalf("success = false, error = %+v", resp.Error)
	}
	if !resp.Debug.Failover || resp.Detail.Name != "Alpha Hotel" {
		t.Errorf("failover=%v detail=%+v", resp.Debug.Failover, resp.Detail)
	}
}
