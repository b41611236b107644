package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/umerzulfiqar021/Puppeteer/config"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// stubService returns canned responses so routing, auth and status mapping
// can be tested without any backend.
type stubService struct {
	search *models.SearchResponse
	detail *models.DetailResponse
	kinds  []models.BackendKind
}

func (s *stubService) SearchHotels(context.Context, *models.SearchRequest) *models.SearchResponse {
	return s.search
}

func (s *stubService) GetHotelDetail(context.Context, *models.DetailRequest) *models.DetailResponse {
	return s.detail
}

func (s *stubService) Kinds() []models.BackendKind { return s.kinds }

func testRouterConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
	}
}

func okService() *stubService {
	return &stubService{
		search: &models.SearchResponse{
			Success: true,
			Hotels:  []models.HotelSummary{{Name: "Alpha Hotel"}},
			Count:   1,
		},
		detail: &models.DetailResponse{
			Success: true,
			Detail:  &models.HotelDetail{Name: "Alpha Hotel"},
		},
		kinds: []models.BackendKind{models.BackendCloud},
	}
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_SearchOK(t *testing.T) {
	r := NewRouter(okService(), testRouterConfig(), time.Now())

	w := doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":"Paris"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Count != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRouter_SearchMalformedJSON(t *testing.T) {
	r := NewRouter(okService(), testRouterConfig(), time.Now())

	w := doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":`, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestRouter_SearchErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeBackendUnavailable, http.StatusServiceUnavailable},
		{models.ErrCodeRenderTransient, http.StatusBadGateway},
		{models.ErrCodeBlocked, http.StatusBadGateway},
		{models.ErrCodeExtractionEmpty, http.StatusBadGateway},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		svc := okService()
		svc.search = &models.SearchResponse{
			Success: false,
			Hotels:  []models.HotelSummary{},
			Error:   &models.ErrorDetail{Code: c.code, Message: "x"},
		}
		r := NewRouter(svc, testRouterConfig(), time.Now())

		w := doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":"Paris"}`, nil)
		if w.Code != c.want {
			t.Errorf("%s: status = %d, want %d", c.code, w.Code, c.want)
		}
	}
}

func TestRouter_HotelOK(t *testing.T) {
	r := NewRouter(okService(), testRouterConfig(), time.Now())

	w := doJSON(t, r, http.MethodPost, "/api/v1/hotel",
		`{"url":"https://www.booking.com/hotel/fr/alpha.html"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.DetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Detail == nil || resp.Detail.Name != "Alpha Hotel" {
		t.Errorf("detail = %+v", resp.Detail)
	}
}

func TestRouter_Health(t *testing.T) {
	r := NewRouter(okService(), testRouterConfig(), time.Now())

	w := doJSON(t, r, http.MethodGet, "/api/v1/health", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || len(resp.Backends) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRouter_HealthDegradedWithoutBackends(t *testing.T) {
	svc := okService()
	svc.kinds = nil
	r := NewRouter(svc, testRouterConfig(), time.Now())

	w := doJSON(t, r, http.MethodGet, "/api/v1/health", "", nil)

	var resp models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	cfg := testRouterConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}
	r := NewRouter(okService(), cfg, time.Now())

	// Missing key.
	w := doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":"Paris"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d", w.Code)
	}

	// Wrong key.
	w = doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":"Paris"}`,
		map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d", w.Code)
	}

	// Valid key via header.
	w = doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":"Paris"}`,
		map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusOK {
		t.Errorf("valid key: status = %d", w.Code)
	}

	// Valid key via bearer token.
	w = doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":"Paris"}`,
		map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusOK {
		t.Errorf("bearer key: status = %d", w.Code)
	}

	// Health stays open.
	w = doJSON(t, r, http.MethodGet, "/api/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health behind auth: status = %d", w.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testRouterConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}
	r := NewRouter(okService(), cfg, time.Now())

	for i := 0; i < 2; i++ {
		if w := doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":"Paris"}`, nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/search", `{"location":"Paris"}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("over burst: status = %d", w.Code)
	}
}
