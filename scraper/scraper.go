// Package scraper orchestrates the render-validate-extract pipeline across
// the configured rendering backends, with a single fail-over retry on an
// alternate backend when an attempt fails in a retriable way.
package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/umerzulfiqar021/Puppeteer/backend"
	"github.com/umerzulfiqar021/Puppeteer/bookingurl"
	"github.com/umerzulfiqar021/Puppeteer/cache"
	"github.com/umerzulfiqar021/Puppeteer/config"
	"github.com/umerzulfiqar021/Puppeteer/extractor"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// Orchestrator owns the backend pool and runs the scraping pipeline.
// Backends are tried in the order given to New; callers can promote one per
// request but never extend the pool.
type Orchestrator struct {
	backends []backend.Backend
	cfg      *config.Config
	store    *cache.Store
	log      *slog.Logger
}

// New builds an orchestrator over the given backends, in attempt order.
func New(backends []backend.Backend, cfg *config.Config, store *cache.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		backends: backends,
		cfg:      cfg,
		store:    store,
		log:      log,
	}
}

// Kinds lists the configured backends in attempt order.
func (o *Orchestrator) Kinds() []models.BackendKind {
	kinds := make([]models.BackendKind, len(o.backends))
	for i, b := range o.backends {
		kinds[i] = b.Kind()
	}
	return kinds
}

// SearchHotels renders a search-results page for the request and extracts
// the hotel cards. The response always carries debug info, on failure too.
func (o *Orchestrator) SearchHotels(ctx context.Context, req *models.SearchRequest) *models.SearchResponse {
	start := time.Now()
	debug := models.DebugInfo{RequestID: uuid.NewString()}

	req.Defaults()
	if serr := req.Validate(); serr != nil {
		return searchFailure(debug, serr)
	}

	target, err := bookingurl.BuildSearchURL(req)
	if err != nil {
		return searchFailure(debug, models.NewScrapeError(models.ErrCodeInvalidInput, "cannot build search url", err))
	}

	if req.MaxAge > 0 {
		maxAge := time.Duration(req.MaxAge) * time.Millisecond
		if hotels, ok := o.store.Get(target, maxAge); ok {
			debug.CacheStatus = "hit"
			o.log.Info("search served from cache",
				"request_id", debug.RequestID,
				"url", target,
				"hotels", len(hotels))
			return &models.SearchResponse{
				Success: true,
				Hotels:  hotels,
				Count:   len(hotels),
				Debug:   debug,
			}
		}
		debug.CacheStatus = "miss"
	}

	var hotels []models.HotelSummary
	out := o.runPipeline(ctx, req.PreferredBackend, req.DisableFailover,
		func(actx context.Context, b backend.Backend) (*backend.RenderResult, *models.ScrapeError) {
			res, rerr := b.Render(actx, &backend.RenderRequest{URL: target, Mode: models.ModeSearch})
			if rerr != nil {
				return nil, classifyRenderError(b.Kind(), rerr)
			}
			if reason := blockReason(res, o.cfg.Validation); reason != "" {
				return res, models.NewScrapeError(models.ErrCodeBlocked, reason, nil)
			}
			got := extractor.ExtractListings(res.HTML)
			if len(got) == 0 {
				return res, models.NewScrapeError(models.ErrCodeExtractionEmpty,
					"no hotel cards found in rendered page", nil)
			}
			hotels = got
			return res, nil
		})

	applyOutcome(&debug, out)
	if out.err != nil {
		o.log.Error("search failed",
			"request_id", debug.RequestID,
			"code", out.err.Code,
			"backends_tried", debug.BackendsTried,
			"duration", time.Since(start))
		return searchFailure(debug, out.err)
	}

	o.store.Put(target, hotels)
	o.log.Info("search completed",
		"request_id", debug.RequestID,
		"backend", debug.Backend,
		"failover", debug.Failover,
		"hotels", len(hotels),
		"duration", time.Since(start))

	return &models.SearchResponse{
		Success: true,
		Hotels:  hotels,
		Count:   len(hotels),
		Debug:   debug,
	}
}

// GetHotelDetail renders a single hotel page and extracts the full record.
func (o *Orchestrator) GetHotelDetail(ctx context.Context, req *models.DetailRequest) *models.DetailResponse {
	start := time.Now()
	debug := models.DebugInfo{RequestID: uuid.NewString()}

	if strings.TrimSpace(req.URL) == "" {
		serr := models.NewScrapeError(models.ErrCodeInvalidInput, "url is required", nil)
		debug.Error = serr.Error()
		return &models.DetailResponse{Success: false, Debug: debug, Error: serr.ToDetail()}
	}

	var detail *models.HotelDetail
	out := o.runPipeline(ctx, req.PreferredBackend, req.DisableFailover,
		func(actx context.Context, b backend.Backend) (*backend.RenderResult, *models.ScrapeError) {
			res, rerr := b.Render(actx, &backend.RenderRequest{URL: req.URL, Mode: models.ModeDetail})
			if rerr != nil {
				return nil, classifyRenderError(b.Kind(), rerr)
			}
			if reason := blockReason(res, o.cfg.Validation); reason != "" {
				return res, models.NewScrapeError(models.ErrCodeBlocked, reason, nil)
			}
			got := extractor.ExtractDetail(res.HTML, res.FinalURL)
			if got.Name == "" {
				return res, models.NewScrapeError(models.ErrCodeExtractionEmpty,
					"no hotel data found in rendered page", nil)
			}
			detail = got
			return res, nil
		})

	applyOutcome(&debug, out)
	if out.err != nil {
		o.log.Error("detail failed",
			"request_id", debug.RequestID,
			"code", out.err.Code,
			"backends_tried", debug.BackendsTried,
			"duration", time.Since(start))
		return &models.DetailResponse{
			Success: false,
			Debug:   debug,
			Error:   out.err.ToDetail(),
		}
	}

	o.log.Info("detail completed",
		"request_id", debug.RequestID,
		"backend", debug.Backend,
		"failover", debug.Failover,
		"hotel", detail.Name,
		"duration", time.Since(start))

	return &models.DetailResponse{
		Success: true,
		Detail:  detail,
		Debug:   debug,
	}
}

// applyOutcome copies pipeline diagnostics into the debug payload.
func applyOutcome(debug *models.DebugInfo, out outcome) {
	debug.BackendsTried = out.tried
	debug.Failover = out.failover
	debug.BlockDetected = out.blockDetected
	if out.result != nil {
		debug.FinalURL = out.result.FinalURL
		debug.ContentLength = out.result.ContentLength
	}
	if out.err == nil && out.result != nil {
		debug.Backend = out.result.Backend
	}
	if out.err != nil {
		debug.Error = out.err.Error()
	}
}

func searchFailure(debug models.DebugInfo, serr *models.ScrapeError) *models.SearchResponse {
	if debug.Error == "" {
		debug.Error = serr.Error()
	}
	return &models.SearchResponse{
		Success: false,
		Hotels:  []models.HotelSummary{},
		Debug:   debug,
		Error:   serr.ToDetail(),
	}
}
