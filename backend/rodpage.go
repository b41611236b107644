package backend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"

	"github.com/umerzulfiqar021/Puppeteer/antidetect"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// renderRodPage runs the shared pipeline for rod-driven backends on an
// already-created page.
//
// Lifecycle (order matters):
//
//  1. Stealth injection      – before navigation, or it has no effect
//  2. Identity + hijack      – headers/cookies/resource blocking, also pre-nav
//  3. Humanized pause        – break uniform timing before navigation
//  4. Navigate               – bounded by the navigation timeout; exceeding
//     it aborts this attempt (fail-over territory)
//  5. DOM stabilization      – bounded wait, non-fatal
//  6. Consent dismissal      – first matching selector, absence tolerated
//  7. Lazy-content trigger   – scroll increments; hydration wait in search mode
//  8. Extraction             – HTML, title, final URL
//
// The caller owns page/browser cleanup; this function never retains the page.
func renderRodPage(ctx context.Context, kind models.BackendKind, page *rod.Page, req *RenderRequest, ad *antidetect.Controller, navTimeout time.Duration) (*RenderResult, error) {
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without it", "backend", kind, "error", err)
	}

	router := ad.PreparePage(page, req.URL)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	ad.Pause(ctx)

	p := page.Context(ctx)

	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	navErr := page.Context(navCtx).Navigate(req.URL)
	navCancel()
	if navErr != nil {
		if errors.Is(navErr, context.DeadlineExceeded) {
			return nil, transientErr(kind, "navigation timed out", navErr)
		}
		return nil, transientErr(kind, "navigation failed", navErr)
	}

	if stableErr := p.Timeout(10 * time.Second).WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"backend", kind, "error", stableErr)
	}

	ad.DismissConsent(p)
	ad.Pause(ctx)

	ad.TriggerLazyContent(ctx, p)
	if req.Mode == models.ModeSearch {
		ad.WaitHydrated(p)
	}

	html, err := p.HTML()
	if err != nil {
		return nil, transientErr(kind, "failed to extract page HTML", err)
	}

	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &RenderResult{
		HTML:          html,
		FinalURL:      finalURL,
		Title:         title,
		ContentLength: len(html),
		Backend:       kind,
		Diagnostics: map[string]any{
			"mode": string(req.Mode),
		},
	}, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
