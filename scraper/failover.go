package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/umerzulfiqar021/Puppeteer/backend"
	"github.com/umerzulfiqar021/Puppeteer/models"
)

// pipelineState is one step of the render pipeline. The pipeline makes at
// most two attempts: the selected backend, then a single alternate.
type pipelineState int

const (
	stateSelectBackend pipelineState = iota
	stateRender
	stateEvaluate
	stateRetryAlternate
	stateDone
)

// attemptFn runs one complete attempt (render, block validation, extraction
// probe) against a single backend. The returned ScrapeError's code decides
// whether the pipeline may move to an alternate backend.
type attemptFn func(ctx context.Context, b backend.Backend) (*backend.RenderResult, *models.ScrapeError)

// outcome summarizes a pipeline run for the debug payload.
type outcome struct {
	result        *backend.RenderResult
	tried         []models.BackendKind
	failover      bool
	blockDetected bool
	err           *models.ScrapeError
}

// runPipeline drives the attempt state machine: select a backend, render,
// evaluate, and on a retriable failure switch to the next backend exactly
// once. Backend selection failures surface before any render happens.
func (o *Orchestrator) runPipeline(ctx context.Context, pref models.BackendKind, disableFailover bool, run attemptFn) outcome {
	var (
		out   outcome
		order []backend.Backend
		idx   int
	)
	allowRetry := !disableFailover && !o.cfg.Scraper.DisableFailover

	for state := stateSelectBackend; state != stateDone; {
		switch state {
		case stateSelectBackend:
			var selErr *models.ScrapeError
			order, selErr = o.orderFor(pref)
			if selErr != nil {
				out.err = selErr
				state = stateDone
				break
			}
			state = stateRender

		case stateRender:
			b := order[idx]
			out.tried = append(out.tried, b.Kind())

			actx, cancel := context.WithTimeout(ctx, o.cfg.Scraper.RenderTimeout)
			res, err := run(actx, b)
			cancel()

			out.result = res
			out.err = err
			state = stateEvaluate

		case stateEvaluate:
			if out.err == nil {
				state = stateDone
				break
			}
			if out.err.Code == models.ErrCodeBlocked {
				out.blockDetected = true
			}
			o.log.Warn("render attempt failed",
				"backend", order[idx].Kind(),
				"code", out.err.Code,
				"error", out.err.Message)

			if idx == 0 && allowRetry && out.err.Retriable() && len(order) > 1 && ctx.Err() == nil {
				state = stateRetryAlternate
				break
			}
			state = stateDone

		case stateRetryAlternate:
			idx = 1
			out.failover = true
			state = stateRender
		}
	}

	if out.err == nil && out.result != nil {
		out.result = sanitize(out.result)
	}
	return out
}

// orderFor returns the backends in attempt order. A preference moves the
// matching backend to the front; a preference for an unconfigured backend is
// an error rather than a silent substitution.
func (o *Orchestrator) orderFor(pref models.BackendKind) ([]backend.Backend, *models.ScrapeError) {
	if len(o.backends) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeBackendUnavailable,
			"no rendering backend is configured", nil)
	}
	if pref == "" {
		return o.backends, nil
	}
	for i, b := range o.backends {
		if b.Kind() != pref {
			continue
		}
		order := make([]backend.Backend, 0, len(o.backends))
		order = append(order, b)
		order = append(order, o.backends[:i]...)
		order = append(order, o.backends[i+1:]...)
		return order, nil
	}
	return nil, models.NewScrapeError(models.ErrCodeBackendUnavailable,
		fmt.Sprintf("preferred backend %q is not configured", pref), nil)
}

// classifyRenderError maps a backend failure onto the error taxonomy.
// Transient render errors permit fail-over; anything else does not.
func classifyRenderError(kind models.BackendKind, err error) *models.ScrapeError {
	var rerr *backend.RenderError
	if errors.As(err, &rerr) {
		if rerr.Transient {
			return models.NewScrapeError(models.ErrCodeRenderTransient, rerr.Message, rerr)
		}
		return models.NewScrapeError(models.ErrCodeBackendUnavailable, rerr.Message, rerr)
	}
	return models.NewScrapeError(models.ErrCodeRenderTransient,
		fmt.Sprintf("%s backend failed", kind), err)
}

// sanitize drops the raw HTML from a winning result once extraction is done
// with it. Debug payloads carry sizes and URLs, never page bodies.
func sanitize(res *backend.RenderResult) *backend.RenderResult {
	clean := *res
	clean.HTML = ""
	return &clean
}
