package models

import (
	"strings"
	"time"
)

// BackendKind identifies one of the interchangeable rendering backends.
type BackendKind string

const (
	BackendCloud      BackendKind = "cloud"
	BackendLocal      BackendKind = "local"
	BackendServerless BackendKind = "serverless"
	BackendRenderAPI  BackendKind = "renderapi"
)

// RenderMode tells a backend what kind of page it is rendering, which
// drives the wait/interaction strategy (search results vs. hotel detail).
type RenderMode string

const (
	ModeSearch RenderMode = "search"
	ModeDetail RenderMode = "detail"
)

const dateLayout = "2006-01-02"

// SearchRequest is the payload for POST /api/v1/search.
// Dates use the YYYY-MM-DD layout. The zero values of the optional fields
// mean "apply the default" (see Defaults).
type SearchRequest struct {
	// Location is the destination to search for. Required.
	Location string `json:"location" binding:"required"`

	// Checkin / Checkout dates. Checkin defaults to tomorrow; Checkout
	// defaults to Checkin + 2 days (never computed from "today" when a
	// checkin was supplied).
	Checkin  string `json:"checkin,omitempty"`
	Checkout string `json:"checkout,omitempty"`

	// Adults defaults to 2, Rooms to 1, Children to 0.
	Adults   int `json:"adults,omitempty" binding:"omitempty,min=1"`
	Children int `json:"children,omitempty" binding:"omitempty,min=0"`
	Rooms    int `json:"rooms,omitempty" binding:"omitempty,min=1"`

	// Currency is pinned explicitly so prices render in a predictable unit.
	// Default: "USD".
	Currency string `json:"currency,omitempty"`

	// PreferredBackend forces a specific rendering backend for this request.
	PreferredBackend BackendKind `json:"preferred_backend,omitempty" binding:"omitempty,oneof=cloud local serverless renderapi"`

	// DisableFailover suppresses the single fail-over retry on an
	// alternate backend.
	DisableFailover bool `json:"disable_failover,omitempty"`

	// MaxAge enables the response cache: a cached result younger than
	// MaxAge milliseconds is returned without rendering. 0 disables caching.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields. The checkout date is
// always derived from the (possibly supplied) checkin date, never from today.
func (r *SearchRequest) Defaults() {
	r.Location = strings.TrimSpace(r.Location)
	if r.Checkin == "" {
		r.Checkin = time.Now().AddDate(0, 0, 1).Format(dateLayout)
	}
	if r.Checkout == "" {
		if in, err := time.Parse(dateLayout, r.Checkin); err == nil {
			r.Checkout = in.AddDate(0, 0, 2).Format(dateLayout)
		}
	}
	if r.Adults == 0 {
		r.Adults = 2
	}
	if r.Rooms == 0 {
		r.Rooms = 1
	}
	if r.Currency == "" {
		r.Currency = "USD"
	}
}

// Validate rejects requests that must not reach a rendering backend.
func (r *SearchRequest) Validate() *ScrapeError {
	if strings.TrimSpace(r.Location) == "" {
		return NewScrapeError(ErrCodeInvalidInput, "location is required", nil)
	}
	for _, d := range []string{r.Checkin, r.Checkout} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return NewScrapeError(ErrCodeInvalidInput, "dates must use the YYYY-MM-DD layout", err)
		}
	}
	return nil
}

// DetailRequest is the payload for POST /api/v1/hotel.
type DetailRequest struct {
	// URL is the hotel page to extract. Required.
	URL string `json:"url" binding:"required,url"`

	PreferredBackend BackendKind `json:"preferred_backend,omitempty" binding:"omitempty,oneof=cloud local serverless renderapi"`
	DisableFailover  bool        `json:"disable_failover,omitempty"`
}
