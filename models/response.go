package models

// DebugInfo carries operator-facing diagnostics about how a result was
// produced. Internal backend identifiers live here and never inside the
// hotel records themselves.
type DebugInfo struct {
	// RequestID correlates API responses with server logs.
	RequestID string `json:"request_id"`

	// Backend is the backend that ultimately produced the result.
	Backend BackendKind `json:"backend,omitempty"`

	// BackendsTried lists every backend attempted, in order.
	BackendsTried []BackendKind `json:"backends_tried,omitempty"`

	// Failover indicates whether the result came from the fail-over attempt.
	Failover bool `json:"failover"`

	// FinalURL is the URL after any redirects on the winning attempt.
	FinalURL string `json:"final_url,omitempty"`

	// ContentLength is the rendered HTML size of the winning attempt.
	ContentLength int `json:"content_length,omitempty"`

	// BlockDetected records whether any attempt tripped the bot-block
	// heuristics. Approximate by design; never authoritative.
	BlockDetected bool `json:"block_detected"`

	// CacheStatus is "hit" or "miss" when caching was requested.
	CacheStatus string `json:"cache_status,omitempty"`

	// Error describes the terminal failure when Success is false.
	Error string `json:"error,omitempty"`
}

// SearchResponse is the response for POST /api/v1/search.
type SearchResponse struct {
	Success bool           `json:"success"`
	Hotels  []HotelSummary `json:"hotels"`
	Count   int            `json:"count"`
	Debug   DebugInfo      `json:"debug_info"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// DetailResponse is the response for POST /api/v1/hotel.
type DetailResponse struct {
	Success bool         `json:"success"`
	Detail  *HotelDetail `json:"detail,omitempty"`
	Debug   DebugInfo    `json:"debug_info"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status   string        `json:"status"`
	Uptime   string        `json:"uptime"`
	Backends []BackendKind `json:"backends"`
	Version  string        `json:"version"`
}
