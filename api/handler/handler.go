// Package handler contains the HTTP handlers for the hotelscout API.
package handler

import (
	"context"
	"net/http"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

// Service is the orchestration surface the handlers depend on.
type Service interface {
	SearchHotels(ctx context.Context, req *models.SearchRequest) *models.SearchResponse
	GetHotelDetail(ctx context.Context, req *models.DetailRequest) *models.DetailResponse
	Kinds() []models.BackendKind
}

// statusFor translates a response error code to an HTTP status code.
// A nil error means 200.
func statusFor(e *models.ErrorDetail) int {
	if e == nil {
		return http.StatusOK
	}
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeBackendUnavailable:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeRenderTransient, models.ErrCodeBlocked, models.ErrCodeExtractionEmpty:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
