package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

// Search returns a handler for POST /api/v1/search.
//
// The orchestrator owns defaults, validation, caching and fail-over; the
// handler only parses the payload and maps the outcome to an HTTP status.
func Search(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SearchResponse{
				Success: false,
				Hotels:  []models.HotelSummary{},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		resp := svc.SearchHotels(c.Request.Context(), &req)
		c.JSON(statusFor(resp.Error), resp)
	}
}
