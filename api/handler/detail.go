package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

// Detail returns a handler for POST /api/v1/hotel.
func Detail(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DetailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.DetailResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		resp := svc.GetHotelDetail(c.Request.Context(), &req)
		c.JSON(statusFor(resp.Error), resp)
	}
}
