package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/travelease/internal/services"
)

func Quote(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		res, err := cs.Quote(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}

		body := gin.H{"success": true, "summary": res.Summary}
		if res.Warning != "" {
			body["warning"] = res.Warning
		}
		c.JSON(http.StatusOK, body)
	}
}

func ProcessingOptions(cs *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "tiers": cs.ProcessingOptions()})
	}
}
