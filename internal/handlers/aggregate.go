package handlers

import (
	"upscoverflow/internal/response"
	"upscoverflow/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AggregateHandler serves the subject, tag and user listings.
type AggregateHandler struct {
	listing      *services.ListingService
	defaultLimit int
	log          *zap.Logger
}

func NewAggregateHandler(listing *services.ListingService, defaultLimit int, log *zap.Logger) *AggregateHandler {
	return &AggregateHandler{listing: listing, defaultLimit: defaultLimit, log: log}
}

// Subjects GET /api/subjects/getAll
func (h *AggregateHandler) Subjects(c *gin.Context) {
	page, err := h.listing.Subjects(c.Request.Context(), pageQuery(c, h.defaultLimit))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Subjects fetched successfully", page)
}

// Tags GET /api/tags/getAll
func (h *AggregateHandler) Tags(c *gin.Context) {
	page, err := h.listing.Tags(c.Request.Context(), pageQuery(c, h.defaultLimit))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Tags fetched successfully", page)
}

// Users GET /api/users/getAll
func (h *AggregateHandler) Users(c *gin.Context) {
	page, err := h.listing.Users(c.Request.Context(), pageQuery(c, h.defaultLimit))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Users fetched successfully", page)
}
