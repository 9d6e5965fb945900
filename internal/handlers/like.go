package handlers

import (
	"net/http"
	"upscoverflow/internal/response"
	"upscoverflow/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LikeHandler struct {
	listing   *services.ListingService
	mutations *services.MutationService
	log       *zap.Logger
}

func NewLikeHandler(listing *services.ListingService, mutations *services.MutationService, log *zap.Logger) *LikeHandler {
	return &LikeHandler{listing: listing, mutations: mutations, log: log}
}

type toggleLikeRequest struct {
	services.TargetInput
	IsLiked *bool `json:"isLiked"`
}

// Get GET /api/likes/get?questionId=|answerId=|commentId=
func (h *LikeHandler) Get(c *gin.Context) {
	var in services.TargetInput
	if err := c.ShouldBindQuery(&in); err != nil {
		badRequest(c, "Invalid target", err.Error())
		return
	}
	e, err := h.listing.LikeSummary(c.Request.Context(), viewer(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Likes fetched successfully", e)
}

// ToggleLike PUT /api/likes/toggleLike
func (h *LikeHandler) ToggleLike(c *gin.Context) {
	var req toggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	if req.IsLiked == nil {
		badRequest(c, "Invalid request body", "isLiked is required")
		return
	}

	e, err := h.mutations.ToggleLike(c.Request.Context(), viewer(c), req.TargetInput, *req.IsLiked)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Like updated successfully", e)
}

// DeleteLike DELETE /api/likes/deleteLike. The target may be sent as query
// parameters or as a JSON body; the query wins when both are present.
func (h *LikeHandler) DeleteLike(c *gin.Context) {
	var in services.TargetInput
	if err := c.ShouldBindQuery(&in); err != nil {
		badRequest(c, "Invalid target", err.Error())
		return
	}
	if in.IsEmpty() && hasBody(c.Request) {
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Invalid target", err.Error())
			return
		}
	}

	e, err := h.mutations.DeleteLike(c.Request.Context(), viewer(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Like deleted successfully", e)
}

// hasBody reports whether r may carry a body. Chunked requests have ContentLength -1.
func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}
