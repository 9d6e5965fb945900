package handlers

import (
	"upscoverflow/internal/response"
	"upscoverflow/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	listing   *services.ListingService
	mutations *services.MutationService
	log       *zap.Logger
}

func NewCommentHandler(listing *services.ListingService, mutations *services.MutationService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{listing: listing, mutations: mutations, log: log}
}

// GetAll GET /api/comments/getAll?questionId=|answerId=
func (h *CommentHandler) GetAll(c *gin.Context) {
	var in services.TargetInput
	if err := c.ShouldBindQuery(&in); err != nil {
		badRequest(c, "Invalid target", err.Error())
		return
	}
	items, err := h.listing.Comments(c.Request.Context(), viewer(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Comments fetched successfully", items)
}

// Create POST /api/comments/create
func (h *CommentHandler) Create(c *gin.Context) {
	var in services.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	comment, err := h.mutations.CreateComment(c.Request.Context(), viewer(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Created(c, "Comment created successfully", comment)
}

// DeleteByID DELETE /api/comments/deleteById?commentId=
func (h *CommentHandler) DeleteByID(c *gin.Context) {
	id, ok := queryID(c, "commentId")
	if !ok {
		return
	}
	if err := h.mutations.DeleteComment(c.Request.Context(), viewer(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Comment deleted successfully", gin.H{"id": id})
}
