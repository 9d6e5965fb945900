package handlers

import (
	"upscoverflow/internal/response"
	"upscoverflow/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SaveHandler struct {
	mutations *services.MutationService
	log       *zap.Logger
}

func NewSaveHandler(mutations *services.MutationService, log *zap.Logger) *SaveHandler {
	return &SaveHandler{mutations: mutations, log: log}
}

type toggleSaveRequest struct {
	QuestionID uint `json:"questionId"`
}

// ToggleSave PUT /api/saves/toggleSave
func (h *SaveHandler) ToggleSave(c *gin.Context) {
	var req toggleSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.QuestionID == 0 {
		badRequest(c, "Invalid request body", "questionId must be a positive integer")
		return
	}

	saved, err := h.mutations.ToggleSave(c.Request.Context(), viewer(c), req.QuestionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	msg := "Question unsaved successfully"
	if saved {
		msg = "Question saved successfully"
	}
	response.OK(c, msg, gin.H{"questionId": req.QuestionID, "isSaved": saved})
}
