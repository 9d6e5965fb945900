package handlers

import (
	"upscoverflow/internal/response"
	"upscoverflow/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnswerHandler struct {
	listing      *services.ListingService
	mutations    *services.MutationService
	defaultLimit int
	log          *zap.Logger
}

func NewAnswerHandler(listing *services.ListingService, mutations *services.MutationService, defaultLimit int, log *zap.Logger) *AnswerHandler {
	return &AnswerHandler{listing: listing, mutations: mutations, defaultLimit: defaultLimit, log: log}
}

// GetAll GET /api/answers/getAll?questionId=
func (h *AnswerHandler) GetAll(c *gin.Context) {
	questionID, ok := queryID(c, "questionId")
	if !ok {
		return
	}
	page, err := h.listing.Answers(c.Request.Context(), viewer(c), services.AnswerQuery{
		PageQuery:  pageQuery(c, h.defaultLimit),
		QuestionID: questionID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Answers fetched successfully", page)
}

// Create POST /api/answers/create
func (h *AnswerHandler) Create(c *gin.Context) {
	var in services.AnswerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	a, err := h.mutations.CreateAnswer(c.Request.Context(), viewer(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Created(c, "Answer created successfully", a)
}

// DeleteByID DELETE /api/answers/deleteById?answerId=
func (h *AnswerHandler) DeleteByID(c *gin.Context) {
	id, ok := queryID(c, "answerId")
	if !ok {
		return
	}
	if err := h.mutations.DeleteAnswer(c.Request.Context(), viewer(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Answer deleted successfully", gin.H{"id": id})
}
