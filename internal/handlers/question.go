package handlers

import (
	"upscoverflow/internal/response"
	"upscoverflow/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuestionHandler struct {
	listing      *services.ListingService
	mutations    *services.MutationService
	defaultLimit int
	log          *zap.Logger
}

func NewQuestionHandler(listing *services.ListingService, mutations *services.MutationService, defaultLimit int, log *zap.Logger) *QuestionHandler {
	return &QuestionHandler{listing: listing, mutations: mutations, defaultLimit: defaultLimit, log: log}
}

func (h *QuestionHandler) questionQuery(c *gin.Context) services.QuestionQuery {
	return services.QuestionQuery{
		PageQuery: pageQuery(c, h.defaultLimit),
		Subject:   c.Query("subject"),
		Tag:       c.Query("tag"),
		Search:    c.Query("question"),
	}
}

// GetAll GET /api/questions/get-all
func (h *QuestionHandler) GetAll(c *gin.Context) {
	page, err := h.listing.Questions(c.Request.Context(), viewer(c), h.questionQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Questions fetched successfully", page)
}

// GetAllSaved GET /api/questions/getAllSaved
func (h *QuestionHandler) GetAllSaved(c *gin.Context) {
	page, err := h.listing.SavedQuestions(c.Request.Context(), viewer(c), h.questionQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Saved questions fetched successfully", page)
}

// GetByID GET /api/questions/getById?questionId=
func (h *QuestionHandler) GetByID(c *gin.Context) {
	id, ok := queryID(c, "questionId")
	if !ok {
		return
	}
	q, err := h.listing.Question(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Question fetched successfully", q)
}

// Create POST /api/questions/create
func (h *QuestionHandler) Create(c *gin.Context) {
	var in services.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	q, err := h.mutations.CreateQuestion(c.Request.Context(), viewer(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Created(c, "Question created successfully", gin.H{"id": q.ID, "question": q, "tags": q.TagNames()})
}

// Update PATCH /api/questions/update?questionId=
func (h *QuestionHandler) Update(c *gin.Context) {
	id, ok := queryID(c, "questionId")
	if !ok {
		return
	}
	var in services.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	q, err := h.mutations.UpdateQuestion(c.Request.Context(), viewer(c), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Question updated successfully", gin.H{"id": q.ID, "question": q, "tags": q.TagNames()})
}

// DeleteByID DELETE /api/questions/deleteById?questionId=
func (h *QuestionHandler) DeleteByID(c *gin.Context) {
	id, ok := queryID(c, "questionId")
	if !ok {
		return
	}
	if err := h.mutations.DeleteQuestion(c.Request.Context(), viewer(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	response.OK(c, "Question deleted successfully", gin.H{"id": id})
}
