package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyassist/internal/app"
	"studyassist/internal/transport/http/response"
)

type CoachHandler struct {
	coachService *app.CoachService
}

type AskCoachRequest struct {
	DocumentID uint   `json:"document_id" binding:"required"`
	Question   string `json:"question" binding:"required"`
}

func NewCoachHandler(coachService *app.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

func (h *CoachHandler) Ask(c *gin.Context) {
	var req AskCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	answer, err := h.coachService.Answer(c.Request.Context(), req.DocumentID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "coach failed")
		}
		return
	}
	response.OK(c, gin.H{"answer": answer})
}
