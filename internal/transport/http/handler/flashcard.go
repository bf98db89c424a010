package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyassist/internal/app"
	"studyassist/internal/transport/http/response"
)

type FlashcardHandler struct {
	cardService *app.FlashcardService
}

type GenerateFlashcardsRequest struct {
	DocumentID uint `json:"document_id" binding:"required"`
	Count      int  `json:"count" binding:"min=0,max=50"`
}

func NewFlashcardHandler(cardService *app.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{cardService: cardService}
}

func (h *FlashcardHandler) Generate(c *gin.Context) {
	var req GenerateFlashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	cards, err := h.cardService.Generate(c.Request.Context(), req.DocumentID, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "flashcard generation failed")
		}
		return
	}
	response.OK(c, cards)
}

func (h *FlashcardHandler) ListByDocument(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	cards, err := h.cardService.ListByDocument(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list flashcards failed")
		return
	}
	response.OK(c, cards)
}

func (h *FlashcardHandler) ToggleKnown(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid flashcard id")
		return
	}
	card, err := h.cardService.ToggleKnown(id)
	if err != nil {
		if errors.Is(err, app.ErrFlashcardNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeFlashcardNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "toggle flashcard failed")
		}
		return
	}
	response.OK(c, card)
}
