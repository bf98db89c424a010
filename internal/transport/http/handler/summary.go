package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyassist/internal/app"
	"studyassist/internal/transport/http/response"
)

type SummaryHandler struct {
	summaryService *app.SummaryService
}

type SummarizeRequest struct {
	DocumentID uint   `json:"document_id" binding:"required"`
	Query      string `json:"query" binding:"max=500"`
	MaxChunks  int    `json:"max_chunks" binding:"min=0,max=50"`
	TopK       int    `json:"top_k" binding:"min=0,max=50"`
}

func NewSummaryHandler(summaryService *app.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

func (h *SummaryHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	summary, err := h.summaryService.Summarize(c.Request.Context(), app.SummarizeInput{
		DocumentID: req.DocumentID,
		Query:      req.Query,
		MaxChunks:  req.MaxChunks,
		TopK:       req.TopK,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "summarize failed")
		}
		return
	}
	response.OK(c, summary)
}

func (h *SummaryHandler) ListByDocument(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	summaries, err := h.summaryService.ListByDocument(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list summaries failed")
		return
	}
	response.OK(c, summaries)
}
