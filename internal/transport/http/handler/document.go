package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyassist/internal/app"
	"studyassist/internal/transport/http/response"
)

const maxUploadSize = 10 << 20 // 10 MB

type DocumentHandler struct {
	docService *app.DocumentService
}

func NewDocumentHandler(docService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// Upload accepts a multipart form with "file" holding a PDF or plain-text
// document.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	doc, err := h.docService.Ingest(c.Request.Context(), file.Filename, f, file.Size)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrDocumentEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed: "+err.Error())
		}
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	doc, err := h.docService.Get(id)
	if err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		}
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	if err := h.docService.Delete(id); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": id})
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}
