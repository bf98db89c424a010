package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyassist/internal/app"
	"studyassist/internal/quiz"
	"studyassist/internal/transport/http/response"
)

type QuizHandler struct {
	quizService *app.QuizService
}

type GenerateQuizRequest struct {
	DocumentID   uint     `json:"document_id" binding:"required"`
	Title        string   `json:"title" binding:"max=255"`
	MCQ          int      `json:"mcq" binding:"min=0,max=50"`
	TF           int      `json:"tf" binding:"min=0,max=50"`
	Short        int      `json:"short" binding:"min=0,max=50"`
	Fill         int      `json:"fill" binding:"min=0,max=50"`
	Difficulties []string `json:"difficulties"`
}

type GradeQuizRequest struct {
	Answers map[uint]string `json:"answers" binding:"required"`
}

type GradeFreeformRequest struct {
	Question    string `json:"question" binding:"required"`
	GroundTruth string `json:"ground_truth" binding:"required"`
	UserAnswer  string `json:"user_answer" binding:"required"`
}

func NewQuizHandler(quizService *app.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func (h *QuizHandler) Generate(c *gin.Context) {
	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	q, err := h.quizService.Generate(c.Request.Context(), app.GenerateQuizInput{
		DocumentID: req.DocumentID,
		Title:      req.Title,
		Counts: quiz.Counts{
			MCQ:          req.MCQ,
			TF:           req.TF,
			Short:        req.Short,
			Fill:         req.Fill,
			Difficulties: req.Difficulties,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "quiz generation failed")
		}
		return
	}
	response.OK(c, q)
}

func (h *QuizHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid quiz id")
		return
	}
	q, err := h.quizService.Get(id)
	if err != nil {
		if errors.Is(err, app.ErrQuizNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeQuizNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get quiz failed")
		}
		return
	}
	response.OK(c, q)
}

func (h *QuizHandler) ListByDocument(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	quizzes, err := h.quizService.ListByDocument(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list quizzes failed")
		return
	}
	response.OK(c, quizzes)
}

// Grade scores submitted answers against the stored quiz.
func (h *QuizHandler) Grade(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid quiz id")
		return
	}
	var req GradeQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	report, err := h.quizService.GradeQuiz(c.Request.Context(), id, req.Answers)
	if err != nil {
		if errors.Is(err, app.ErrQuizNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeQuizNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "grading failed")
		}
		return
	}
	response.OK(c, report)
}

// GradeFreeform grades one standalone answer without a stored quiz.
func (h *QuizHandler) GradeFreeform(c *gin.Context) {
	var req GradeFreeformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	verdict := h.quizService.GradeFreeform(c.Request.Context(), req.Question, req.GroundTruth, req.UserAnswer)
	response.OK(c, verdict)
}
