package app

import (
	"context"
	"fmt"
	"strings"

	"studyassist/internal/ai"
	"studyassist/internal/model"
	"studyassist/internal/platform/logger"
	"studyassist/internal/quiz"
	"studyassist/internal/repository"
)

// GradeCache memoizes freeform grading verdicts.
type GradeCache interface {
	Get(ctx context.Context, question, groundTruth, userAnswer string) (ai.GradeResult, bool, error)
	Set(ctx context.Context, question, groundTruth, userAnswer string, result ai.GradeResult) error
}

type QuizService struct {
	docRepo    *repository.DocumentRepository
	quizRepo   *repository.QuizRepository
	contextSrc *ContextBuilder
	provider   ai.Provider
	fallback   ai.Provider
	gradeCache GradeCache
	log        *logger.Logger
}

func NewQuizService(
	docRepo *repository.DocumentRepository,
	quizRepo *repository.QuizRepository,
	contextSrc *ContextBuilder,
	provider ai.Provider,
	fallback ai.Provider,
	gradeCache GradeCache,
	log *logger.Logger,
) *QuizService {
	if fallback == nil {
		fallback = ai.NewLocalStub()
	}
	if provider == nil {
		provider = fallback
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &QuizService{
		docRepo:    docRepo,
		quizRepo:   quizRepo,
		contextSrc: contextSrc,
		provider:   provider,
		fallback:   fallback,
		gradeCache: gradeCache,
		log:        log,
	}
}

type GenerateQuizInput struct {
	DocumentID uint
	Title      string
	Counts     quiz.Counts
}

// Generate builds grounding context, asks the backend for raw items, then
// normalizes and enforces the requested counts before persisting. The
// returned quiz always has exactly the requested number of questions.
func (s *QuizService) Generate(ctx context.Context, input GenerateQuizInput) (*model.Quiz, error) {
	if input.DocumentID == 0 || input.Counts.Total() == 0 {
		return nil, ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	contextText := s.contextSrc.Build(ctx, doc.ID, doc.Content, "")

	backend := s.provider.Name()
	raw, err := s.provider.GenerateQuiz(ctx, contextText, input.Counts)
	if err != nil {
		s.log.Warn("quiz backend failed, using fallback", "document_id", doc.ID, "error", err)
		backend = s.fallback.Name()
		if raw, err = s.fallback.GenerateQuiz(ctx, contextText, input.Counts); err != nil {
			return nil, err
		}
	}

	items := quiz.Enforce(quiz.Normalize(raw), input.Counts, contextText)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = fmt.Sprintf("Quiz on %s", doc.Filename)
	}

	q := &model.Quiz{
		DocumentID:     doc.ID,
		Title:          title,
		TotalQuestions: len(items),
		Backend:        backend,
	}
	questions := make([]model.Question, len(items))
	for i, item := range items {
		questions[i] = model.Question{
			Kind:          item.Kind,
			Difficulty:    item.Difficulty,
			Prompt:        item.Prompt,
			Options:       item.EncodedOptions(),
			CorrectAnswer: item.Correct,
			Explanation:   item.Explanation,
		}
	}
	if err := s.quizRepo.CreateWithQuestions(q, questions); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) Get(id uint) (*model.Quiz, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	q, err := s.quizRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuizNotFound
	}
	return q, nil
}

func (s *QuizService) ListByDocument(documentID uint) ([]model.Quiz, error) {
	if documentID == 0 {
		return nil, ErrInvalidInput
	}
	return s.quizRepo.ListByDocumentID(documentID)
}

// QuestionResult is the graded outcome of one answered question.
type QuestionResult struct {
	QuestionID uint   `json:"question_id"`
	Kind       string `json:"kind"`
	Correct    bool   `json:"correct"`
	Expected   string `json:"expected"`
	Given      string `json:"given"`
	Reason     string `json:"reason,omitempty"`
}

// GradeReport aggregates one grading pass over a quiz.
type GradeReport struct {
	QuizID  uint             `json:"quiz_id"`
	Total   int              `json:"total"`
	Correct int              `json:"correct"`
	Percent float64          `json:"percent"`
	Results []QuestionResult `json:"results"`
}

// GradeQuiz grades the supplied answers keyed by question ID. Letter-keyed
// kinds compare exactly; freeform kinds go through the grading backend.
// Unanswered questions count as wrong.
func (s *QuizService) GradeQuiz(ctx context.Context, quizID uint, answers map[uint]string) (*GradeReport, error) {
	q, err := s.Get(quizID)
	if err != nil {
		return nil, err
	}

	report := &GradeReport{
		QuizID:  q.ID,
		Total:   len(q.Questions),
		Results: make([]QuestionResult, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		given := strings.TrimSpace(answers[question.ID])
		result := QuestionResult{
			QuestionID: question.ID,
			Kind:       question.Kind,
			Expected:   question.CorrectAnswer,
			Given:      given,
		}

		switch question.Kind {
		case quiz.KindMCQ, quiz.KindTF:
			result.Correct = given != "" && strings.EqualFold(given, question.CorrectAnswer)
		default:
			if given != "" {
				verdict := s.GradeFreeform(ctx, question.Prompt, question.CorrectAnswer, given)
				result.Correct = verdict.Correct
				result.Reason = verdict.Reason
			}
		}

		if result.Correct {
			report.Correct++
		}
		report.Results = append(report.Results, result)
	}
	if report.Total > 0 {
		report.Percent = float64(report.Correct) / float64(report.Total) * 100
	}
	return report, nil
}

// GradeFreeform grades one freeform answer, consulting the cache first and
// degrading to the deterministic fallback grader on backend failure.
func (s *QuizService) GradeFreeform(ctx context.Context, question, groundTruth, userAnswer string) ai.GradeResult {
	if s.gradeCache != nil {
		if cached, hit, err := s.gradeCache.Get(ctx, question, groundTruth, userAnswer); err == nil && hit {
			return cached
		}
	}

	verdict, err := s.provider.GradeFreeform(ctx, question, groundTruth, userAnswer)
	if err != nil {
		s.log.Warn("grading backend failed, using fallback", "error", err)
		verdict, _ = s.fallback.GradeFreeform(ctx, question, groundTruth, userAnswer)
	}

	if s.gradeCache != nil {
		if err := s.gradeCache.Set(ctx, question, groundTruth, userAnswer, verdict); err != nil {
			s.log.Warn("grade cache write failed", "error", err)
		}
	}
	return verdict
}
