package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "studyassist/internal/app"
	"studyassist/internal/bootstrap"
	"studyassist/internal/cache"
	"studyassist/internal/platform/rabbitmq"
	"studyassist/internal/repository"
	"studyassist/internal/transport/http/handler"
	"studyassist/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLog(app.Log), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	docRepo := repository.NewDocumentRepository(app.DB)
	summaryRepo := repository.NewSummaryRepository(app.DB)
	quizRepo := repository.NewQuizRepository(app.DB)
	cardRepo := repository.NewFlashcardRepository(app.DB)

	var publisher appsvc.IndexQueue
	if app.MQConn != nil {
		publisher = rabbitmq.NewIndexJobPublisher(app.MQConn, app.Config.RabbitMQ.IndexQueue)
	}
	var gradeCache appsvc.GradeCache
	if app.Redis != nil {
		gradeCache = cache.NewGradeCache(app.Redis,
			time.Duration(app.Config.Redis.GradeTTLSeconds)*time.Second)
	}

	contextSrc := appsvc.NewContextBuilder(app.Store,
		app.Config.RAG.TopK,
		app.Config.RAG.MaxContextChars,
		app.Config.Quiz.WindowWords,
		app.Config.Quiz.OverlapWords,
		app.Log,
	)

	docService := appsvc.NewDocumentService(docRepo, app.Store, publisher, app.Log)
	summaryService := appsvc.NewSummaryService(docRepo, summaryRepo, app.Store, app.Provider, app.Stub, app.Log)
	quizService := appsvc.NewQuizService(docRepo, quizRepo, contextSrc, app.Provider, app.Stub, gradeCache, app.Log)
	cardService := appsvc.NewFlashcardService(docRepo, cardRepo, contextSrc, app.Provider, app.Stub, app.Log)
	coachService := appsvc.NewCoachService(docRepo, contextSrc, app.Provider, app.Stub, app.Log)

	docHandler := handler.NewDocumentHandler(docService)
	summaryHandler := handler.NewSummaryHandler(summaryService)
	quizHandler := handler.NewQuizHandler(quizService)
	cardHandler := handler.NewFlashcardHandler(cardService)
	coachHandler := handler.NewCoachHandler(coachService)

	v1 := router.Group("/api/v1")

	docGroup := v1.Group("/documents")
	docGroup.POST("/upload", docHandler.Upload)
	docGroup.GET("", docHandler.List)
	docGroup.GET("/:id", docHandler.Get)
	docGroup.DELETE("/:id", docHandler.Delete)
	docGroup.GET("/:id/summaries", summaryHandler.ListByDocument)
	docGroup.GET("/:id/quizzes", quizHandler.ListByDocument)
	docGroup.GET("/:id/flashcards", cardHandler.ListByDocument)

	v1.POST("/summaries", summaryHandler.Summarize)

	quizGroup := v1.Group("/quizzes")
	quizGroup.POST("", quizHandler.Generate)
	quizGroup.GET("/:id", quizHandler.Get)
	quizGroup.POST("/:id/grade", quizHandler.Grade)
	quizGroup.POST("/grade-freeform", quizHandler.GradeFreeform)

	cardGroup := v1.Group("/flashcards")
	cardGroup.POST("", cardHandler.Generate)
	cardGroup.POST("/:id/toggle-known", cardHandler.ToggleKnown)

	v1.POST("/coach", coachHandler.Ask)

	return router
}
