package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"studyassist/internal/ai"
	"studyassist/internal/config"
	"studyassist/internal/model"
	"studyassist/internal/platform/logger"
	rabbitmqClient "studyassist/internal/platform/rabbitmq"
	redisClient "studyassist/internal/platform/redis"
	sqliteClient "studyassist/internal/platform/sqlite"
	"studyassist/internal/rag"
	"studyassist/internal/repository"
	"studyassist/internal/worker"
)

// App holds every shared resource for one run. The workspace directory is
// unique per run and removed on Close unless persistence is configured, so
// the sqlite database and vector indexes never outlive the process by
// accident.
type App struct {
	Config *config.Config
	Log    *logger.Logger

	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Embedder rag.Embedder
	Store    *rag.Store
	Provider ai.Provider
	Stub     *ai.LocalStub

	IndexWorker *worker.IndexWorker

	WorkspaceDir string
	StartedAt    time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	workspace := filepath.Join(cfg.Runtime.Dir, uuid.NewString())
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace failed: %w", err)
	}
	log.Info("workspace created", "dir", workspace, "persist", cfg.Runtime.Persist)

	db, err := sqliteClient.New(filepath.Join(workspace, "studyassist.db"))
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.Document{},
		&model.Summary{},
		&model.Quiz{},
		&model.Question{},
		&model.Flashcard{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	app := &App{
		Config:       cfg,
		Log:          log,
		DB:           db,
		Stub:         ai.NewLocalStub(),
		WorkspaceDir: workspace,
		StartedAt:    time.Now(),
	}

	app.Embedder = buildEmbedder(cfg, log)
	if app.Embedder != nil {
		app.Store = rag.NewStore(filepath.Join(workspace, "index"), app.Embedder,
			cfg.RAG.ChunkChars, cfg.RAG.OverlapChars)
	} else {
		log.Warn("no embedding backend configured, retrieval disabled")
	}

	app.Provider = buildProvider(cfg, log)
	log.Info("generation backend selected", "backend", app.Provider.Name())

	// Redis and RabbitMQ are optional. The grade cache and async indexing
	// simply switch off when the dependency is down.
	if redisCli, err := redisClient.New(ctx, redisClient.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		log.Warn("redis unavailable, grade cache disabled", "error", err)
	} else {
		app.Redis = redisCli
	}

	if mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL); err != nil {
		log.Warn("rabbitmq unavailable, indexing runs inline", "error", err)
	} else {
		app.MQConn = mqConn
	}

	if app.MQConn != nil && app.Store != nil {
		docRepo := repository.NewDocumentRepository(db)
		app.IndexWorker = worker.NewIndexWorker(app.MQConn, docRepo, app.Store, cfg.RabbitMQ.IndexQueue, log)
		if err := app.IndexWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start index worker failed: %w", err)
		}
	}

	return app, nil
}

func buildEmbedder(cfg *config.Config, log *logger.Logger) rag.Embedder {
	switch cfg.Embedding.Provider {
	case "onnx":
		return ai.NewONNXEmbedder(
			cfg.Embedding.ONNXModelPath,
			cfg.Embedding.ONNXVocabPath,
			cfg.Embedding.ONNXLibPath,
			cfg.Embedding.Dimension,
		)
	case "api":
		if cfg.Embedding.APIKey == "" {
			return nil
		}
		client := ai.NewOpenAICompatibleClient(time.Duration(cfg.LLM.TimeoutSec) * time.Second)
		return ai.NewAPIEmbedder(client, ai.EmbeddingAPIConfig{
			BaseURL: cfg.Embedding.BaseURL,
			APIKey:  cfg.Embedding.APIKey,
			Model:   cfg.Embedding.Model,
		}, cfg.Embedding.Dimension)
	default:
		log.Warn("unknown embedding provider", "provider", cfg.Embedding.Provider)
		return nil
	}
}

func buildProvider(cfg *config.Config, log *logger.Logger) ai.Provider {
	timeout := time.Duration(cfg.LLM.TimeoutSec) * time.Second

	selected := cfg.LLM.Provider
	if selected == "" || selected == "auto" {
		if cfg.LLM.APIKey != "" {
			selected = "hosted"
		} else {
			selected = "stub"
		}
	}

	switch selected {
	case "hosted":
		client := ai.NewOpenAICompatibleClient(timeout)
		primary := ai.ChatConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model}
		fallback := primary
		if cfg.LLM.FallbackModel != "" {
			fallback.Model = cfg.LLM.FallbackModel
		}
		return ai.NewHostedProvider(client, "hosted", primary, fallback, cfg.LLM.Retries, log)
	case "ollama":
		return ai.NewOllamaProvider(cfg.LLM.OllamaURL, cfg.LLM.OllamaModel, timeout)
	default:
		return ai.NewLocalStub()
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.IndexWorker != nil {
		a.IndexWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if closer, ok := a.Embedder.(interface{ Close() }); ok {
		closer.Close()
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if !a.Config.Runtime.Persist && a.WorkspaceDir != "" {
		if err := os.RemoveAll(a.WorkspaceDir); err != nil {
			closeErr = err
		} else {
			a.Log.Info("workspace removed", "dir", a.WorkspaceDir)
		}
	}
	a.Log.Sync()
	return closeErr
}
