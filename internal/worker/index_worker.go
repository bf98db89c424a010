package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"studyassist/internal/platform/logger"
	platformmq "studyassist/internal/platform/rabbitmq"
	"studyassist/internal/rag"
	"studyassist/internal/repository"
)

// IndexWorker consumes index-build jobs and constructs the vector index for
// each referenced document. Jobs for missing documents are dropped; failed
// builds are nacked without requeue so a broken embedder cannot spin the
// queue.
type IndexWorker struct {
	conn      *amqp.Connection
	docRepo   *repository.DocumentRepository
	store     *rag.Store
	queueName string
	log       *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIndexWorker(conn *amqp.Connection, docRepo *repository.DocumentRepository, store *rag.Store, queueName string, log *logger.Logger) *IndexWorker {
	if log == nil {
		log = logger.NewNop()
	}
	return &IndexWorker{
		conn:      conn,
		docRepo:   docRepo,
		store:     store,
		queueName: queueName,
		log:       log,
	}
}

func (w *IndexWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *IndexWorker) handle(ctx context.Context, d amqp.Delivery) {
	var job platformmq.IndexJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.log.Warn("worker decode index job failed", "error", err)
		_ = d.Nack(false, false)
		return
	}

	doc, err := w.docRepo.GetByID(job.DocumentID)
	if err != nil {
		w.log.Error("worker load document failed", "document_id", job.DocumentID, "error", err)
		_ = d.Nack(false, false)
		return
	}
	if doc == nil {
		// Document deleted between enqueue and consume.
		_ = d.Ack(false)
		return
	}

	if err := w.store.Ensure(ctx, doc.ID, doc.Content); err != nil {
		w.log.Warn("worker index build failed", "document_id", doc.ID, "error", err)
		_ = d.Nack(false, false)
		return
	}

	w.log.Info("index built", "document_id", doc.ID)
	_ = d.Ack(false)
}

func (w *IndexWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
