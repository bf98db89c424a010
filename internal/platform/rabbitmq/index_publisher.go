package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// IndexJob asks the index worker to build the vector index for a document.
type IndexJob struct {
	DocumentID uint `json:"document_id"`
}

type IndexJobPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewIndexJobPublisher(conn *amqp.Connection, queueName string) *IndexJobPublisher {
	return &IndexJobPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *IndexJobPublisher) Publish(ctx context.Context, documentID uint) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(IndexJob{DocumentID: documentID})
	if err != nil {
		return fmt.Errorf("marshal index job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish index job failed: %w", err)
	}
	return nil
}
