package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/infra/mail"
)

// Worker drains the outbound mail queue and hands each job to the real SMTP
// sender. Malformed messages are rejected to the DLQ rather than requeued.
type Worker struct {
	Channel *amqp.Channel
	Sender  mail.Sender
	Log     *zap.Logger
}

func NewWorker(ch *amqp.Channel, sender mail.Sender, log *zap.Logger) *Worker {
	return &Worker{Channel: ch, Sender: sender, Log: log}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		w.Log.Fatal("register mail consumer", zap.Error(err))
	}

	w.Log.Info("mail worker waiting on queue", zap.String("queue", queueName))

	for d := range msgs {
		var job Job
		if err := json.Unmarshal(d.Body, &job); err != nil {
			w.Log.Error("mail job has invalid JSON, sending to DLQ", zap.Error(err))
			d.Nack(false, false)
			continue
		}

		if _, err := w.Sender.Send(context.Background(), job.Email); err != nil {
			w.Log.Error("mail delivery failed, sending to DLQ",
				zap.String("to", job.Email.To),
				zap.String("subject", job.Email.Subject),
				zap.Error(err),
			)
			d.Nack(false, false)
			continue
		}

		w.Log.Info("mail delivered",
			zap.String("to", job.Email.To),
			zap.String("message_id", job.MessageID),
		)
		d.Ack(false)
	}
}
