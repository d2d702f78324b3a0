package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/danverse/danverse-api/internal/infra/mail"
)

// Job is one queued outbound email.
type Job struct {
	MessageID string     `json:"message_id"`
	Email     mail.Email `json:"email"`
}

// MailProducer implements mail.Sender by publishing jobs instead of
// delivering. The worker owns the real SMTP send.
type MailProducer struct {
	Ch *amqp.Channel
}

func NewMailProducer(ch *amqp.Channel) *MailProducer {
	return &MailProducer{Ch: ch}
}

func (p *MailProducer) Send(ctx context.Context, e mail.Email) (*mail.SendResult, error) {
	job := Job{
		MessageID: fmt.Sprintf("<%s@danverse.ai>", uuid.New()),
		Email:     e,
	}

	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal mail job: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("publish mail job: %w", err)
	}

	return &mail.SendResult{MessageID: job.MessageID}, nil
}
