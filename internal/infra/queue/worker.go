package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

// Alerter is told about failed operations.
type Alerter interface {
	SendAlert(n entity.Notification) error
}

type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker drains the notification queue and forwards failures to the
// operator alerter. Successes are acknowledged and dropped.
type Worker struct {
	Channel Consumer
	Alerter Alerter
}

func NewWorker(ch Consumer, alerter Alerter) *Worker {
	return &Worker{
		Channel: ch,
		Alerter: alerter,
	}
}

func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	log.Printf(" [*] Worker waiting on queue '%s'", queueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ [WORKER] stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				log.Println("⚠️ [WORKER] delivery channel closed")
				return nil
			}
			w.handle(d)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *Worker) handle(d amqp.Delivery) {
	w.process(d.Body, &d)
}

func (w *Worker) process(body []byte, ack acknowledger) {
	var n entity.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Printf("❌ [WORKER] invalid JSON: %s", err)
		// Malformed: reject without requeue so the queue doesn't stall.
		_ = ack.Nack(false, false)
		return
	}

	if n.Success {
		_ = ack.Ack(false)
		return
	}

	log.Printf("⚙️ [WORKER] %s %s failed for %s: %s", n.Provider, n.Operation, n.AccountID, n.Message)
	if err := w.Alerter.SendAlert(n); err != nil {
		log.Printf("❌ [WORKER] alert not sent: %s", err)
		_ = ack.Nack(false, false)
		return
	}
	_ = ack.Ack(false)
}
