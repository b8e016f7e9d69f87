package notify

import (
	"context"
	"log"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

// Fanout delivers each notification to every sink in order.
type Fanout []usecase.Notifier

func (f Fanout) Notify(ctx context.Context, n entity.Notification) {
	for _, sink := range f {
		sink.Notify(ctx, n)
	}
}

type Log struct{}

func (Log) Notify(_ context.Context, n entity.Notification) {
	if n.Success {
		log.Printf("🔔 [%s] %s %s: %s", n.AccountID, n.Provider, n.Operation, n.Message)
		return
	}
	log.Printf("🔕 [%s] %s %s failed (%s): %s", n.AccountID, n.Provider, n.Operation, n.Code, n.Message)
}

type Metrics struct{}

func (Metrics) Notify(_ context.Context, n entity.Notification) {
	middleware.RecordNotification(string(n.Provider), string(n.Operation), n.Success)
}

type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n entity.Notification) error
}

// Queue publishes to RabbitMQ. A publish failure is logged and swallowed;
// the user already got the notification through the other sinks.
type Queue struct {
	Publisher NotificationPublisher
}

func (q Queue) Notify(ctx context.Context, n entity.Notification) {
	if err := q.Publisher.PublishNotification(context.WithoutCancel(ctx), n); err != nil {
		log.Printf("⚠️ Notification %s not queued: %v", n.ID, err)
	}
}
