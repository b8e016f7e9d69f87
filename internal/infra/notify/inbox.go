package notify

import (
	"context"
	"sync"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

// Inbox keeps the most recent notifications per account so the dashboard
// can poll them and show toasts.
type Inbox struct {
	mu    sync.Mutex
	limit int
	byAcc map[string][]entity.Notification
}

func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = 50
	}
	return &Inbox{limit: limit, byAcc: map[string][]entity.Notification{}}
}

func (i *Inbox) Notify(_ context.Context, n entity.Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()

	list := append(i.byAcc[n.AccountID], n)
	if len(list) > i.limit {
		list = list[len(list)-i.limit:]
	}
	i.byAcc[n.AccountID] = list
}

// Drain returns and forgets the account's notifications, oldest first.
func (i *Inbox) Drain(accountID string) []entity.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	list := i.byAcc[accountID]
	delete(i.byAcc, accountID)
	if list == nil {
		return []entity.Notification{}
	}
	return list
}
