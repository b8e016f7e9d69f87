package handlers

import (
	"net/http"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

type NotificationSource interface {
	Drain(accountID string) []entity.Notification
}

type NotificationHandler struct {
	Inbox NotificationSource
}

func NewNotificationHandler(inbox NotificationSource) *NotificationHandler {
	return &NotificationHandler{Inbox: inbox}
}

// List returns and clears the pending notifications of an account.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeFail(w, http.StatusBadRequest, "account_id is required")
		return
	}
	writeOK(w, h.Inbox.Drain(accountID))
}
