package entity

import (
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OpConnect    Operation = "connect"
	OpOAuth      Operation = "oauth"
	OpFetch      Operation = "fetch"
	OpDeactivate Operation = "deactivate"
	OpDelete     Operation = "delete"
)

// Notification is the user-visible outcome of a state-changing operation.
type Notification struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Provider  Provider  `json:"provider"`
	Operation Operation `json:"operation"`
	Success   bool      `json:"success"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

func NewNotification(accountID string, provider Provider, op Operation, success bool, code, message string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Provider:  provider,
		Operation: op,
		Success:   success,
		Code:      code,
		Message:   message,
		At:        time.Now().UTC(),
	}
}
