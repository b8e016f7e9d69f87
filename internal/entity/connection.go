package entity

import (
	"context"
	"errors"
	"time"
)

type ConnectionStatus string

const (
	StatusUnknown      ConnectionStatus = "unknown"
	StatusChecking     ConnectionStatus = "checking"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// ProviderConnection records the outcome of the last handshake. Provider
// credentials are not part of it: the backend keeps the API key it was given
// on connect, so nothing secret is stored on this side.
type ProviderConnection struct {
	AccountID   string           `json:"account_id"`
	Provider    Provider         `json:"provider"`
	Status      ConnectionStatus `json:"status"`
	ConnectedAt *time.Time       `json:"connected_at,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

var ErrConnectionNotFound = errors.New("connection not found")

type ConnectionRepositoryInterface interface {
	Save(ctx context.Context, conn *ProviderConnection) error
	FindByAccountAndProvider(ctx context.Context, accountID string, provider Provider) (*ProviderConnection, error)
}
