package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

type ConnectionRepository struct {
	DB     *sql.DB
	Driver string
}

func NewConnectionRepository(db *sql.DB, driver string) *ConnectionRepository {
	return &ConnectionRepository{DB: db, Driver: driver}
}

// Save upserts the connection status for (account, provider). A save
// without ConnectedAt keeps the previous one.
func (r *ConnectionRepository) Save(ctx context.Context, conn *entity.ProviderConnection) error {
	query := `
		INSERT INTO provider_connections (account_id, provider, status, connected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, provider)
		DO UPDATE SET
			status = excluded.status,
			connected_at = COALESCE(excluded.connected_at, provider_connections.connected_at),
			updated_at = excluded.updated_at
	`

	updatedAt := conn.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, rebind(r.Driver, query),
		conn.AccountID,
		string(conn.Provider),
		string(conn.Status),
		nullTime(conn.ConnectedAt),
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("save %s connection: %w", conn.Provider, err)
	}
	return nil
}

func (r *ConnectionRepository) FindByAccountAndProvider(ctx context.Context, accountID string, provider entity.Provider) (*entity.ProviderConnection, error) {
	query := `
		SELECT status, connected_at, updated_at
		FROM provider_connections
		WHERE account_id = $1 AND provider = $2
	`

	var (
		status      string
		connectedAt sql.NullTime
		updatedAt   time.Time
	)
	err := r.DB.QueryRowContext(ctx, rebind(r.Driver, query), accountID, string(provider)).
		Scan(&status, &connectedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s connection: %w", provider, err)
	}

	conn := &entity.ProviderConnection{
		AccountID: accountID,
		Provider:  provider,
		Status:    entity.ConnectionStatus(status),
		UpdatedAt: updatedAt,
	}
	if connectedAt.Valid {
		t := connectedAt.Time
		conn.ConnectedAt = &t
	}
	return conn, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

var placeholder = regexp.MustCompile(`\$\d+`)

// rebind turns $N placeholders into ? for SQLite. Arguments are always
// passed in placeholder order.
func rebind(driver, query string) string {
	if driver != DriverSQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}
