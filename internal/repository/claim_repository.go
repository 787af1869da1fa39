package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// ClaimLedger records that a consumer has handled an event. The unique
// constraint over (tenant, event, consumer) is the entire mechanism: a
// duplicate claim is the expected outcome for a redelivery, not an error.
type ClaimLedger interface {
	Claim(ctx context.Context, tenantID, eventID, consumerName string) (bool, error)
}

// PgxClaimLedger implements ClaimLedger over a Querier, typically the
// shared pool.
type PgxClaimLedger struct {
	db Querier
}

// NewPgxClaimLedger instantiates the ledger.
func NewPgxClaimLedger(db Querier) *PgxClaimLedger {
	return &PgxClaimLedger{db: db}
}

func (l *PgxClaimLedger) Claim(ctx context.Context, tenantID, eventID, consumerName string) (bool, error) {
	const query = `
        INSERT INTO processed_events (tenant_id, event_id, consumer_name)
        VALUES ($1,$2,$3)`
	if _, err := l.db.Exec(ctx, query, tenantID, eventID, consumerName); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
