package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"votetrail/backend/internal/audit/domain"
	"votetrail/backend/internal/db"
	"votetrail/backend/internal/db/uow"
)

const (
	insertAudit = `INSERT INTO testable.audits (id, entity_name, entity_id, action, payload, timestamp)
VALUES ($1, $2, $3, $4, $5, $6)`
	selectAudits = `SELECT id, entity_name, entity_id, action, payload, timestamp FROM testable.audits`
)

// PostgresRepository stores audit records in testable.audits.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts the records. Each record must have ID and Timestamp set.
func (r *PostgresRepository) Append(ctx context.Context, records ...*domain.AuditRecord) error {
	q := uow.SQLQuerier(ctx, r.db)
	for _, a := range records {
		entityID := uuid.NullUUID{}
		if a.EntityID != nil {
			entityID = uuid.NullUUID{UUID: *a.EntityID, Valid: true}
		}
		payload := sql.NullString{}
		if a.Payload != nil {
			payload = sql.NullString{String: *a.Payload, Valid: true}
		}
		_, err := q.ExecContext(ctx, insertAudit,
			a.ID, a.EntityName, entityID, string(a.Action), payload, a.Timestamp)
		if err != nil {
			return db.Wrap("insert audit", err)
		}
	}
	return nil
}

// ListNewestFirst returns all audit records, most recent first.
func (r *PostgresRepository) ListNewestFirst(ctx context.Context) ([]*domain.AuditRecord, error) {
	return r.list(ctx, selectAudits+` ORDER BY timestamp DESC`)
}

// ListOldestFirst returns all audit records, oldest first.
func (r *PostgresRepository) ListOldestFirst(ctx context.Context) ([]*domain.AuditRecord, error) {
	return r.list(ctx, selectAudits+` ORDER BY timestamp ASC`)
}

func (r *PostgresRepository) list(ctx context.Context, query string) ([]*domain.AuditRecord, error) {
	rows, err := uow.SQLQuerier(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, db.Wrap("list audits", err)
	}
	defer rows.Close()

	out := make([]*domain.AuditRecord, 0)
	for rows.Next() {
		var (
			a        domain.AuditRecord
			entityID uuid.NullUUID
			action   string
			payload  sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.EntityName, &entityID, &action, &payload, &a.Timestamp); err != nil {
			return nil, db.Wrap("scan audit", err)
		}
		if entityID.Valid {
			id := entityID.UUID
			a.EntityID = &id
		}
		if payload.Valid {
			p := payload.String
			a.Payload = &p
		}
		a.Action = domain.Action(action)
		a.Timestamp = a.Timestamp.UTC()
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("list audits", err)
	}
	return out, nil
}
