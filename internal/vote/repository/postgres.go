package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"votetrail/backend/internal/db"
	"votetrail/backend/internal/db/uow"
	"votetrail/backend/internal/vote/domain"
)

const (
	insertVote  = `INSERT INTO testable.votes (id, candidate, party, timestamp) VALUES ($1, $2, $3, $4)`
	selectVotes = `SELECT id, candidate, party, timestamp FROM testable.votes`
	// COLLATE "C" keeps the tie-break in byte order regardless of the database locale.
	selectResults = `SELECT party, COUNT(*) FROM testable.votes
GROUP BY party ORDER BY COUNT(*) DESC, party COLLATE "C" ASC`
	countVotes = `SELECT COUNT(*) FROM testable.votes`
)

// PostgresRepository stores votes in testable.votes.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a vote repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the vote, inside the unit of work's transaction when ctx carries one.
func (r *PostgresRepository) Create(ctx context.Context, v *domain.VoteRecord) error {
	_, err := uow.SQLQuerier(ctx, r.db).ExecContext(ctx, insertVote, v.ID, v.Candidate, v.Party, v.Timestamp)
	return db.Wrap("insert vote", err)
}

// GetByID returns the vote for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VoteRecord, error) {
	row := uow.SQLQuerier(ctx, r.db).QueryRowContext(ctx, selectVotes+` WHERE id = $1`, id)
	var v domain.VoteRecord
	if err := row.Scan(&v.ID, &v.Candidate, &v.Party, &v.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, db.Wrap("get vote", err)
	}
	v.Timestamp = v.Timestamp.UTC()
	return &v, nil
}

// ListNewestFirst returns all votes, most recent first.
func (r *PostgresRepository) ListNewestFirst(ctx context.Context) ([]*domain.VoteRecord, error) {
	rows, err := uow.SQLQuerier(ctx, r.db).QueryContext(ctx, selectVotes+` ORDER BY timestamp DESC`)
	if err != nil {
		return nil, db.Wrap("list votes", err)
	}
	defer rows.Close()

	out := make([]*domain.VoteRecord, 0)
	for rows.Next() {
		var v domain.VoteRecord
		if err := rows.Scan(&v.ID, &v.Candidate, &v.Party, &v.Timestamp); err != nil {
			return nil, db.Wrap("scan vote", err)
		}
		v.Timestamp = v.Timestamp.UTC()
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("list votes", err)
	}
	return out, nil
}

// Results returns the vote count per party.
func (r *PostgresRepository) Results(ctx context.Context) ([]domain.Result, error) {
	rows, err := uow.SQLQuerier(ctx, r.db).QueryContext(ctx, selectResults)
	if err != nil {
		return nil, db.Wrap("results", err)
	}
	defer rows.Close()

	out := make([]domain.Result, 0)
	for rows.Next() {
		var res domain.Result
		if err := rows.Scan(&res.Party, &res.VoteCount); err != nil {
			return nil, db.Wrap("scan result", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("results", err)
	}
	return out, nil
}

// Count returns the number of votes.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := uow.SQLQuerier(ctx, r.db).QueryRowContext(ctx, countVotes).Scan(&n); err != nil {
		return 0, db.Wrap("count votes", err)
	}
	return n, nil
}
