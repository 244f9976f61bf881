package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

// Postgres error code for unique_violation, raised when two transactions race
// on the (requester_id, event_id) unique index.
const pgUniqueViolation = "23505"

type requestRepository struct {
	DB *sql.DB
}

func NewRequestRepository(db *sql.DB) domain.RequestRepository {
	return &requestRepository{
		DB: db,
	}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ParticipationRequest) error {
	query := `
		INSERT INTO participation_requests (event_id, requester_id, created, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := querier(ctx, r.DB).QueryRowContext(ctx, query,
		req.EventID, req.RequesterID, req.Created, req.Status,
	).Scan(&req.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return fmt.Errorf("request for event %s by %s already exists: %w",
				req.EventID, req.RequesterID, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *requestRepository) GetByIDAndRequester(ctx context.Context, id, requesterID string) (*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, created, status
		FROM participation_requests
		WHERE id = $1 AND requester_id = $2
	`
	req := &domain.ParticipationRequest{}
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, id, requesterID).
		Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Created, &req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) ExistsByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM participation_requests
			WHERE requester_id = $1 AND event_id = $2
		)
	`
	var exists bool
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, requesterID, eventID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, created, status
		FROM participation_requests
		WHERE requester_id = $1
		ORDER BY created
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.ParticipationRequest, error) {
	query := `
		SELECT id, event_id, requester_id, created, status
		FROM participation_requests
		WHERE event_id = $1
		ORDER BY created
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

func (r *requestRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []*domain.ParticipationRequest{}, nil
	}
	query := `
		SELECT id, event_id, requester_id, created, status
		FROM participation_requests
		WHERE id = ANY($1)
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	query := `UPDATE participation_requests SET status = $2 WHERE id = $1`
	res, err := querier(ctx, r.DB).ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *requestRepository) UpdateStatuses(ctx context.Context, ids []string, status domain.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE participation_requests SET status = $2 WHERE id = ANY($1)`
	_, err := querier(ctx, r.DB).ExecContext(ctx, query, pq.Array(ids), status)
	return err
}

func scanRequests(rows *sql.Rows) ([]*domain.ParticipationRequest, error) {
	defer rows.Close()
	requests := make([]*domain.ParticipationRequest, 0)
	for rows.Next() {
		req := &domain.ParticipationRequest{}
		if err := rows.Scan(&req.ID, &req.EventID, &req.RequesterID, &req.Created, &req.Status); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
