package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

const requestColumns = `id, requester_id, event_id, status, created`

// capacityGuard is appended to every confirmed-counter UPDATE so a concurrent
// writer can never push the counter past the participant limit. A zero limit
// means unlimited.
const capacityGuard = `(participant_limit = 0 OR confirmed_requests + $2 <= participant_limit)`

type requestRepository struct {
	DB *sql.DB
}

func NewRequestRepository(db *sql.DB) domain.RequestRepository {
	return &requestRepository{
		DB: db,
	}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	query := `
		INSERT INTO requests (requester_id, event_id, status, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, req.RequesterID, req.EventID, req.Status, req.Created).Scan(&req.ID)
}

func (r *requestRepository) CreateConfirmed(ctx context.Context, req *domain.Request) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.reserveCapacity(ctx, tx, req.EventID, 1); err != nil {
		return err
	}
	query := `
		INSERT INTO requests (requester_id, event_id, status, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, query, req.RequesterID, req.EventID, req.Status, req.Created).Scan(&req.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) Cancel(ctx context.Context, req *domain.Request, releaseCapacity bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE requests SET status = $1 WHERE id = $2`, domain.RequestCanceled, req.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	if releaseCapacity {
		_, err = tx.ExecContext(ctx,
			`UPDATE events SET confirmed_requests = confirmed_requests - 1 WHERE id = $1 AND confirmed_requests > 0`,
			req.EventID,
		)
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	req.Status = domain.RequestCanceled
	return nil
}

func (r *requestRepository) ApplyDecision(ctx context.Context, eventID string, confirmed, rejected []*domain.Request, confirmedDelta int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if confirmedDelta > 0 {
		if err := r.reserveCapacity(ctx, tx, eventID, confirmedDelta); err != nil {
			return err
		}
	}
	if err := r.updateStatuses(ctx, tx, confirmed, domain.RequestConfirmed); err != nil {
		return err
	}
	if err := r.updateStatuses(ctx, tx, rejected, domain.RequestRejected); err != nil {
		return err
	}
	return tx.Commit()
}

// reserveCapacity bumps the confirmed counter by delta, failing with
// ErrConflict when the guard leaves the row untouched.
func (r *requestRepository) reserveCapacity(ctx context.Context, tx *sql.Tx, eventID string, delta int) error {
	query := `
		UPDATE events SET confirmed_requests = confirmed_requests + $2
		WHERE id = $1 AND ` + capacityGuard + `
	`
	result, err := tx.ExecContext(ctx, query, eventID, delta)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *requestRepository) updateStatuses(ctx context.Context, tx *sql.Tx, requests []*domain.Request, status domain.RequestStatus) error {
	if len(requests) == 0 {
		return nil
	}
	ids := make([]string, len(requests))
	for i, req := range requests {
		ids[i] = req.ID
	}
	_, err := tx.ExecContext(ctx, `UPDATE requests SET status = $1 WHERE id = ANY($2)`, status, pq.Array(ids))
	return err
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE requester_id = $1
		ORDER BY created DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *requestRepository) GetActiveByRequesterAndEvent(ctx context.Context, requesterID, eventID string) (*domain.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE requester_id = $1 AND event_id = $2 AND status <> $3
	`
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, requesterID, eventID, domain.RequestCanceled))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE event_id = $1
		ORDER BY created
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *requestRepository) CountByEventsAndStatus(ctx context.Context, eventIDs []string, status domain.RequestStatus) (map[string]int, error) {
	query := `
		SELECT event_id, COUNT(*)
		FROM requests
		WHERE event_id = ANY($1) AND status = $2
		GROUP BY event_id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(eventIDs), status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var eventID string
		var count int
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, err
		}
		counts[eventID] = count
	}
	return counts, rows.Err()
}

func scanRequest(row rowScanner) (*domain.Request, error) {
	req := &domain.Request{}
	if err := row.Scan(&req.ID, &req.RequesterID, &req.EventID, &req.Status, &req.Created); err != nil {
		return nil, err
	}
	return req, nil
}

func collectRequests(rows *sql.Rows) ([]*domain.Request, error) {
	defer rows.Close()
	requests := make([]*domain.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
