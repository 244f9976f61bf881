package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventboard/internal/domain"
)

const eventColumns = `id, title, annotation, description, category_id, initiator_id,
		event_date, created_on, published_on, lat, lon, paid,
		participant_limit, confirmed_requests, request_moderation, state`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, initiator_id,
			event_date, created_on, lat, lon, paid,
			participant_limit, confirmed_requests, request_moderation, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return querier(ctx, r.DB).QueryRowContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.InitiatorID,
		e.EventDate, e.CreatedOn, e.Lat, e.Lon, e.Paid,
		e.ParticipantLimit, e.ConfirmedRequests, e.RequestModeration, e.State,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) GetByIDAndInitiator(ctx context.Context, id, initiatorID string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND initiator_id = $2`
	return r.getOne(ctx, query, id, initiatorID)
}

func (r *eventRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var publishedOn sql.NullTime
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
		&e.EventDate, &e.CreatedOn, &publishedOn, &e.Lat, &e.Lon, &e.Paid,
		&e.ParticipantLimit, &e.ConfirmedRequests, &e.RequestModeration, &e.State,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if publishedOn.Valid {
		e.PublishedOn = &publishedOn.Time
	}
	return e, nil
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID string, from, size int) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE initiator_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, initiatorID, from, size)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) Search(ctx context.Context, f domain.EventSearchFilter) ([]*domain.Event, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Text != "" {
		p := arg("%" + strings.ToLower(f.Text) + "%")
		conds = append(conds, fmt.Sprintf("(lower(annotation) LIKE %s OR lower(description) LIKE %s)", p, p))
	}
	if len(f.InitiatorIDs) > 0 {
		conds = append(conds, fmt.Sprintf("initiator_id = ANY(%s)", arg(pq.Array(f.InitiatorIDs))))
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		conds = append(conds, fmt.Sprintf("state = ANY(%s)", arg(pq.Array(states))))
	}
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, fmt.Sprintf("category_id = ANY(%s)", arg(pq.Array(f.CategoryIDs))))
	}
	if f.Paid != nil {
		conds = append(conds, fmt.Sprintf("paid = %s", arg(*f.Paid)))
	}
	if f.RangeStart != nil {
		conds = append(conds, fmt.Sprintf("event_date >= %s", arg(*f.RangeStart)))
	}
	if f.RangeEnd != nil {
		conds = append(conds, fmt.Sprintf("event_date <= %s", arg(*f.RangeEnd)))
	}
	if f.OnlyAvailable {
		conds = append(conds, "(participant_limit = 0 OR confirmed_requests < participant_limit)")
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.SortByDate {
		query += " ORDER BY event_date"
	} else {
		query += " ORDER BY id"
	}
	size := f.Size
	if size <= 0 {
		size = 10
	}
	query += fmt.Sprintf(" OFFSET %s LIMIT %s", arg(f.From), arg(size))

	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, annotation = $3, description = $4, category_id = $5,
			event_date = $6, published_on = $7, lat = $8, lon = $9, paid = $10,
			participant_limit = $11, request_moderation = $12, state = $13
		WHERE id = $1
	`
	res, err := querier(ctx, r.DB).ExecContext(ctx, query,
		e.ID, e.Title, e.Annotation, e.Description, e.CategoryID,
		e.EventDate, e.PublishedOn, e.Lat, e.Lon, e.Paid,
		e.ParticipantLimit, e.RequestModeration, e.State,
	)
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

// AdjustConfirmedCount moves the confirmed counter by delta in one statement.
// The WHERE clause refuses an increment past a nonzero participant limit and
// refuses to drive the counter negative; such a delta returns ErrConflict.
func (r *eventRepository) AdjustConfirmedCount(ctx context.Context, eventID string, delta int) error {
	query := `
		UPDATE events
		SET confirmed_requests = confirmed_requests + $2
		WHERE id = $1
			AND confirmed_requests + $2 >= 0
			AND (participant_limit = 0 OR $2 <= 0 OR confirmed_requests + $2 <= participant_limit)
	`
	res, err := querier(ctx, r.DB).ExecContext(ctx, query, eventID, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("adjust confirmed count for event %s by %d: %w", eventID, delta, domain.ErrConflict)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var publishedOn sql.NullTime
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.InitiatorID,
			&e.EventDate, &e.CreatedOn, &publishedOn, &e.Lat, &e.Lon, &e.Paid,
			&e.ParticipantLimit, &e.ConfirmedRequests, &e.RequestModeration, &e.State,
		); err != nil {
			return nil, err
		}
		if publishedOn.Valid {
			e.PublishedOn = &publishedOn.Time
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
