package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
)

const eventColumns = `id, user_id, title, description, start_time, end_time, category, is_all_day, is_recurring, metadata, created_at, updated_at`

// EventRepo implements domain.EventRepository backed by PostgreSQL.
type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	err := row.Scan(
		&event.ID, &event.UserID, &event.Title, &event.Description,
		&event.StartTime, &event.EndTime, &event.Category,
		&event.IsAllDay, &event.IsRecurring, &event.Metadata,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &event, nil
}

func (r *EventRepo) Create(ctx context.Context, event *domain.Event) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (user_id, title, description, start_time, end_time, category, is_all_day, is_recurring, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		event.UserID, event.Title, event.Description, event.StartTime, event.EndTime,
		event.Category, event.IsAllDay, event.IsRecurring, event.Metadata)

	if err := row.Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID)
	return scanEvent(row)
}

func (r *EventRepo) ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1`
	args := []any{userID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND end_time >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND start_time <= $%d`, len(args))
	}
	query += ` ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *EventRepo) Update(ctx context.Context, event *domain.Event) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE events
		SET title = $1, description = $2, start_time = $3, end_time = $4,
		    category = $5, is_all_day = $6, is_recurring = $7, metadata = $8, updated_at = NOW()
		WHERE id = $9`,
		event.Title, event.Description, event.StartTime, event.EndTime,
		event.Category, event.IsAllDay, event.IsRecurring, event.Metadata, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepo) Delete(ctx context.Context, eventID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepo) CountOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM events
		WHERE user_id = $1 AND id != $2 AND start_time < $3 AND end_time > $4`,
		userID, excludeID, end, start).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping events: %w", err)
	}
	return count, nil
}
