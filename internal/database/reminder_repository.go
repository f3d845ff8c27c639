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

const reminderColumns = `id, user_id, event_id, reminder_time, lead_time_minutes, reminder_type, is_active, created_at, updated_at`

// ReminderRepo implements domain.ReminderRepository backed by PostgreSQL.
type ReminderRepo struct {
	pool *pgxpool.Pool
}

func NewReminderRepo(pool *pgxpool.Pool) *ReminderRepo {
	return &ReminderRepo{pool: pool}
}

func scanReminder(row pgx.Row) (*domain.Reminder, error) {
	var reminder domain.Reminder
	err := row.Scan(
		&reminder.ID, &reminder.UserID, &reminder.EventID, &reminder.ReminderTime,
		&reminder.LeadTimeMinutes, &reminder.ReminderType, &reminder.IsActive,
		&reminder.CreatedAt, &reminder.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReminderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reminder: %w", err)
	}
	return &reminder, nil
}

func (r *ReminderRepo) Create(ctx context.Context, reminder *domain.Reminder) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reminder_settings (user_id, event_id, reminder_time, lead_time_minutes, reminder_type, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		reminder.UserID, reminder.EventID, reminder.ReminderTime,
		reminder.LeadTimeMinutes, reminder.ReminderType, reminder.IsActive)

	if err := row.Scan(&reminder.ID, &reminder.CreatedAt, &reminder.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepo) GetByID(ctx context.Context, reminderID uuid.UUID) (*domain.Reminder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reminderColumns+` FROM reminder_settings WHERE id = $1`, reminderID)
	return scanReminder(row)
}

func (r *ReminderRepo) ListByUser(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminder_settings WHERE user_id = $1`
	args := []any{userID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND reminder_time >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND reminder_time <= $%d`, len(args))
	}
	query += ` ORDER BY reminder_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepo) Update(ctx context.Context, reminder *domain.Reminder) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reminder_settings
		SET event_id = $1, reminder_time = $2, lead_time_minutes = $3,
		    reminder_type = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6`,
		reminder.EventID, reminder.ReminderTime, reminder.LeadTimeMinutes,
		reminder.ReminderType, reminder.IsActive, reminder.ID)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepo) Delete(ctx context.Context, reminderID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reminder_settings WHERE id = $1`, reminderID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderColumns+` FROM reminder_settings
		WHERE is_active AND reminder_time <= $1
		ORDER BY reminder_time
		LIMIT $2`,
		now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepo) Deactivate(ctx context.Context, reminderID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reminder_settings SET is_active = FALSE, updated_at = NOW() WHERE id = $1`,
		reminderID)
	if err != nil {
		return fmt.Errorf("failed to deactivate reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}
