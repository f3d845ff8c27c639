package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ian-yc-kim/fs-flowstate-svc-sub000/internal/domain"
)

const inboxColumns = `id, user_id, content, category, priority, status, created_at, updated_at`

// InboxRepo implements domain.InboxRepository backed by PostgreSQL.
type InboxRepo struct {
	pool *pgxpool.Pool
}

func NewInboxRepo(pool *pgxpool.Pool) *InboxRepo {
	return &InboxRepo{pool: pool}
}

func scanInboxItem(row pgx.Row) (*domain.InboxItem, error) {
	var item domain.InboxItem
	err := row.Scan(
		&item.ID, &item.UserID, &item.Content, &item.Category,
		&item.Priority, &item.Status, &item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan inbox item: %w", err)
	}
	return &item, nil
}

func (r *InboxRepo) Create(ctx context.Context, item *domain.InboxItem) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO inbox_items (user_id, content, category, priority, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		item.UserID, item.Content, item.Category, item.Priority, item.Status)

	if err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create inbox item: %w", err)
	}
	return nil
}

func (r *InboxRepo) GetByID(ctx context.Context, itemID uuid.UUID) (*domain.InboxItem, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+inboxColumns+` FROM inbox_items WHERE id = $1`, itemID)
	return scanInboxItem(row)
}

func (r *InboxRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.InboxFilter) ([]*domain.InboxItem, error) {
	query := `SELECT ` + inboxColumns + ` FROM inbox_items WHERE user_id = $1`
	args := []any{userID}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		query += fmt.Sprintf(` AND priority = $%d`, len(args))
	}
	query += ` ORDER BY priority, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox items: %w", err)
	}
	defer rows.Close()

	var items []*domain.InboxItem
	for rows.Next() {
		item, err := scanInboxItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *InboxRepo) Update(ctx context.Context, item *domain.InboxItem) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE inbox_items
		SET content = $1, category = $2, priority = $3, status = $4, updated_at = NOW()
		WHERE id = $5`,
		item.Content, item.Category, item.Priority, item.Status, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update inbox item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *InboxRepo) Delete(ctx context.Context, itemID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM inbox_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete inbox item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}
