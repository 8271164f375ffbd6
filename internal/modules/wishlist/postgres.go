package wishlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bloem-market/bloem-backend/internal/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) List(ctx context.Context, userID string) ([]*Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.id, w.user_id, w.item_id, w.added_at,
		       i.title, i.price, i.status
		FROM wishlist_items w
		JOIN items i ON i.id = w.item_id
		WHERE w.user_id = $1
		ORDER BY w.added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	lines := []*Line{}
	for rows.Next() {
		line := &Line{}
		if err := rows.Scan(
			&line.ID, &line.UserID, &line.ItemID, &line.AddedAt,
			&line.Title, &line.Price, &line.Status); err != nil {
			return nil, fmt.Errorf("scan wishlist line: %w", err)
		}
		line.Available = line.Status == "FOR_SALE"
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) Add(ctx context.Context, e *Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, user_id, item_id)
		VALUES ($1,$2,$3)`, e.ID, e.UserID, e.ItemID)
	if database.IsUniqueViolation(err) {
		return ErrAlreadySaved
	}
	if err != nil {
		// Foreign key failure means the item does not exist.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrItemNotFound
		}
		return fmt.Errorf("insert wishlist entry: %w", err)
	}
	return nil
}

func (r *postgresRepo) Remove(ctx context.Context, userID, entryID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE id=$1 AND user_id=$2`, entryID, userID)
	if err != nil {
		return fmt.Errorf("remove wishlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}
