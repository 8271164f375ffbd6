package cart

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/bloem-market/bloem-backend/internal/database"
	"github.com/bloem-market/bloem-backend/internal/modules/catalog"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) List(ctx context.Context, userID string) ([]*CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.item_id, c.added_at,
		       i.title, i.price, i.brand, i.size, i.images, i.store_id
		FROM cart_items c
		JOIN items i ON i.id = c.item_id
		WHERE c.user_id = $1 AND i.status = 'FOR_SALE'
		ORDER BY c.added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	lines := []*CartLine{}
	for rows.Next() {
		line := &CartLine{}
		var images pq.StringArray
		if err := rows.Scan(
			&line.ID, &line.UserID, &line.ItemID, &line.AddedAt,
			&line.Title, &line.Price, &line.Brand, &line.Size, &images,
			&line.StoreID); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		line.Images = images
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) Add(ctx context.Context, ci *CartItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, user_id, item_id)
		VALUES ($1,$2,$3)`, ci.ID, ci.UserID, ci.ItemID)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyInCart
	}
	if err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

func (r *postgresRepo) Remove(ctx context.Context, userID, cartItemID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, cartItemID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

func (r *postgresRepo) GetItemStatus(ctx context.Context, itemID string) (catalog.ItemStatus, error) {
	var status catalog.ItemStatus
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM items WHERE id=$1`, itemID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", ErrItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get item status: %w", err)
	}
	return status, nil
}
