package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items
		  (id, title, description, price, category, size, condition, brand, color,
		   images, status, store_id, seller_id, is_consignment)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		item.ID, item.Title, item.Description, item.Price,
		item.Category, item.Size, item.Condition, item.Brand, item.Color,
		pq.Array(item.Images), item.Status, item.StoreID, item.SellerID,
		item.IsConsignment)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Item, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	item, err := scanItem(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1`, uid))
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	return item, err
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]*Item, error) {
	query := selectSQL + ` WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StoreID != "" {
		query += ` AND store_id=` + arg(filter.StoreID)
	}
	if filter.SellerID != "" {
		query += ` AND seller_id=` + arg(filter.SellerID)
	}
	if filter.Category != "" {
		query += ` AND category=` + arg(filter.Category)
	}
	if filter.Size != "" {
		query += ` AND size=` + arg(filter.Size)
	}
	if filter.Brand != "" {
		query += ` AND brand=` + arg(filter.Brand)
	}
	if filter.Condition != "" {
		query += ` AND condition=` + arg(filter.Condition)
	}
	if filter.Status != "" {
		query += ` AND status=` + arg(filter.Status)
	}
	if filter.MinPrice != nil {
		query += ` AND price>=` + arg(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += ` AND price<=` + arg(*filter.MaxPrice)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET title=$1, description=$2, price=$3, category=$4, size=$5,
		    condition=$6, brand=$7, color=$8, images=$9, updated_at=$10
		WHERE id=$11`,
		item.Title, item.Description, item.Price, item.Category, item.Size,
		item.Condition, item.Brand, item.Color, pq.Array(item.Images),
		time.Now(), item.ID)
	return err
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, from, to ItemStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`,
		to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ── scanning ─────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, title, description, price, category, size, condition, brand, color,
	       images, status, store_id, seller_id, is_consignment,
	       created_at, updated_at, sold_at
	FROM items`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanItem(row rowScanner) (*Item, error) {
	item := &Item{}
	var sellerID sql.NullString
	var soldAt sql.NullTime
	var images pq.StringArray
	err := row.Scan(
		&item.ID, &item.Title, &item.Description, &item.Price,
		&item.Category, &item.Size, &item.Condition, &item.Brand, &item.Color,
		&images, &item.Status, &item.StoreID, &sellerID, &item.IsConsignment,
		&item.CreatedAt, &item.UpdatedAt, &soldAt)
	if err != nil {
		return nil, err
	}
	item.Images = images
	if sellerID.Valid {
		id, _ := uuid.Parse(sellerID.String)
		item.SellerID = &id
	}
	if soldAt.Valid {
		item.SoldAt = &soldAt.Time
	}
	return item, nil
}
