package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectSQL = `
	SELECT id, order_id, item_id, seller_id, store_id, amount,
	       seller_earnings, store_commission, platform_fee, status,
	       created_at, updated_at
	FROM transactions`

func (r *postgresRepo) ListBySeller(ctx context.Context, sellerID string, status string) ([]*Transaction, error) {
	query := selectSQL + ` WHERE seller_id=$1`
	args := []interface{}{sellerID}
	if status != "" {
		query += ` AND status=$2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID string, status string) ([]*Transaction, error) {
	query := selectSQL + ` WHERE store_id=$1`
	args := []interface{}{storeID}
	if status != "" {
		query += ` AND status=$2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *postgresRepo) ListByOrder(ctx context.Context, orderID string) ([]*Transaction, error) {
	return r.query(ctx, selectSQL+` WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
}

func (r *postgresRepo) SellerSummary(ctx context.Context, sellerID string) (*SellerSummary, error) {
	id, err := uuid.Parse(sellerID)
	if err != nil {
		return nil, ErrSellerNotFound
	}
	s := &SellerSummary{SellerID: id}
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(seller_earnings) FILTER (WHERE status='COMPLETED'), 0),
		       COALESCE(SUM(seller_earnings) FILTER (WHERE status='PENDING'), 0),
		       COUNT(*) FILTER (WHERE status='COMPLETED')
		FROM transactions WHERE seller_id=$1`, id).Scan(
		&s.TotalEarnings, &s.PendingEarnings, &s.ItemsSold)
	if err != nil {
		return nil, fmt.Errorf("seller summary: %w", err)
	}
	return s, nil
}

func (r *postgresRepo) StoreSummary(ctx context.Context, storeID string) (*StoreSummary, error) {
	id, err := uuid.Parse(storeID)
	if err != nil {
		return nil, ErrStoreNotFound
	}
	s := &StoreSummary{StoreID: id}
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(store_commission) FILTER (WHERE status='COMPLETED'), 0),
		       COALESCE(SUM(store_commission) FILTER (WHERE status='PENDING'), 0),
		       COUNT(*) FILTER (WHERE status='COMPLETED')
		FROM transactions WHERE store_id=$1`, id).Scan(
		&s.TotalCommission, &s.PendingCommission, &s.ItemsSold)
	if err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}
	return s, nil
}

func (r *postgresRepo) query(ctx context.Context, query string, args ...interface{}) ([]*Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []*Transaction{}
	for rows.Next() {
		t := &Transaction{}
		if err := rows.Scan(
			&t.ID, &t.OrderID, &t.ItemID, &t.SellerID, &t.StoreID, &t.Amount,
			&t.SellerEarnings, &t.StoreCommission, &t.PlatformFee, &t.Status,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
