package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/bloem-market/bloem-backend/internal/database"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetSaleItems(ctx context.Context, ids []uuid.UUID) ([]*SaleItem, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, store_id, seller_id, price, is_consignment
		FROM items
		WHERE id = ANY($1) AND status = 'FOR_SALE'`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("select sale items: %w", err)
	}
	defer rows.Close()

	var items []*SaleItem
	for rows.Next() {
		item := &SaleItem{}
		var sellerID sql.NullString
		if err := rows.Scan(&item.ID, &item.StoreID, &sellerID, &item.Price, &item.IsConsignment); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		if sellerID.Valid {
			id, _ := uuid.Parse(sellerID.String)
			item.SellerID = &id
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) GetStoreCommission(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT commission_rate FROM stores WHERE id=$1`, storeID).Scan(&rate)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrStoreNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get commission rate: %w", err)
	}
	return rate, nil
}

// Create runs the whole reservation write set in one transaction. The
// conditional item update is the concurrency guard: whichever concurrent
// checkout reserves an item first wins, the other rolls back entirely.
func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	return database.WithRetry(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders
			  (id, order_number, status, buyer_id, store_id,
			   subtotal, service_fee, tax, total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			o.ID, o.OrderNumber, o.Status, o.BuyerID, o.StoreID,
			o.Subtotal, o.ServiceFee, o.Tax, o.Total)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		itemIDs := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items
				  (id, order_id, item_id, seller_id, is_consignment,
				   price_at_purchase, seller_payout, store_commission, platform_fee)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				item.ID, o.ID, item.ItemID, item.SellerID, item.IsConsignment,
				item.PriceAtPurchase, item.SellerPayout, item.StoreCommission,
				item.PlatformFee)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE items SET status='RESERVED', updated_at=NOW()
				WHERE id=$1 AND status='FOR_SALE'`, item.ItemID)
			if err != nil {
				return fmt.Errorf("reserve item %s: %w", item.ItemID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("reserve item %s: %w", item.ItemID, err)
			}
			if n != 1 {
				return ErrItemsUnavailable
			}

			if item.IsConsignment && item.SellerID != nil {
				_, err = tx.ExecContext(ctx, `
					INSERT INTO transactions
					  (id, order_id, item_id, seller_id, store_id, amount,
					   seller_earnings, store_commission, platform_fee, status)
					VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'PENDING')`,
					uuid.New(), o.ID, item.ItemID, item.SellerID, o.StoreID,
					item.PriceAtPurchase, item.SellerPayout, item.StoreCommission,
					item.PlatformFee)
				if err != nil {
					return fmt.Errorf("insert transaction: %w", err)
				}
			}

			itemIDs = append(itemIDs, item.ItemID.String())
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM cart_items WHERE user_id=$1 AND item_id = ANY($2)`,
			o.BuyerID, pq.Array(itemIDs))
		if err != nil {
			return fmt.Errorf("purge cart: %w", err)
		}

		return nil
	})
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return r.getOne(ctx, selectSQL+` WHERE id=$1`, uid)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return r.getOne(ctx, selectSQL+` WHERE order_number=$1`, orderNumber)
}

func (r *postgresRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*Order, error) {
	return r.getOne(ctx, selectSQL+` WHERE payment_intent_id=$1`, intentID)
}

func (r *postgresRepo) getOne(ctx context.Context, query string, args ...interface{}) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	query := selectSQL + ` WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.BuyerID != "" {
		query += ` AND buyer_id=` + arg(filter.BuyerID)
	}
	if filter.StoreID != "" {
		query += ` AND store_id=` + arg(filter.StoreID)
	}
	if filter.Status != "" {
		query += ` AND status=` + arg(filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.Items, err = r.listItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) AttachPaymentIntent(ctx context.Context, orderID uuid.UUID, intentID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_intent_id=$1, updated_at=NOW() WHERE id=$2`,
		intentID, orderID)
	if err != nil {
		return fmt.Errorf("attach payment intent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepo) Cancel(ctx context.Context, o *Order) error {
	return database.WithRetry(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders SET status='CANCELLED', updated_at=NOW()
			WHERE id=$1 AND status='RESERVED'`, o.ID)
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrInvalidOrderState
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE items SET status='FOR_SALE', updated_at=NOW()
			WHERE status='RESERVED'
			  AND id IN (SELECT item_id FROM order_items WHERE order_id=$1)`, o.ID)
		if err != nil {
			return fmt.Errorf("restore items: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE transactions SET status='CANCELLED', updated_at=NOW()
			WHERE order_id=$1 AND status <> 'CANCELLED'`, o.ID)
		if err != nil {
			return fmt.Errorf("cancel transactions: %w", err)
		}
		return nil
	})
}

func (r *postgresRepo) Finalize(ctx context.Context, o *Order, paymentMethod string, when time.Time) error {
	return database.WithRetry(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status='COMPLETED', payment_method=$1, completed_at=$2, updated_at=$2
			WHERE id=$3 AND status='RESERVED'`, paymentMethod, when, o.ID)
		if err != nil {
			return fmt.Errorf("complete order: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrInvalidOrderState
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE items SET status='SOLD', sold_at=$1, updated_at=$1
			WHERE status='RESERVED'
			  AND id IN (SELECT item_id FROM order_items WHERE order_id=$2)`, when, o.ID)
		if err != nil {
			return fmt.Errorf("mark items sold: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE transactions SET status='COMPLETED', updated_at=$1
			WHERE order_id=$2 AND status='PENDING'`, when, o.ID)
		if err != nil {
			return fmt.Errorf("complete transactions: %w", err)
		}

		// Insert ledger rows for any consignment order item that somehow got
		// here without its PENDING transaction. This is the authoritative
		// point where seller earnings become payable.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions
			  (id, order_id, item_id, seller_id, store_id, amount,
			   seller_earnings, store_commission, platform_fee, status)
			SELECT gen_random_uuid(), oi.order_id, oi.item_id, oi.seller_id, $1,
			       oi.price_at_purchase, oi.seller_payout, oi.store_commission,
			       oi.platform_fee, 'COMPLETED'
			FROM order_items oi
			WHERE oi.order_id=$2 AND oi.is_consignment AND oi.seller_id IS NOT NULL
			  AND NOT EXISTS (
			    SELECT 1 FROM transactions t
			    WHERE t.order_id=oi.order_id AND t.item_id=oi.item_id)`,
			o.StoreID, o.ID)
		if err != nil {
			return fmt.Errorf("upsert transactions: %w", err)
		}

		// Defensive purge in case the creation-time purge was skipped by a
		// different entry path.
		_, err = tx.ExecContext(ctx, `
			DELETE FROM cart_items
			WHERE user_id=$1
			  AND item_id IN (SELECT item_id FROM order_items WHERE order_id=$2)`,
			o.BuyerID, o.ID)
		if err != nil {
			return fmt.Errorf("purge cart: %w", err)
		}
		return nil
	})
}

func (r *postgresRepo) ListStaleReserved(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM orders
		WHERE status='RESERVED' AND payment_intent_id IS NULL AND created_at < $1
		ORDER BY created_at ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale reservations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ── scanning ─────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, order_number, status, buyer_id, store_id,
	       subtotal, service_fee, tax, total,
	       payment_intent_id, payment_method, created_at, updated_at, completed_at
	FROM orders`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var intentID, method sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.BuyerID, &o.StoreID,
		&o.Subtotal, &o.ServiceFee, &o.Tax, &o.Total,
		&intentID, &method, &o.CreatedAt, &o.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if intentID.Valid {
		o.PaymentIntentID = intentID.String
	}
	if method.Valid {
		o.PaymentMethod = method.String
	}
	if completedAt.Valid {
		o.CompletedAt = &completedAt.Time
	}
	return o, nil
}

func (r *postgresRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, item_id, seller_id, is_consignment,
		       price_at_purchase, seller_payout, store_commission, platform_fee,
		       created_at
		FROM order_items WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []*OrderItem
	for rows.Next() {
		item := &OrderItem{}
		var sellerID sql.NullString
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ItemID, &sellerID, &item.IsConsignment,
			&item.PriceAtPurchase, &item.SellerPayout, &item.StoreCommission,
			&item.PlatformFee, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if sellerID.Valid {
			id, _ := uuid.Parse(sellerID.String)
			item.SellerID = &id
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
