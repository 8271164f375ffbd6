package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines data access for the order engine. The multi-row write
// sets (Create, Cancel, Finalize) are each a single atomic unit: they either
// apply fully or leave nothing behind.
type Repository interface {
	// GetSaleItems returns the items among ids that are currently FOR_SALE.
	GetSaleItems(ctx context.Context, ids []uuid.UUID) ([]*SaleItem, error)
	// GetStoreCommission returns the store's consignment commission rate.
	GetStoreCommission(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)

	// Create inserts the order and its items, reserves every referenced item
	// with a conditional status update, opens a PENDING ledger transaction per
	// consignment item, and purges the buyer's matching cart rows. A reserve
	// losing the status race fails the whole unit with ErrItemsUnavailable.
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)

	AttachPaymentIntent(ctx context.Context, orderID uuid.UUID, intentID string) error

	// Cancel voids a RESERVED order: items back to FOR_SALE, ledger
	// transactions to CANCELLED.
	Cancel(ctx context.Context, o *Order) error
	// Finalize completes a RESERVED order: items to SOLD, ledger transactions
	// to COMPLETED (inserting any missing consignment rows), leftover cart
	// rows purged.
	Finalize(ctx context.Context, o *Order, paymentMethod string, when time.Time) error

	// ListStaleReserved returns ids of RESERVED orders created before cutoff
	// that have no payment intent attached, for the reservation sweeper. An
	// attached intent means the buyer may be mid-payment in the hosted UI;
	// cancelling under them would strand a charge with no refund path.
	ListStaleReserved(ctx context.Context, cutoff time.Time) ([]string, error)
}
