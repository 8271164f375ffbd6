package ledger

import "context"

// Repository defines read-side access to the transactions ledger. Writes and
// status transitions happen inside the order engine's atomic units; this
// module only reports on them.
type Repository interface {
	ListBySeller(ctx context.Context, sellerID string, status string) ([]*Transaction, error)
	ListByStore(ctx context.Context, storeID string, status string) ([]*Transaction, error)
	ListByOrder(ctx context.Context, orderID string) ([]*Transaction, error)
	SellerSummary(ctx context.Context, sellerID string) (*SellerSummary, error)
	StoreSummary(ctx context.Context, storeID string) (*StoreSummary, error)
}
