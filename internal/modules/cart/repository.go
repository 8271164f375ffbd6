package cart

import (
	"context"

	"github.com/bloem-market/bloem-backend/internal/modules/catalog"
)

// Repository defines data access for cart items.
type Repository interface {
	// List returns the user's cart joined with listings, keeping only items
	// that are still FOR_SALE.
	List(ctx context.Context, userID string) ([]*CartLine, error)
	Add(ctx context.Context, ci *CartItem) error
	Remove(ctx context.Context, userID, cartItemID string) error
	Clear(ctx context.Context, userID string) error
	GetItemStatus(ctx context.Context, itemID string) (catalog.ItemStatus, error)
}
