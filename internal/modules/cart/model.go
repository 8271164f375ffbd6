package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem links a user to an item they intend to buy. Items are unique
// physical goods, so there is no quantity.
type CartItem struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	ItemID  uuid.UUID `json:"item_id"`
	AddedAt time.Time `json:"added_at"`
}

// CartLine is a cart item joined with its listing, as returned to clients.
// Stale rows (items no longer FOR_SALE) are filtered at read time rather than
// deleted eagerly.
type CartLine struct {
	CartItem
	Title   string          `json:"title"`
	Price   decimal.Decimal `json:"price"`
	Brand   string          `json:"brand,omitempty"`
	Size    string          `json:"size,omitempty"`
	Images  []string        `json:"images,omitempty"`
	StoreID uuid.UUID       `json:"store_id"`
}

// AddRequest is the payload for adding an item to a cart.
type AddRequest struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`
}
