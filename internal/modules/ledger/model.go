package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxStatus represents the lifecycle of a ledger transaction: PENDING until
// the order settles, then COMPLETED, or CANCELLED when the reservation is
// voided. Transitions are enforced by the order engine's conditional write
// sets, not here.
type TxStatus string

const (
	TxPending   TxStatus = "PENDING"
	TxCompleted TxStatus = "COMPLETED"
	TxCancelled TxStatus = "CANCELLED"
)

// Transaction is the durable record of one consignment item's sale proceeds
// split between seller, store, and platform.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	ItemID          uuid.UUID       `json:"item_id"`
	SellerID        uuid.UUID       `json:"seller_id"`
	StoreID         uuid.UUID       `json:"store_id"`
	Amount          decimal.Decimal `json:"amount"`
	SellerEarnings  decimal.Decimal `json:"seller_earnings"`
	StoreCommission decimal.Decimal `json:"store_commission"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	Status          TxStatus        `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SellerSummary folds a seller's transactions into payable totals.
type SellerSummary struct {
	SellerID        uuid.UUID       `json:"seller_id"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	PendingEarnings decimal.Decimal `json:"pending_earnings"`
	ItemsSold       int             `json:"items_sold"`
}

// StoreSummary folds a store's consignment commissions.
type StoreSummary struct {
	StoreID           uuid.UUID       `json:"store_id"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	PendingCommission decimal.Decimal `json:"pending_commission"`
	ItemsSold         int             `json:"items_sold"`
}
