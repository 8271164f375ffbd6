package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	// StatusReserved means the items are held for in-store pickup while
	// payment is pending.
	StatusReserved  OrderStatus = "RESERVED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Order is a buyer's reservation of one or more items at a single store.
// Totals are frozen at creation; service fee and tax are carried as zero so
// they stay addable without a schema change.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Status          OrderStatus     `json:"status"`
	BuyerID         uuid.UUID       `json:"buyer_id"`
	StoreID         uuid.UUID       `json:"store_id"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ServiceFee      decimal.Decimal `json:"service_fee"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Items           []*OrderItem    `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// OrderItem snapshots one item at purchase time. PriceAtPurchase and the
// splits are never recomputed from the live item after creation.
type OrderItem struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	ItemID          uuid.UUID       `json:"item_id"`
	SellerID        *uuid.UUID      `json:"seller_id,omitempty"`
	IsConsignment   bool            `json:"is_consignment"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	SellerPayout    decimal.Decimal `json:"seller_payout"`
	StoreCommission decimal.Decimal `json:"store_commission"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SaleItem is the projection of a FOR_SALE catalog item the engine prices
// against.
type SaleItem struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	SellerID      *uuid.UUID
	Price         decimal.Decimal
	IsConsignment bool
}

// CreateOrderRequest is the payload for reserving items.
type CreateOrderRequest struct {
	UserID  string   `json:"user_id"`
	ItemIDs []string `json:"item_ids"`
	StoreID string   `json:"store_id,omitempty"`
}

// ListFilter narrows order listings.
type ListFilter struct {
	BuyerID string
	StoreID string
	Status  string
}
