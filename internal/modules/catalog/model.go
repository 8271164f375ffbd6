package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the lifecycle state of an item.
//
//	PENDING_DROPOFF --(store accepts)--> FOR_SALE
//	PENDING_DROPOFF --(store rejects)--> REMOVED
//	FOR_SALE        --(order created)--> RESERVED
//	RESERVED        --(payment ok)-----> SOLD
//	RESERVED        --(order cancelled)-> FOR_SALE
type ItemStatus string

const (
	StatusPendingDropoff ItemStatus = "PENDING_DROPOFF"
	StatusForSale        ItemStatus = "FOR_SALE"
	StatusReserved       ItemStatus = "RESERVED"
	StatusSold           ItemStatus = "SOLD"
	StatusRemoved        ItemStatus = "REMOVED"
)

// validTransitions defines the allowed item status state machine.
var validTransitions = map[ItemStatus][]ItemStatus{
	StatusPendingDropoff: {StatusForSale, StatusRemoved},
	StatusForSale:        {StatusReserved, StatusRemoved},
	StatusReserved:       {StatusSold, StatusForSale},
	StatusSold:           {},
	StatusRemoved:        {},
}

// CanTransition returns true if moving from current to next is allowed.
func CanTransition(current, next ItemStatus) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// Item is a single physical piece of clothing listed at a store. Consignment
// items belong to a seller and split proceeds on sale; store-owned stock has
// no seller.
type Item struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category,omitempty"`
	Size          string          `json:"size,omitempty"`
	Condition     string          `json:"condition,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	Color         string          `json:"color,omitempty"`
	Images        []string        `json:"images,omitempty"`
	Status        ItemStatus      `json:"status"`
	StoreID       uuid.UUID       `json:"store_id"`
	SellerID      *uuid.UUID      `json:"seller_id,omitempty"` // nil for store-owned stock
	IsConsignment bool            `json:"is_consignment"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	SoldAt        *time.Time      `json:"sold_at,omitempty"`
}

// CreateItemRequest is the payload for listing a new item.
type CreateItemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	Category    string   `json:"category,omitempty"`
	Size        string   `json:"size,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Color       string   `json:"color,omitempty"`
	Images      []string `json:"images,omitempty"`
	StoreID     string   `json:"store_id"`
	SellerID    string   `json:"seller_id,omitempty"` // empty for store-owned stock
}

// UpdateItemRequest carries mutable listing fields. Listings may only change
// while the item is not reserved or sold.
type UpdateItemRequest struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	Category    string   `json:"category,omitempty"`
	Size        string   `json:"size,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Color       string   `json:"color,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// ListFilter narrows item listings.
type ListFilter struct {
	StoreID   string
	SellerID  string
	Category  string
	Size      string
	Brand     string
	Condition string
	Status    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
}
