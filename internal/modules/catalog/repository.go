package catalog

import "context"

// Repository defines data access for catalog items.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, filter ListFilter) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
	// UpdateStatus conditionally moves an item from one status to another and
	// reports whether the row actually changed.
	UpdateStatus(ctx context.Context, id string, from, to ItemStatus) (bool, error)
}
