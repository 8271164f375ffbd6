package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloem-market/bloem-backend/internal/modules/catalog"
)

var (
	ErrStoreNotFound  = errors.New("store not found")
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDropoffNotPending is returned when an accept/reject decision targets
	// an item that is not waiting at this store.
	ErrDropoffNotPending = errors.New("item is not a pending drop-off at this store")
)

// Service defines store business logic, including drop-off decisions: a store
// accepting a drop-off puts the item on sale, rejecting it removes it.
type Service interface {
	CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, id string) (*Store, error)
	ListStores(ctx context.Context, activeOnly bool) ([]*Store, error)
	UpdateStore(ctx context.Context, id string, req UpdateStoreRequest) (*Store, error)
	AcceptDropoff(ctx context.Context, storeID, itemID string) (*catalog.Item, error)
	RejectDropoff(ctx context.Context, storeID, itemID string) (*catalog.Item, error)
}

type service struct {
	repo  Repository
	items catalog.Repository
}

func NewService(repo Repository, items catalog.Repository) Service {
	return &service{repo: repo, items: items}
}

func (s *service) CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	rate, err := decimal.NewFromString(req.CommissionRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: commission_rate must be between 0 and 1", ErrInvalidRequest)
	}

	st := &Store{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		Address:        req.Address,
		City:           req.City,
		Phone:          req.Phone,
		Email:          req.Email,
		CommissionRate: rate,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return st, nil
}

func (s *service) GetStore(ctx context.Context, id string) (*Store, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListStores(ctx context.Context, activeOnly bool) ([]*Store, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) UpdateStore(ctx context.Context, id string, req UpdateStoreRequest) (*Store, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		st.Name = req.Name
	}
	if req.Description != "" {
		st.Description = req.Description
	}
	if req.Address != "" {
		st.Address = req.Address
	}
	if req.City != "" {
		st.City = req.City
	}
	if req.Phone != "" {
		st.Phone = req.Phone
	}
	if req.Email != "" {
		st.Email = req.Email
	}
	if req.CommissionRate != "" {
		rate, err := decimal.NewFromString(req.CommissionRate)
		if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%w: commission_rate must be between 0 and 1", ErrInvalidRequest)
		}
		st.CommissionRate = rate
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}
	return st, nil
}

func (s *service) AcceptDropoff(ctx context.Context, storeID, itemID string) (*catalog.Item, error) {
	return s.decideDropoff(ctx, storeID, itemID, catalog.StatusForSale)
}

func (s *service) RejectDropoff(ctx context.Context, storeID, itemID string) (*catalog.Item, error) {
	return s.decideDropoff(ctx, storeID, itemID, catalog.StatusRemoved)
}

func (s *service) decideDropoff(ctx context.Context, storeID, itemID string, to catalog.ItemStatus) (*catalog.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.StoreID.String() != storeID {
		return nil, ErrDropoffNotPending
	}
	// Conditional update: the pending check and the transition are one
	// statement, so a concurrent decision loses cleanly.
	changed, err := s.items.UpdateStatus(ctx, itemID, catalog.StatusPendingDropoff, to)
	if err != nil {
		return nil, fmt.Errorf("update item status: %w", err)
	}
	if !changed {
		return nil, ErrDropoffNotPending
	}
	return s.items.GetByID(ctx, itemID)
}
