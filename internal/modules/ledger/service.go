package ledger

import (
	"context"
	"errors"
)

var (
	ErrSellerNotFound = errors.New("seller not found")
	ErrStoreNotFound  = errors.New("store not found")
)

// Service exposes ledger reporting. Aggregations are read-side folds over
// transactions; nothing here mutates money.
type Service interface {
	SellerTransactions(ctx context.Context, sellerID string, status string) ([]*Transaction, error)
	StoreTransactions(ctx context.Context, storeID string, status string) ([]*Transaction, error)
	OrderTransactions(ctx context.Context, orderID string) ([]*Transaction, error)
	SellerSummary(ctx context.Context, sellerID string) (*SellerSummary, error)
	StoreSummary(ctx context.Context, storeID string) (*StoreSummary, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) SellerTransactions(ctx context.Context, sellerID string, status string) ([]*Transaction, error) {
	return s.repo.ListBySeller(ctx, sellerID, status)
}

func (s *service) StoreTransactions(ctx context.Context, storeID string, status string) ([]*Transaction, error) {
	return s.repo.ListByStore(ctx, storeID, status)
}

func (s *service) OrderTransactions(ctx context.Context, orderID string) ([]*Transaction, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) SellerSummary(ctx context.Context, sellerID string) (*SellerSummary, error) {
	return s.repo.SellerSummary(ctx, sellerID)
}

func (s *service) StoreSummary(ctx context.Context, storeID string) (*StoreSummary, error) {
	return s.repo.StoreSummary(ctx, storeID)
}
