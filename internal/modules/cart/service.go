package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bloem-market/bloem-backend/internal/modules/catalog"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrItemNotFound     = errors.New("item not found")
	ErrItemUnavailable  = errors.New("item is not for sale")
	ErrAlreadyInCart    = errors.New("item is already in the cart")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// Service defines cart business logic.
type Service interface {
	List(ctx context.Context, userID string) ([]*CartLine, error)
	Add(ctx context.Context, req AddRequest) (*CartItem, error)
	Remove(ctx context.Context, userID, cartItemID string) error
	Clear(ctx context.Context, userID string) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) List(ctx context.Context, userID string) ([]*CartLine, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	return s.repo.List(ctx, userID)
}

func (s *service) Add(ctx context.Context, req AddRequest) (*CartItem, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user_id", ErrInvalidRequest)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid item_id", ErrInvalidRequest)
	}

	status, err := s.repo.GetItemStatus(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if status != catalog.StatusForSale {
		return nil, fmt.Errorf("%w (status %s)", ErrItemUnavailable, status)
	}

	ci := &CartItem{
		ID:     uuid.New(),
		UserID: userID,
		ItemID: itemID,
	}
	if err := s.repo.Add(ctx, ci); err != nil {
		return nil, err
	}
	return ci, nil
}

func (s *service) Remove(ctx context.Context, userID, cartItemID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	return s.repo.Remove(ctx, userID, cartItemID)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	return s.repo.Clear(ctx, userID)
}
