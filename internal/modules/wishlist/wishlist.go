package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrItemNotFound   = errors.New("item not found")
	ErrAlreadySaved   = errors.New("item is already on the wishlist")
	ErrEntryNotFound  = errors.New("wishlist entry not found")
)

// Entry links a user to an item they saved for later.
type Entry struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	ItemID  uuid.UUID `json:"item_id"`
	AddedAt time.Time `json:"added_at"`
}

// Line is an entry joined with its listing. Saved items stay on the list even
// after selling; Available tells the client whether it can still be bought.
type Line struct {
	Entry
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	Available bool            `json:"available"`
}

// AddRequest is the payload for saving an item.
type AddRequest struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`
}

// Repository defines data access for wishlist entries.
type Repository interface {
	List(ctx context.Context, userID string) ([]*Line, error)
	Add(ctx context.Context, e *Entry) error
	Remove(ctx context.Context, userID, entryID string) error
}

// Service defines wishlist business logic.
type Service interface {
	List(ctx context.Context, userID string) ([]*Line, error)
	Add(ctx context.Context, req AddRequest) (*Entry, error)
	Remove(ctx context.Context, userID, entryID string) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) List(ctx context.Context, userID string) ([]*Line, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	return s.repo.List(ctx, userID)
}

func (s *service) Add(ctx context.Context, req AddRequest) (*Entry, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user_id", ErrInvalidRequest)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid item_id", ErrInvalidRequest)
	}
	e := &Entry{ID: uuid.New(), UserID: userID, ItemID: itemID}
	if err := s.repo.Add(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Remove(ctx context.Context, userID, entryID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	return s.repo.Remove(ctx, userID, entryID)
}
