package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound = errors.New("item not found")
	// ErrItemLocked is returned when a listing edit is attempted while the
	// item is reserved or sold.
	ErrItemLocked     = errors.New("item is reserved or sold and can no longer be edited")
	ErrInvalidRequest = errors.New("invalid request")
)

// Service defines catalog business logic. Status transitions are not exposed
// here: drop-off decisions go through the store module and commerce
// transitions (reserve/sell/restore) through the order module.
type Service interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context, filter ListFilter) ([]*Item, error)
	UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*Item, error)
	RemoveItem(ctx context.Context, id string) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() || price.IsZero() {
		return nil, fmt.Errorf("%w: price must be a positive decimal", ErrInvalidRequest)
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid store_id", ErrInvalidRequest)
	}

	item := &Item{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Category:    req.Category,
		Size:        req.Size,
		Condition:   req.Condition,
		Brand:       req.Brand,
		Color:       req.Color,
		Images:      req.Images,
		StoreID:     storeID,
	}

	// Seller drop-offs wait for the store to accept them; store-owned stock
	// goes straight on sale.
	if req.SellerID != "" {
		sellerID, err := uuid.Parse(req.SellerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid seller_id", ErrInvalidRequest)
		}
		item.SellerID = &sellerID
		item.IsConsignment = true
		item.Status = StatusPendingDropoff
	} else {
		item.Status = StatusForSale
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListItems(ctx context.Context, filter ListFilter) ([]*Item, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == StatusReserved || item.Status == StatusSold {
		return nil, ErrItemLocked
	}

	if req.Title != "" {
		item.Title = req.Title
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() || price.IsZero() {
			return nil, fmt.Errorf("%w: price must be a positive decimal", ErrInvalidRequest)
		}
		item.Price = price
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Size != "" {
		item.Size = req.Size
	}
	if req.Condition != "" {
		item.Condition = req.Condition
	}
	if req.Brand != "" {
		item.Brand = req.Brand
	}
	if req.Color != "" {
		item.Color = req.Color
	}
	if req.Images != nil {
		item.Images = req.Images
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, id string) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(item.Status, StatusRemoved) {
		return ErrItemLocked
	}
	changed, err := s.repo.UpdateStatus(ctx, id, item.Status, StatusRemoved)
	if err != nil {
		return err
	}
	if !changed {
		return ErrItemLocked
	}
	return nil
}
