package order

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bloem-market/bloem-backend/internal/database"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	// ErrItemsUnavailable covers deleted items, ids that never existed, and
	// items reserved or sold by a concurrent buyer. No partial order is ever
	// created.
	ErrItemsUnavailable = errors.New("one or more items are no longer available")
	// ErrCrossStoreOrder rejects orders mixing inventory from two stores:
	// pickup happens at one physical location.
	ErrCrossStoreOrder   = errors.New("order may not mix items from different stores")
	ErrStoreNotFound     = errors.New("store not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidOrderState = errors.New("order is not in a valid state for this operation")
)

// Service defines the order engine: reserving a buyer's item selection as an
// order, and later finalizing or voiding the reservation.
type Service interface {
	// CreateOrder atomically converts the selected items into a RESERVED
	// order with frozen pricing, or fails entirely.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)

	GetOrder(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error)
	GetOrderByPaymentIntent(ctx context.Context, intentID string) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)

	// AttachPaymentIntent records the external payment reference on the order.
	AttachPaymentIntent(ctx context.Context, orderID, intentID string) error

	// CancelOrder voids a reservation. Cancelling an already-cancelled order
	// is a no-op success.
	CancelOrder(ctx context.Context, id string) (*Order, error)

	// FinalizeOrder completes a RESERVED order after payment settled.
	FinalizeOrder(ctx context.Context, id, paymentMethod string) (*Order, error)
}

type service struct {
	repo            Repository
	platformFeeRate decimal.Decimal
}

func NewService(repo Repository, platformFeeRate decimal.Decimal) Service {
	return &service{repo: repo, platformFeeRate: platformFeeRate}
}

func (s *service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	buyerID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user_id", ErrInvalidRequest)
	}
	if len(req.ItemIDs) == 0 {
		return nil, fmt.Errorf("%w: item_ids must not be empty", ErrInvalidRequest)
	}

	ids := make([]uuid.UUID, 0, len(req.ItemIDs))
	seen := make(map[uuid.UUID]bool, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid item id %q", ErrInvalidRequest, raw)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate item id %s", ErrInvalidRequest, id)
		}
		seen[id] = true
		ids = append(ids, id)
	}

	items, err := s.repo.GetSaleItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	if len(items) != len(ids) {
		return nil, ErrItemsUnavailable
	}

	// All items must belong to one store: the explicit one if given, the
	// first item's otherwise.
	storeID := items[0].StoreID
	if req.StoreID != "" {
		storeID, err = uuid.Parse(req.StoreID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid store_id", ErrInvalidRequest)
		}
	}
	for _, item := range items {
		if item.StoreID != storeID {
			return nil, ErrCrossStoreOrder
		}
	}

	commissionRate, err := s.repo.GetStoreCommission(ctx, storeID)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:         uuid.New(),
		Status:     StatusReserved,
		BuyerID:    buyerID,
		StoreID:    storeID,
		ServiceFee: decimal.Zero,
		Tax:        decimal.Zero,
	}
	subtotal := decimal.Zero
	for _, item := range items {
		sp := computeSplit(item.Price, commissionRate, s.platformFeeRate, item.IsConsignment)
		o.Items = append(o.Items, &OrderItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			ItemID:          item.ID,
			SellerID:        item.SellerID,
			IsConsignment:   item.IsConsignment,
			PriceAtPurchase: item.Price,
			SellerPayout:    sp.sellerPayout,
			StoreCommission: sp.storeCommission,
			PlatformFee:     sp.platformFee,
		})
		subtotal = subtotal.Add(item.Price)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.ServiceFee).Add(o.Tax)

	// Order numbers collide with vanishing probability; regenerate on a
	// unique violation instead of failing the checkout.
	for attempt := 0; ; attempt++ {
		o.OrderNumber = generateOrderNumber()
		err = s.repo.Create(ctx, o)
		if database.IsUniqueViolation(err) && attempt < 2 {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, o.ID.String())
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetOrderByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return s.repo.GetByNumber(ctx, orderNumber)
}

func (s *service) GetOrderByPaymentIntent(ctx context.Context, intentID string) (*Order, error) {
	return s.repo.GetByPaymentIntent(ctx, intentID)
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) AttachPaymentIntent(ctx context.Context, orderID, intentID string) error {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return ErrOrderNotFound
	}
	return s.repo.AttachPaymentIntent(ctx, id, intentID)
}

func (s *service) CancelOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case StatusCancelled:
		return o, nil
	case StatusCompleted:
		return nil, fmt.Errorf("%w: order is already completed", ErrInvalidOrderState)
	}
	if err := s.repo.Cancel(ctx, o); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) FinalizeOrder(ctx context.Context, id, paymentMethod string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusReserved {
		return nil, fmt.Errorf("%w: expected RESERVED, got %s", ErrInvalidOrderState, o.Status)
	}
	if err := s.repo.Finalize(ctx, o, paymentMethod, time.Now()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// ── split computation ────────────────────────────────────────────────────────

type split struct {
	sellerPayout    decimal.Decimal
	storeCommission decimal.Decimal
	platformFee     decimal.Decimal
}

// computeSplit derives the per-item money split at purchase time. Consignment
// proceeds divide between platform fee, store commission, and seller payout.
// Store-owned stock keeps everything: the platform takes no cut there.
func computeSplit(price, commissionRate, platformFeeRate decimal.Decimal, consignment bool) split {
	if !consignment {
		return split{
			sellerPayout:    decimal.Zero,
			storeCommission: decimal.Zero,
			platformFee:     decimal.Zero,
		}
	}
	fee := price.Mul(platformFeeRate).Round(2)
	commission := price.Mul(commissionRate).Round(2)
	return split{
		sellerPayout:    price.Sub(commission).Sub(fee),
		storeCommission: commission,
		platformFee:     fee,
	}
}

// generateOrderNumber builds a human-readable order number:
// BLM-<base36 timestamp>-<4 base36 chars>, uppercased.
func generateOrderNumber() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return strings.ToUpper(fmt.Sprintf("BLM-%s-%s", ts, suffix))
}
