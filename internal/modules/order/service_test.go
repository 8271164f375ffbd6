package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── in-memory repository ─────────────────────────────────────────────────────

type memTx struct {
	orderID       uuid.UUID
	itemID        uuid.UUID
	sellerID      uuid.UUID
	amount        decimal.Decimal
	sellerPayout  decimal.Decimal
	commission    decimal.Decimal
	platformFee   decimal.Decimal
	status        string
	isConsignment bool
}

type memItem struct {
	sale   SaleItem
	status string
}

type memRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]*memItem
	commission map[uuid.UUID]decimal.Decimal
	orders     map[uuid.UUID]*Order
	txs        []*memTx
	cart       map[uuid.UUID]map[uuid.UUID]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		items:      make(map[uuid.UUID]*memItem),
		commission: make(map[uuid.UUID]decimal.Decimal),
		orders:     make(map[uuid.UUID]*Order),
		cart:       make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (r *memRepo) addStore(rate string) uuid.UUID {
	id := uuid.New()
	r.commission[id] = decimal.RequireFromString(rate)
	return id
}

func (r *memRepo) addItem(storeID uuid.UUID, sellerID *uuid.UUID, price string, consignment bool) uuid.UUID {
	id := uuid.New()
	r.items[id] = &memItem{
		sale: SaleItem{
			ID:            id,
			StoreID:       storeID,
			SellerID:      sellerID,
			Price:         decimal.RequireFromString(price),
			IsConsignment: consignment,
		},
		status: "FOR_SALE",
	}
	return id
}

func (r *memRepo) addToCart(userID, itemID uuid.UUID) {
	if r.cart[userID] == nil {
		r.cart[userID] = make(map[uuid.UUID]bool)
	}
	r.cart[userID][itemID] = true
}

func (r *memRepo) itemStatus(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].status
}

func (r *memRepo) GetSaleItems(_ context.Context, ids []uuid.UUID) ([]*SaleItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*SaleItem
	for _, id := range ids {
		if item, ok := r.items[id]; ok && item.status == "FOR_SALE" {
			sale := item.sale
			out = append(out, &sale)
		}
	}
	return out, nil
}

func (r *memRepo) GetStoreCommission(_ context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate, ok := r.commission[storeID]
	if !ok {
		return decimal.Zero, ErrStoreNotFound
	}
	return rate, nil
}

// Create mirrors the conditional-update semantics of the SQL repository: every
// item must still be FOR_SALE when the reservation lands, or nothing changes.
func (r *memRepo) Create(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, oi := range o.Items {
		item, ok := r.items[oi.ItemID]
		if !ok || item.status != "FOR_SALE" {
			return ErrItemsUnavailable
		}
	}
	for _, oi := range o.Items {
		r.items[oi.ItemID].status = "RESERVED"
		if oi.IsConsignment && oi.SellerID != nil {
			r.txs = append(r.txs, &memTx{
				orderID:       o.ID,
				itemID:        oi.ItemID,
				sellerID:      *oi.SellerID,
				amount:        oi.PriceAtPurchase,
				sellerPayout:  oi.SellerPayout,
				commission:    oi.StoreCommission,
				platformFee:   oi.PlatformFee,
				status:        "PENDING",
				isConsignment: true,
			})
		}
		delete(r.cart[o.BuyerID], oi.ItemID)
	}
	stored := *o
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.orders[o.ID] = &stored
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	o, ok := r.orders[uid]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (r *memRepo) GetByNumber(_ context.Context, orderNumber string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *memRepo) GetByPaymentIntent(_ context.Context, intentID string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.PaymentIntentID == intentID {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *memRepo) List(_ context.Context, filter ListFilter) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Order
	for _, o := range r.orders {
		if filter.BuyerID != "" && o.BuyerID.String() != filter.BuyerID {
			continue
		}
		if filter.StoreID != "" && o.StoreID.String() != filter.StoreID {
			continue
		}
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *memRepo) AttachPaymentIntent(_ context.Context, orderID uuid.UUID, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o.PaymentIntentID = intentID
	return nil
}

func (r *memRepo) Cancel(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok || stored.Status != StatusReserved {
		return ErrInvalidOrderState
	}
	stored.Status = StatusCancelled
	for _, oi := range stored.Items {
		if item, ok := r.items[oi.ItemID]; ok && item.status == "RESERVED" {
			item.status = "FOR_SALE"
		}
	}
	for _, tx := range r.txs {
		if tx.orderID == o.ID {
			tx.status = "CANCELLED"
		}
	}
	return nil
}

func (r *memRepo) Finalize(_ context.Context, o *Order, paymentMethod string, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok || stored.Status != StatusReserved {
		return ErrInvalidOrderState
	}
	stored.Status = StatusCompleted
	stored.PaymentMethod = paymentMethod
	stored.CompletedAt = &when
	for _, oi := range stored.Items {
		if item, ok := r.items[oi.ItemID]; ok && item.status == "RESERVED" {
			item.status = "SOLD"
		}
	}
	for _, tx := range r.txs {
		if tx.orderID == o.ID && tx.status == "PENDING" {
			tx.status = "COMPLETED"
		}
	}
	return nil
}

func (r *memRepo) ListStaleReserved(_ context.Context, cutoff time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, o := range r.orders {
		if o.Status == StatusReserved && o.PaymentIntentID == "" && o.CreatedAt.Before(cutoff) {
			ids = append(ids, o.ID.String())
		}
	}
	return ids, nil
}

func (r *memRepo) orderTxs(orderID uuid.UUID) []*memTx {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*memTx
	for _, tx := range r.txs {
		if tx.orderID == orderID {
			out = append(out, tx)
		}
	}
	return out
}

// ── tests ────────────────────────────────────────────────────────────────────

func feeRate() decimal.Decimal { return decimal.RequireFromString("0.05") }

func TestCreateOrderFreezesPricingAndSplits(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	sellerID := uuid.New()
	itemID := repo.addItem(storeID, &sellerID, "100.00", true)
	buyerID := uuid.New()
	repo.addToCart(buyerID, itemID)

	svc := NewService(repo, feeRate())
	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  buyerID.String(),
		ItemIDs: []string{itemID.String()},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if o.Status != StatusReserved {
		t.Errorf("status = %s, want %s", o.Status, StatusReserved)
	}
	if !o.Subtotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("subtotal = %s, want 100.00", o.Subtotal)
	}
	if !o.Total.Equal(o.Subtotal.Add(o.ServiceFee).Add(o.Tax)) {
		t.Errorf("total = %s does not equal subtotal+fee+tax", o.Total)
	}
	if len(o.Items) != 1 {
		t.Fatalf("got %d order items, want 1", len(o.Items))
	}

	oi := o.Items[0]
	if !oi.PlatformFee.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("platform fee = %s, want 5.00", oi.PlatformFee)
	}
	if !oi.StoreCommission.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("store commission = %s, want 20.00", oi.StoreCommission)
	}
	if !oi.SellerPayout.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("seller payout = %s, want 75.00", oi.SellerPayout)
	}

	if got := repo.itemStatus(itemID); got != "RESERVED" {
		t.Errorf("item status = %s, want RESERVED", got)
	}
	if repo.cart[buyerID][itemID] {
		t.Error("item still in buyer's cart after checkout")
	}

	txs := repo.orderTxs(o.ID)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].status != "PENDING" {
		t.Errorf("transaction status = %s, want PENDING", txs[0].status)
	}
	if !txs[0].sellerPayout.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("transaction payout = %s, want 75.00", txs[0].sellerPayout)
	}
}

func TestCreateOrderStoreOwnedKeepsFullPrice(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	itemID := repo.addItem(storeID, nil, "45.50", false)

	svc := NewService(repo, feeRate())
	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  uuid.NewString(),
		ItemIDs: []string{itemID.String()},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	oi := o.Items[0]
	for name, v := range map[string]decimal.Decimal{
		"seller payout":    oi.SellerPayout,
		"store commission": oi.StoreCommission,
		"platform fee":     oi.PlatformFee,
	} {
		if !v.IsZero() {
			t.Errorf("%s = %s, want 0 for store-owned stock", name, v)
		}
	}
	if len(repo.orderTxs(o.ID)) != 0 {
		t.Error("store-owned sale must not open a ledger transaction")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	itemID := repo.addItem(storeID, nil, "10.00", false)
	svc := NewService(repo, feeRate())

	tests := []struct {
		name string
		req  CreateOrderRequest
	}{
		{"bad user id", CreateOrderRequest{UserID: "nope", ItemIDs: []string{itemID.String()}}},
		{"empty items", CreateOrderRequest{UserID: uuid.NewString(), ItemIDs: nil}},
		{"bad item id", CreateOrderRequest{UserID: uuid.NewString(), ItemIDs: []string{"nope"}}},
		{"duplicate item", CreateOrderRequest{
			UserID:  uuid.NewString(),
			ItemIDs: []string{itemID.String(), itemID.String()},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateOrder(context.Background(), tt.req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}

	if got := repo.itemStatus(itemID); got != "FOR_SALE" {
		t.Errorf("item status mutated to %s by rejected requests", got)
	}
}

func TestCreateOrderUnavailableItem(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	sold := repo.addItem(storeID, nil, "10.00", false)
	repo.items[sold].status = "SOLD"
	available := repo.addItem(storeID, nil, "10.00", false)

	svc := NewService(repo, feeRate())
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  uuid.NewString(),
		ItemIDs: []string{sold.String(), available.String()},
	})
	if !errors.Is(err, ErrItemsUnavailable) {
		t.Fatalf("err = %v, want ErrItemsUnavailable", err)
	}
	if got := repo.itemStatus(available); got != "FOR_SALE" {
		t.Errorf("available item became %s; failed checkout must not touch it", got)
	}
}

func TestCreateOrderRejectsCrossStoreMix(t *testing.T) {
	repo := newMemRepo()
	storeA := repo.addStore("0.20")
	storeB := repo.addStore("0.30")
	itemA := repo.addItem(storeA, nil, "10.00", false)
	itemB := repo.addItem(storeB, nil, "10.00", false)

	svc := NewService(repo, feeRate())
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  uuid.NewString(),
		ItemIDs: []string{itemA.String(), itemB.String()},
	})
	if !errors.Is(err, ErrCrossStoreOrder) {
		t.Fatalf("err = %v, want ErrCrossStoreOrder", err)
	}
	if len(repo.orders) != 0 {
		t.Error("rejected order was persisted")
	}
	for _, id := range []uuid.UUID{itemA, itemB} {
		if got := repo.itemStatus(id); got != "FOR_SALE" {
			t.Errorf("item %s became %s", id, got)
		}
	}
}

func TestConcurrentCheckoutHasOneWinner(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	sellerID := uuid.New()
	itemID := repo.addItem(storeID, &sellerID, "60.00", true)
	svc := NewService(repo, feeRate())

	const buyers = 8
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), CreateOrderRequest{
				UserID:  uuid.NewString(),
				ItemIDs: []string{itemID.String()},
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrItemsUnavailable):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("%d buyers won the item, want exactly 1", won)
	}
	if got := repo.itemStatus(itemID); got != "RESERVED" {
		t.Errorf("item status = %s, want RESERVED", got)
	}
	if len(repo.txs) != 1 {
		t.Errorf("got %d ledger transactions, want 1", len(repo.txs))
	}
}

func TestCancelOrderRestoresItems(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	sellerID := uuid.New()
	itemID := repo.addItem(storeID, &sellerID, "30.00", true)
	svc := NewService(repo, feeRate())

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  uuid.NewString(),
		ItemIDs: []string{itemID.String()},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	cancelled, err := svc.CancelOrder(context.Background(), o.ID.String())
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %s, want %s", cancelled.Status, StatusCancelled)
	}
	if got := repo.itemStatus(itemID); got != "FOR_SALE" {
		t.Errorf("item status = %s, want FOR_SALE", got)
	}
	if txs := repo.orderTxs(o.ID); len(txs) != 1 || txs[0].status != "CANCELLED" {
		t.Errorf("ledger transaction not cancelled: %+v", txs)
	}

	// Cancelling again is a no-op success.
	again, err := svc.CancelOrder(context.Background(), o.ID.String())
	if err != nil {
		t.Fatalf("second CancelOrder: %v", err)
	}
	if again.Status != StatusCancelled {
		t.Errorf("second cancel status = %s", again.Status)
	}
}

func TestCancelCompletedOrderFails(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	itemID := repo.addItem(storeID, nil, "30.00", false)
	svc := NewService(repo, feeRate())

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  uuid.NewString(),
		ItemIDs: []string{itemID.String()},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if _, err := svc.FinalizeOrder(context.Background(), o.ID.String(), "card"); err != nil {
		t.Fatalf("FinalizeOrder: %v", err)
	}

	if _, err := svc.CancelOrder(context.Background(), o.ID.String()); !errors.Is(err, ErrInvalidOrderState) {
		t.Fatalf("err = %v, want ErrInvalidOrderState", err)
	}
	if got := repo.itemStatus(itemID); got != "SOLD" {
		t.Errorf("item status = %s, want SOLD", got)
	}
}

func TestCancelThenRepurchase(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	sellerID := uuid.New()
	itemID := repo.addItem(storeID, &sellerID, "25.00", true)
	svc := NewService(repo, feeRate())

	first, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  uuid.NewString(),
		ItemIDs: []string{itemID.String()},
	})
	if err != nil {
		t.Fatalf("first CreateOrder: %v", err)
	}
	if _, err := svc.CancelOrder(context.Background(), first.ID.String()); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}

	second, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  uuid.NewString(),
		ItemIDs: []string{itemID.String()},
	})
	if err != nil {
		t.Fatalf("second CreateOrder after cancel: %v", err)
	}
	if second.ID == first.ID {
		t.Error("repurchase reused the cancelled order")
	}
	if got := repo.itemStatus(itemID); got != "RESERVED" {
		t.Errorf("item status = %s, want RESERVED", got)
	}
}

func TestFinalizeOrderSettlesLedger(t *testing.T) {
	repo := newMemRepo()
	storeID := repo.addStore("0.20")
	sellerID := uuid.New()
	itemID := repo.addItem(storeID, &sellerID, "80.00", true)
	svc := NewService(repo, feeRate())

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		UserID:  uuid.NewString(),
		ItemIDs: []string{itemID.String()},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	done, err := svc.FinalizeOrder(context.Background(), o.ID.String(), "card")
	if err != nil {
		t.Fatalf("FinalizeOrder: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", done.Status, StatusCompleted)
	}
	if done.PaymentMethod != "card" {
		t.Errorf("payment method = %q, want card", done.PaymentMethod)
	}
	if done.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if got := repo.itemStatus(itemID); got != "SOLD" {
		t.Errorf("item status = %s, want SOLD", got)
	}
	if txs := repo.orderTxs(o.ID); len(txs) != 1 || txs[0].status != "COMPLETED" {
		t.Errorf("ledger transaction not completed: %+v", txs)
	}

	// A cancelled or completed order cannot be finalized again.
	if _, err := svc.FinalizeOrder(context.Background(), o.ID.String(), "card"); !errors.Is(err, ErrInvalidOrderState) {
		t.Errorf("second finalize err = %v, want ErrInvalidOrderState", err)
	}
}

func TestComputeSplitRounding(t *testing.T) {
	price := decimal.RequireFromString("33.33")
	sp := computeSplit(price, decimal.RequireFromString("0.15"), feeRate(), true)

	if !sp.platformFee.Equal(decimal.RequireFromString("1.67")) {
		t.Errorf("platform fee = %s, want 1.67", sp.platformFee)
	}
	if !sp.storeCommission.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("commission = %s, want 5.00", sp.storeCommission)
	}
	sum := sp.sellerPayout.Add(sp.storeCommission).Add(sp.platformFee)
	if !sum.Equal(price) {
		t.Errorf("split parts sum to %s, want %s", sum, price)
	}
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	n := generateOrderNumber()
	if !strings.HasPrefix(n, "BLM-") {
		t.Fatalf("order number %q missing BLM- prefix", n)
	}
	if n != strings.ToUpper(n) {
		t.Errorf("order number %q is not uppercase", n)
	}
	parts := strings.Split(n, "-")
	if len(parts) != 3 || len(parts[2]) != 4 {
		t.Errorf("order number %q does not match BLM-<ts>-<4 chars>", n)
	}
}
