// internal/services/webhook_service_test.go
package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ideabay/ideabay-backend/internal/config"
	"github.com/ideabay/ideabay-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Idea{}, &models.Purchase{}))
	return db
}

// fakeGateway is an in-memory CheckoutGateway. GetCheckout serves the
// checkouts map and fails for ids listed in failing.
type fakeGateway struct {
	checkouts map[string]*Checkout
	failing   map[string]bool
	created   []*CheckoutRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		checkouts: make(map[string]*Checkout),
		failing:   make(map[string]bool),
	}
}

func (f *fakeGateway) CreateCheckout(ctx context.Context, req *CheckoutRequest, callerIP string) (*Checkout, error) {
	f.created = append(f.created, req)
	id := fmt.Sprintf("co_%d", len(f.created))
	checkout := &Checkout{
		ID:            id,
		SettleCoin:    req.SettleCoin,
		SettleNetwork: req.SettleNetwork,
		SettleAmount:  req.SettleAmount,
		SettleAddress: req.SettleAddress,
	}
	f.checkouts[id] = checkout
	return checkout, nil
}

func (f *fakeGateway) GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error) {
	if f.failing[checkoutID] {
		return nil, &GatewayError{Op: "get checkout", Message: "upstream unavailable"}
	}
	if checkout, ok := f.checkouts[checkoutID]; ok {
		return checkout, nil
	}
	return &Checkout{ID: checkoutID}, nil
}

func (f *fakeGateway) GetShift(ctx context.Context, shiftID string) (*Shift, error) {
	return &Shift{ID: shiftID, Status: "settled"}, nil
}

func seedIdea(t *testing.T, db *gorm.DB) *models.Idea {
	seller := &models.User{Username: fmt.Sprintf("seller-%s", uuid.NewString()[:8]), Email: fmt.Sprintf("%s@example.com", uuid.NewString()[:8]), PasswordHash: "x"}
	require.NoError(t, db.Create(seller).Error)

	idea := &models.Idea{
		Title:               "Cross-chain lending aggregator",
		Categories:          []string{"DeFi"},
		Preview:             "Aggregate lending rates across chains.",
		FullContent:         "Full writeup of the aggregator design.",
		Price:               10.00,
		SellerID:            seller.ID,
		SellerWalletAddress: "0x1111111111111111111111111111111111111111",
		PreferredChain:      models.ChainEthereum,
		Status:              models.IdeaStatusLive,
	}
	require.NoError(t, db.Create(idea).Error)
	return idea
}

func seedPendingPurchase(t *testing.T, db *gorm.DB, ideaID uuid.UUID, checkoutID string, createdAt time.Time) *models.Purchase {
	buyer := &models.User{Username: fmt.Sprintf("buyer-%s", uuid.NewString()[:8]), Email: fmt.Sprintf("%s@example.com", uuid.NewString()[:8]), PasswordHash: "x"}
	require.NoError(t, db.Create(buyer).Error)

	purchase := &models.Purchase{
		IdeaID:       ideaID,
		BuyerID:      buyer.ID,
		CheckoutID:   checkoutID,
		Status:       models.PurchaseStatusPending,
		TotalAmount:  10.00,
		Commission:   0.70,
		SellerAmount: 9.30,
	}
	purchase.CreatedAt = createdAt
	require.NoError(t, db.Create(purchase).Error)
	return purchase
}

func newWebhookService(db *gorm.DB, gateway CheckoutGateway) (*WebhookService, *PurchaseService) {
	ledger := NewPurchaseService(db, gateway, &config.Config{})
	return NewWebhookService(ledger, gateway), ledger
}

func TestReconcileMatchesViaCheckoutScan(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	gateway.checkouts["co_1"] = &Checkout{
		ID:     "co_1",
		Orders: []CheckoutOrder{{ID: "sh_99", Status: "settled"}},
	}

	err := svc.Reconcile(context.Background(), &WebhookEvent{ShiftID: "sh_99", Status: WebhookStatusSuccess})
	require.NoError(t, err)

	var updated models.Purchase
	require.NoError(t, db.First(&updated, "id = ?", purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusCompleted, updated.Status)
	assert.Equal(t, "sh_99", updated.ShiftID)

	var updatedIdea models.Idea
	require.NoError(t, db.First(&updatedIdea, "id = ?", idea.ID).Error)
	assert.Equal(t, int64(1), updatedIdea.SalesCount)
}

func TestReconcileDirectShiftMatch(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	require.NoError(t, db.Model(purchase).Update("shift_id", "sh_7").Error)

	err := svc.Reconcile(context.Background(), &WebhookEvent{ShiftID: "sh_7", Status: WebhookStatusSuccess})
	require.NoError(t, err)

	var updated models.Purchase
	require.NoError(t, db.First(&updated, "id = ?", purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusCompleted, updated.Status)
}

func TestReconcileUnmatchedEventAcknowledges(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	gateway.checkouts["co_1"] = &Checkout{ID: "co_1", Orders: []CheckoutOrder{{ID: "sh_other"}}}

	err := svc.Reconcile(context.Background(), &WebhookEvent{ShiftID: "sh_unknown", Status: WebhookStatusSuccess})
	require.NoError(t, err)

	var unchanged models.Purchase
	require.NoError(t, db.First(&unchanged, "id = ?", purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusPending, unchanged.Status)

	var updatedIdea models.Idea
	require.NoError(t, db.First(&updatedIdea, "id = ?", idea.ID).Error)
	assert.Equal(t, int64(0), updatedIdea.SalesCount)
}

func TestReconcileDuplicateDeliveryCountsOnce(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	gateway.checkouts["co_1"] = &Checkout{ID: "co_1", Orders: []CheckoutOrder{{ID: "sh_1"}}}

	event := &WebhookEvent{ShiftID: "sh_1", Status: WebhookStatusSuccess}
	require.NoError(t, svc.Reconcile(context.Background(), event))
	require.NoError(t, svc.Reconcile(context.Background(), event))
	require.NoError(t, svc.Reconcile(context.Background(), event))

	var updated models.Purchase
	require.NoError(t, db.First(&updated, "id = ?", purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusCompleted, updated.Status)

	var updatedIdea models.Idea
	require.NoError(t, db.First(&updatedIdea, "id = ?", idea.ID).Error)
	assert.Equal(t, int64(1), updatedIdea.SalesCount)
}

func TestReconcileFailEvent(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	gateway.checkouts["co_1"] = &Checkout{ID: "co_1", Orders: []CheckoutOrder{{ID: "sh_1"}}}

	err := svc.Reconcile(context.Background(), &WebhookEvent{ShiftID: "sh_1", Status: WebhookStatusFail})
	require.NoError(t, err)

	var updated models.Purchase
	require.NoError(t, db.First(&updated, "id = ?", purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusFailed, updated.Status)

	var updatedIdea models.Idea
	require.NoError(t, db.First(&updatedIdea, "id = ?", idea.ID).Error)
	assert.Equal(t, int64(0), updatedIdea.SalesCount)
}

func TestReconcileTerminalPurchaseIsNotReopened(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	gateway.checkouts["co_1"] = &Checkout{ID: "co_1", Orders: []CheckoutOrder{{ID: "sh_1"}}}

	require.NoError(t, svc.Reconcile(context.Background(), &WebhookEvent{ShiftID: "sh_1", Status: WebhookStatusSuccess}))

	// A late "fail" for the same settlement must not demote the record.
	require.NoError(t, svc.Reconcile(context.Background(), &WebhookEvent{ShiftID: "sh_1", Status: WebhookStatusFail}))

	var updated models.Purchase
	require.NoError(t, db.First(&updated, "id = ?", purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusCompleted, updated.Status)
}

func TestReconcileUnknownStatusIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	gateway.checkouts["co_1"] = &Checkout{ID: "co_1", Orders: []CheckoutOrder{{ID: "sh_1"}}}

	err := svc.Reconcile(context.Background(), &WebhookEvent{ShiftID: "sh_1", Status: "processing"})
	require.NoError(t, err)

	var unchanged models.Purchase
	require.NoError(t, db.First(&unchanged, "id = ?", purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusPending, unchanged.Status)
}

func TestReconcileScanSkipsFailingCandidates(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	older := seedPendingPurchase(t, db, idea.ID, "co_old", time.Now().Add(-time.Hour))
	seedPendingPurchase(t, db, idea.ID, "co_new", time.Now())

	// The newer candidate's checkout lookup fails; the scan must still reach
	// the older one.
	gateway.failing["co_new"] = true
	gateway.checkouts["co_old"] = &Checkout{ID: "co_old", Orders: []CheckoutOrder{{ID: "sh_5"}}}

	err := svc.Reconcile(context.Background(), &WebhookEvent{ShiftID: "sh_5", Status: WebhookStatusSuccess})
	require.NoError(t, err)

	var updated models.Purchase
	require.NoError(t, db.First(&updated, "id = ?", older.ID).Error)
	assert.Equal(t, models.PurchaseStatusCompleted, updated.Status)
}

func TestResolvePurchaseForShift(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc, _ := newWebhookService(db, gateway)

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	gateway.checkouts["co_1"] = &Checkout{ID: "co_1", Orders: []CheckoutOrder{{ID: "sh_1"}}}

	found, err := svc.ResolvePurchaseForShift(context.Background(), "sh_1")
	require.NoError(t, err)
	assert.Equal(t, purchase.ID, found.ID)

	_, err = svc.ResolvePurchaseForShift(context.Background(), "sh_missing")
	assert.True(t, IsNotFound(err))
}
