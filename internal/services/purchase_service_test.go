// internal/services/purchase_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideabay/ideabay-backend/internal/config"
	"github.com/ideabay/ideabay-backend/internal/models"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		SideShift: config.SideShiftConfig{
			PayURL:    "https://pay.sideshift.ai",
			AccountID: "acct_test",
		},
		Commission: config.CommissionConfig{
			PlatformRate: utils.DefaultPlatformCommissionRate,
		},
		Frontend: config.FrontendConfig{
			BaseURL: "http://localhost:3000",
		},
	}
}

func TestCreateCheckoutRecordsPendingPurchase(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc := NewPurchaseService(db, gateway, testConfig())

	idea := seedIdea(t, db)
	buyer := &models.User{Username: "buyer1", Email: "buyer1@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(buyer).Error)

	resp, err := svc.CreateCheckout(context.Background(), buyer.ID, &CreateCheckoutRequest{IdeaID: idea.ID}, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, "co_1", resp.CheckoutID)
	assert.Equal(t, "https://pay.sideshift.ai/checkout/co_1", resp.PaymentURL)
	assert.Equal(t, 10.00, resp.Total)

	// The gateway was asked to settle the post-commission amount to the
	// seller's wallet.
	require.Len(t, gateway.created, 1)
	assert.Equal(t, "9.30", gateway.created[0].SettleAmount)
	assert.Equal(t, idea.SellerWalletAddress, gateway.created[0].SettleAddress)
	assert.Equal(t, "ETH", gateway.created[0].SettleCoin)
	assert.Equal(t, "mainnet", gateway.created[0].SettleNetwork)
	assert.Equal(t, "acct_test", gateway.created[0].AffiliateID)

	var purchase models.Purchase
	require.NoError(t, db.First(&purchase, "checkout_id = ?", "co_1").Error)
	assert.Equal(t, models.PurchaseStatusPending, purchase.Status)
	assert.Equal(t, 10.00, purchase.TotalAmount)
	assert.Equal(t, 0.70, purchase.Commission)
	assert.Equal(t, 9.30, purchase.SellerAmount)
	assert.Empty(t, purchase.ShiftID)
}

func TestCreateCheckoutUsesConfiguredCommissionRate(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	cfg := testConfig()
	cfg.Commission.PlatformRate = 0.50
	svc := NewPurchaseService(db, gateway, cfg)

	idea := seedIdea(t, db)
	buyer := &models.User{Username: "buyer50", Email: "buyer50@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(buyer).Error)

	_, err := svc.CreateCheckout(context.Background(), buyer.ID, &CreateCheckoutRequest{IdeaID: idea.ID}, "203.0.113.9")
	require.NoError(t, err)

	require.Len(t, gateway.created, 1)
	assert.Equal(t, "5.00", gateway.created[0].SettleAmount)

	var purchase models.Purchase
	require.NoError(t, db.First(&purchase, "checkout_id = ?", "co_1").Error)
	assert.Equal(t, 5.00, purchase.Commission)
	assert.Equal(t, 5.00, purchase.SellerAmount)
}

func TestCreateCheckoutRejectsOwnIdea(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc := NewPurchaseService(db, gateway, testConfig())

	idea := seedIdea(t, db)

	_, err := svc.CreateCheckout(context.Background(), idea.SellerID, &CreateCheckoutRequest{IdeaID: idea.ID}, "203.0.113.9")
	assert.True(t, IsValidation(err))
	assert.Empty(t, gateway.created)
}

func TestCreateCheckoutUnknownIdea(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPurchaseService(db, newFakeGateway(), testConfig())

	buyer := &models.User{Username: "buyer2", Email: "buyer2@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(buyer).Error)

	_, err := svc.CreateCheckout(context.Background(), buyer.ID, &CreateCheckoutRequest{IdeaID: buyer.ID}, "203.0.113.9")
	assert.True(t, IsNotFound(err))
}

func TestCreateValidatesAmounts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPurchaseService(db, newFakeGateway(), testConfig())

	idea := seedIdea(t, db)
	buyer := &models.User{Username: "buyer3", Email: "buyer3@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(buyer).Error)

	_, err := svc.Create(idea.ID, buyer.ID, "co_x", -1, 0.70, 9.30)
	assert.True(t, IsValidation(err))

	_, err = svc.Create(idea.ID, buyer.ID, "", 10, 0.70, 9.30)
	assert.True(t, IsValidation(err))
}

func TestMarkFailedOnlyMovesPendingRows(t *testing.T) {
	db := setupTestDB(t)
	gateway := newFakeGateway()
	svc := NewPurchaseService(db, gateway, testConfig())

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())

	require.NoError(t, svc.MarkCompleted(purchase.ID, "sh_1"))

	err := svc.MarkFailed(purchase.ID)
	assert.True(t, IsState(err))

	var reloaded models.Purchase
	require.NoError(t, db.First(&reloaded, "id = ?", purchase.ID).Error)
	assert.Equal(t, models.PurchaseStatusCompleted, reloaded.Status)
}

func TestGetEarningsSummary(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPurchaseService(db, newFakeGateway(), testConfig())

	idea := seedIdea(t, db)
	first := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())
	second := seedPendingPurchase(t, db, idea.ID, "co_2", time.Now())
	third := seedPendingPurchase(t, db, idea.ID, "co_3", time.Now())

	require.NoError(t, svc.MarkCompleted(first.ID, "sh_1"))
	require.NoError(t, svc.MarkCompleted(second.ID, "sh_2"))
	require.NoError(t, svc.MarkFailed(third.ID))

	summary, err := svc.GetEarningsSummary()
	require.NoError(t, err)

	// Only the two completed purchases count; pending and failed rows do not.
	assert.Equal(t, int64(2), summary.TotalTransactions)
	assert.Equal(t, 1.40, summary.TotalCommission)
	assert.Equal(t, 20.00, summary.TotalRevenue)
	assert.Equal(t, utils.DefaultPlatformCommissionRate, summary.CommissionRate)
}

func TestHasCompletedPurchase(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPurchaseService(db, newFakeGateway(), testConfig())

	idea := seedIdea(t, db)
	purchase := seedPendingPurchase(t, db, idea.ID, "co_1", time.Now())

	unlocked, err := svc.HasCompletedPurchase(purchase.BuyerID, idea.ID)
	require.NoError(t, err)
	assert.False(t, unlocked)

	require.NoError(t, svc.MarkCompleted(purchase.ID, "sh_1"))

	unlocked, err = svc.HasCompletedPurchase(purchase.BuyerID, idea.ID)
	require.NoError(t, err)
	assert.True(t, unlocked)
}
