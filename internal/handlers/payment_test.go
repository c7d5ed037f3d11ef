// internal/handlers/payment_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ideabay/ideabay-backend/internal/config"
	"github.com/ideabay/ideabay-backend/internal/models"
	"github.com/ideabay/ideabay-backend/internal/services"
)

// settledGateway answers shift probes with a settled order.
type settledGateway struct{}

func (settledGateway) CreateCheckout(ctx context.Context, req *services.CheckoutRequest, callerIP string) (*services.Checkout, error) {
	return &services.Checkout{ID: "co_stub"}, nil
}

func (settledGateway) GetCheckout(ctx context.Context, checkoutID string) (*services.Checkout, error) {
	return &services.Checkout{ID: checkoutID}, nil
}

func (settledGateway) GetShift(ctx context.Context, shiftID string) (*services.Shift, error) {
	return &services.Shift{ID: shiftID, Status: "settled", TxID: "0xabc"}, nil
}

func TestGetShiftPurchaseIncludesShiftStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Idea{}, &models.Purchase{}))

	seller := &models.User{Username: "seller", Email: "seller@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(seller).Error)
	buyer := &models.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(buyer).Error)

	idea := &models.Idea{
		Title:               "Idea",
		Categories:          []string{"DeFi"},
		Preview:             "p",
		FullContent:         "f",
		Price:               10,
		SellerID:            seller.ID,
		SellerWalletAddress: "0x1111111111111111111111111111111111111111",
		PreferredChain:      models.ChainEthereum,
	}
	require.NoError(t, db.Create(idea).Error)

	purchase := &models.Purchase{
		IdeaID:       idea.ID,
		BuyerID:      buyer.ID,
		CheckoutID:   "co_1",
		ShiftID:      "sh_1",
		Status:       models.PurchaseStatusCompleted,
		TotalAmount:  10,
		Commission:   0.70,
		SellerAmount: 9.30,
	}
	require.NoError(t, db.Create(purchase).Error)

	ledger := services.NewPurchaseService(db, settledGateway{}, &config.Config{})
	webhookService := services.NewWebhookService(ledger, settledGateway{})
	handler := NewPaymentHandler(ledger, webhookService)

	r := gin.New()
	r.GET("/payments/shifts/:shiftId/purchase", func(c *gin.Context) {
		c.Set("user_id", buyer.ID.String())
		handler.GetShiftPurchase(c)
	})

	req, _ := http.NewRequest("GET", "/payments/shifts/sh_1/purchase", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Purchase models.Purchase `json:"purchase"`
			Shift    services.Shift  `json:"shift"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, purchase.ID, body.Data.Purchase.ID)
	assert.Equal(t, "settled", body.Data.Shift.Status)
	assert.Equal(t, "0xabc", body.Data.Shift.TxID)
}

func TestGetShiftPurchaseForeignBuyerForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Idea{}, &models.Purchase{}))

	buyer := &models.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(buyer).Error)
	other := &models.User{Username: "other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(other).Error)

	purchase := &models.Purchase{
		IdeaID:       buyer.ID, // any uuid; the idea row is not loaded here
		BuyerID:      buyer.ID,
		CheckoutID:   "co_1",
		ShiftID:      "sh_1",
		Status:       models.PurchaseStatusCompleted,
		TotalAmount:  10,
		Commission:   0.70,
		SellerAmount: 9.30,
	}
	require.NoError(t, db.Create(purchase).Error)

	ledger := services.NewPurchaseService(db, settledGateway{}, &config.Config{})
	webhookService := services.NewWebhookService(ledger, settledGateway{})
	handler := NewPaymentHandler(ledger, webhookService)

	r := gin.New()
	r.GET("/payments/shifts/:shiftId/purchase", func(c *gin.Context) {
		c.Set("user_id", other.ID.String())
		handler.GetShiftPurchase(c)
	})

	req, _ := http.NewRequest("GET", "/payments/shifts/sh_1/purchase", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
