// internal/services/purchase_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ideabay/ideabay-backend/internal/config"
	"github.com/ideabay/ideabay-backend/internal/database"
	"github.com/ideabay/ideabay-backend/internal/models"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

// PurchaseService owns the purchase ledger: it creates pending purchase
// records when a buyer starts a checkout and applies the terminal status
// transitions the webhook reconciler decides on.
type PurchaseService struct {
	db      *gorm.DB
	gateway CheckoutGateway
	cfg     *config.Config
}

type CreateCheckoutRequest struct {
	IdeaID uuid.UUID `json:"idea_id" validate:"required"`
}

type CreateCheckoutResponse struct {
	CheckoutID string  `json:"checkout_id"`
	PaymentURL string  `json:"payment_url"`
	Total      float64 `json:"total"`
	PurchaseID string  `json:"purchase_id"`
}

func NewPurchaseService(db *gorm.DB, gateway CheckoutGateway, cfg *config.Config) *PurchaseService {
	return &PurchaseService{
		db:      db,
		gateway: gateway,
		cfg:     cfg,
	}
}

// CreateCheckout runs the buyer-initiated purchase pipeline: commission
// split, remote checkout creation, pending ledger record.
func (s *PurchaseService) CreateCheckout(ctx context.Context, buyerID uuid.UUID, req *CreateCheckoutRequest, callerIP string) (*CreateCheckoutResponse, error) {
	var idea models.Idea
	if err := s.db.First(&idea, "id = ?", req.IdeaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Idea"}
		}
		return nil, fmt.Errorf("failed to load idea: %w", err)
	}

	if idea.SellerID == buyerID {
		return nil, NewValidationError("you cannot purchase your own idea")
	}

	split := utils.CalculateCommission(idea.Price, s.cfg.Commission.PlatformRate)
	coin, network := CoinAndNetworkForChain(idea.PreferredChain)

	// The seller settles the post-commission amount; the platform's cut rides
	// the affiliate id attached to the checkout.
	checkout, err := s.gateway.CreateCheckout(ctx, &CheckoutRequest{
		SettleCoin:    coin,
		SettleNetwork: network,
		SettleAmount:  fmt.Sprintf("%.2f", split.SellerAmount),
		SettleAddress: idea.SellerWalletAddress,
		AffiliateID:   s.cfg.SideShift.AccountID,
		SuccessURL:    fmt.Sprintf("%s/payment/success?ideaId=%s", s.cfg.Frontend.BaseURL, idea.ID),
		CancelURL:     fmt.Sprintf("%s/payment/cancel?ideaId=%s", s.cfg.Frontend.BaseURL, idea.ID),
	}, callerIP)
	if err != nil {
		return nil, err
	}

	purchase, err := s.Create(idea.ID, buyerID, checkout.ID, idea.Price, split.Commission, split.SellerAmount)
	if err != nil {
		return nil, err
	}

	return &CreateCheckoutResponse{
		CheckoutID: checkout.ID,
		PaymentURL: fmt.Sprintf("%s/checkout/%s", s.cfg.SideShift.PayURL, checkout.ID),
		Total:      idea.Price,
		PurchaseID: purchase.ID.String(),
	}, nil
}

// Create inserts a pending purchase record.
func (s *PurchaseService) Create(ideaID, buyerID uuid.UUID, checkoutID string, totalAmount, commission, sellerAmount float64) (*models.Purchase, error) {
	if totalAmount < 0 || commission < 0 || sellerAmount < 0 {
		return nil, NewValidationError("purchase amounts must not be negative")
	}
	if checkoutID == "" {
		return nil, NewValidationError("checkout id is required")
	}

	purchase := &models.Purchase{
		IdeaID:       ideaID,
		BuyerID:      buyerID,
		CheckoutID:   checkoutID,
		Status:       models.PurchaseStatusPending,
		TotalAmount:  totalAmount,
		Commission:   commission,
		SellerAmount: sellerAmount,
	}

	if err := s.db.Create(purchase).Error; err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	return purchase, nil
}

// FindBySettlementID looks a purchase up by the provider's shift id.
func (s *PurchaseService) FindBySettlementID(shiftID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := s.db.Where("shift_id = ?", shiftID).First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase by shift id: %w", err)
	}
	return &purchase, nil
}

// FindPendingRecent returns the most recently created pending purchases,
// newest first, bounded by limit. Used only as the reconciler's fallback
// scan set.
func (s *PurchaseService) FindPendingRecent(limit int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := s.db.Where("status = ?", models.PurchaseStatusPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query pending purchases: %w", err)
	}
	return purchases, nil
}

// MarkCompleted moves a pending purchase to completed, records the shift id
// and bumps the idea's sales counter. Both writes run in one transaction and
// the status update is conditional on the row still being pending, so a
// duplicate webhook delivery transitions nothing and counts nothing.
func (s *PurchaseService) MarkCompleted(purchaseID uuid.UUID, shiftID string) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ?", purchaseID, models.PurchaseStatusPending).
			Updates(map[string]interface{}{
				"status":     models.PurchaseStatusCompleted,
				"shift_id":   shiftID,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to complete purchase: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &StateError{Message: fmt.Sprintf("purchase %s is not pending", purchaseID)}
		}

		var purchase models.Purchase
		if err := tx.First(&purchase, "id = ?", purchaseID).Error; err != nil {
			return fmt.Errorf("failed to reload purchase: %w", err)
		}

		if err := tx.Model(&models.Idea{}).
			Where("id = ?", purchase.IdeaID).
			UpdateColumn("sales_count", gorm.Expr("sales_count + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment sales count: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"purchase_id": purchaseID,
			"idea_id":     purchase.IdeaID,
			"shift_id":    shiftID,
		}).Info("Purchase completed")

		return nil
	})
}

// MarkFailed moves a pending purchase to failed. Terminal rows are left
// untouched.
func (s *PurchaseService) MarkFailed(purchaseID uuid.UUID) error {
	result := s.db.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", purchaseID, models.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":     models.PurchaseStatusFailed,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to fail purchase: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &StateError{Message: fmt.Sprintf("purchase %s is not pending", purchaseID)}
	}

	logrus.WithField("purchase_id", purchaseID).Info("Purchase failed")
	return nil
}

// GetPurchaseHistory returns a buyer's purchases, newest first.
func (s *PurchaseService) GetPurchaseHistory(buyerID uuid.UUID, params utils.PaginationParams) ([]models.Purchase, int64, error) {
	query := s.db.Model(&models.Purchase{}).
		Where("buyer_id = ?", buyerID).
		Preload("Idea")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var purchases []models.Purchase
	if err := query.Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	return purchases, total, nil
}

// EarningsSummary aggregates the platform's take across all completed
// purchases.
type EarningsSummary struct {
	TotalCommission   float64 `json:"total_commission"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalTransactions int64   `json:"total_transactions"`
	CommissionRate    float64 `json:"commission_rate"`
}

func (s *PurchaseService) GetEarningsSummary() (*EarningsSummary, error) {
	var row struct {
		TotalCommission float64
		TotalRevenue    float64
		Transactions    int64
	}
	err := s.db.Model(&models.Purchase{}).
		Select("COALESCE(SUM(commission), 0) AS total_commission, COALESCE(SUM(total_amount), 0) AS total_revenue, COUNT(*) AS transactions").
		Where("status = ?", models.PurchaseStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate earnings: %w", err)
	}

	return &EarningsSummary{
		TotalCommission:   roundTwo(row.TotalCommission),
		TotalRevenue:      roundTwo(row.TotalRevenue),
		TotalTransactions: row.Transactions,
		CommissionRate:    s.cfg.Commission.PlatformRate,
	}, nil
}

func roundTwo(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}

// HasCompletedPurchase reports whether the buyer has unlocked the idea.
func (s *PurchaseService) HasCompletedPurchase(buyerID, ideaID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Purchase{}).
		Where("buyer_id = ? AND idea_id = ? AND status = ?", buyerID, ideaID, models.PurchaseStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchases: %w", err)
	}
	return count > 0, nil
}
