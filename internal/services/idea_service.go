// internal/services/idea_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ideabay/ideabay-backend/internal/models"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

const (
	maxPreviewWords     = 150
	maxFullContentWords = 3000
	maxCategories       = 3
)

type IdeaService struct {
	db     *gorm.DB
	scorer IdeaScorer
}

type CreateIdeaRequest struct {
	Title               string   `json:"title" validate:"required,max=255"`
	ImageURL            string   `json:"image_url" validate:"required"`
	Categories          []string `json:"categories" validate:"required"`
	Preview             string   `json:"preview" validate:"required"`
	FullContent         string   `json:"full_content" validate:"required"`
	SellerWalletAddress string   `json:"seller_wallet_address" validate:"required,wallet_address"`
	PreferredChain      string   `json:"preferred_chain" validate:"required"`
	SellerName          string   `json:"seller_name,omitempty"`
	SellerTwitter       string   `json:"seller_twitter,omitempty"`
}

func NewIdeaService(db *gorm.DB, scorer IdeaScorer) *IdeaService {
	return &IdeaService{
		db:     db,
		scorer: scorer,
	}
}

// Create validates a submission, scores it, derives the price and persists
// the listing. The price is set exactly once here and never recalculated.
func (s *IdeaService) Create(ctx context.Context, sellerID uuid.UUID, req *CreateIdeaRequest) (*models.Idea, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, NewValidationError("validation failed: %v", err)
	}

	if len(req.Categories) < 1 || len(req.Categories) > maxCategories {
		return nil, NewValidationError("must select between 1 and %d categories", maxCategories)
	}
	for _, category := range req.Categories {
		if !models.ValidCategory(category) {
			return nil, NewValidationError("unknown category %q", category)
		}
	}

	if utils.WordCount(req.Preview) > maxPreviewWords {
		return nil, NewValidationError("preview must be %d words or fewer", maxPreviewWords)
	}
	if utils.WordCount(req.FullContent) > maxFullContentWords {
		return nil, NewValidationError("full content must be %d words or fewer", maxFullContentWords)
	}

	chain := models.Chain(req.PreferredChain)
	if !models.ValidChain(chain) {
		return nil, NewValidationError("unsupported chain %q", req.PreferredChain)
	}

	// Scoring never blocks a listing; the scorer degrades to neutral scores
	// on failure.
	analysis := s.scorer.Evaluate(ctx, req.Title, req.Preview, req.FullContent, req.Categories)
	price := utils.CalculateIdeaPrice(analysis.Originality, analysis.UseCaseValue)

	sellerName := req.SellerName
	if sellerName == "" {
		sellerName = "Anonymous"
	}

	idea := &models.Idea{
		Title:               req.Title,
		ImageURL:            req.ImageURL,
		Categories:          req.Categories,
		Preview:             req.Preview,
		FullContent:         req.FullContent,
		Price:               price,
		SellerID:            sellerID,
		SellerName:          sellerName,
		SellerTwitter:       req.SellerTwitter,
		SellerWalletAddress: req.SellerWalletAddress,
		PreferredChain:      chain,
		RatingOriginality:   analysis.Originality,
		RatingUseCaseValue:  analysis.UseCaseValue,
		RatingCategoryMatch: analysis.CategoryMatch,
		Status:              models.IdeaStatusLive,
	}

	if err := s.db.Create(idea).Error; err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"idea_id":     idea.ID,
		"seller_id":   sellerID,
		"price":       price,
		"originality": analysis.Originality,
		"use_case":    analysis.UseCaseValue,
	}).Info("Idea listed")

	return idea, nil
}

// Get returns an idea. The full content is stripped unless the requester is
// the seller or has a completed purchase; unlocked reports which case holds.
func (s *IdeaService) Get(id uuid.UUID, requesterID *uuid.UUID, purchases *PurchaseService) (*models.Idea, bool, error) {
	var idea models.Idea
	if err := s.db.First(&idea, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, &NotFoundError{Resource: "Idea"}
		}
		return nil, false, fmt.Errorf("failed to load idea: %w", err)
	}

	unlocked := false
	if requesterID != nil {
		if *requesterID == idea.SellerID {
			unlocked = true
		} else {
			bought, err := purchases.HasCompletedPurchase(*requesterID, idea.ID)
			if err != nil {
				return nil, false, err
			}
			unlocked = bought
		}
	}

	if !unlocked {
		idea.FullContent = ""
	}

	return &idea, unlocked, nil
}

// List returns live ideas, paginated.
func (s *IdeaService) List(params utils.PaginationParams) ([]models.Idea, int64, error) {
	query := s.db.Model(&models.Idea{}).Where("status = ?", models.IdeaStatusLive)

	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR preview ILIKE ?", search, search)
	}
	if params.Category != "" {
		query = query.Where("? = ANY(categories)", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ideas: %w", err)
	}

	allowedSortFields := []string{"created_at", "price", "sales_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var ideas []models.Idea
	if err := query.Find(&ideas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ideas: %w", err)
	}

	// Listing responses never include the paid content.
	for i := range ideas {
		ideas[i].FullContent = ""
	}

	return ideas, total, nil
}

// ListBySeller returns all of a seller's own ideas, full content included.
func (s *IdeaService) ListBySeller(sellerID uuid.UUID) ([]models.Idea, error) {
	var ideas []models.Idea
	err := s.db.Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&ideas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seller ideas: %w", err)
	}
	return ideas, nil
}
