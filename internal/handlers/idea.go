// internal/handlers/idea.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ideabay/ideabay-backend/internal/models"
	"github.com/ideabay/ideabay-backend/internal/services"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

type IdeaHandler struct {
	ideaService     *services.IdeaService
	purchaseService *services.PurchaseService
}

func NewIdeaHandler(ideaService *services.IdeaService, purchaseService *services.PurchaseService) *IdeaHandler {
	return &IdeaHandler{
		ideaService:     ideaService,
		purchaseService: purchaseService,
	}
}

// POST /ideas
func (h *IdeaHandler) CreateIdea(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	sellerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	idea, err := h.ideaService.Create(c.Request.Context(), sellerID, &req)
	if err != nil {
		if services.IsValidation(err) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{"idea": idea})
}

// GET /ideas
func (h *IdeaHandler) GetIdeas(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	ideas, total, err := h.ideaService.List(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(ideas, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /ideas/:id
func (h *IdeaHandler) GetIdea(c *gin.Context) {
	ideaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid idea ID", nil)
		return
	}

	var requesterID *uuid.UUID
	if userIDStr, exists := utils.GetUserIDFromContext(c); exists {
		if parsed, err := uuid.Parse(userIDStr); err == nil {
			requesterID = &parsed
		}
	}

	idea, unlocked, err := h.ideaService.Get(ideaID, requesterID, h.purchaseService)
	if err != nil {
		if services.IsNotFound(err) {
			utils.NotFoundResponse(c, "Idea")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"idea":     idea,
		"unlocked": unlocked,
	})
}

// GET /ideas/mine
func (h *IdeaHandler) GetMyIdeas(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	sellerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	ideas, err := h.ideaService.ListBySeller(sellerID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"ideas": ideas})
}

// GET /categories
func (h *IdeaHandler) GetCategories(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"categories": models.Categories})
}
