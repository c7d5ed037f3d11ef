// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ideabay/ideabay-backend/internal/services"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

type PaymentHandler struct {
	purchaseService *services.PurchaseService
	webhookService  *services.WebhookService
}

func NewPaymentHandler(purchaseService *services.PurchaseService, webhookService *services.WebhookService) *PaymentHandler {
	return &PaymentHandler{
		purchaseService: purchaseService,
		webhookService:  webhookService,
	}
}

// POST /payments/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	buyerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	response, err := h.purchaseService.CreateCheckout(c.Request.Context(), buyerID, &req, c.ClientIP())
	if err != nil {
		switch {
		case services.IsNotFound(err):
			utils.NotFoundResponse(c, "Idea")
		case services.IsValidation(err):
			utils.BadRequestResponse(c, err.Error(), nil)
		case services.IsGateway(err):
			utils.BadGatewayResponse(c, err.Error())
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, response)
}

// GET /payments/shifts/:shiftId/purchase
//
// The payment success page polls this while the settlement webhook is still
// in flight; it resolves a shift id to the buyer's purchase record.
func (h *PaymentHandler) GetShiftPurchase(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	buyerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	shiftID := c.Param("shiftId")
	if shiftID == "" {
		utils.BadRequestResponse(c, "Missing shift ID", nil)
		return
	}

	purchase, err := h.webhookService.ResolvePurchaseForShift(c.Request.Context(), shiftID)
	if err != nil {
		if services.IsNotFound(err) {
			utils.NotFoundResponse(c, "Purchase")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	if purchase.BuyerID != buyerID {
		utils.ForbiddenResponse(c, "")
		return
	}

	// The live provider status rides along when reachable; the purchase
	// record alone is still a useful answer when the probe fails.
	response := gin.H{"purchase": purchase}
	if shift, err := h.webhookService.ShiftStatus(c.Request.Context(), shiftID); err == nil {
		response["shift"] = shift
	}

	utils.SuccessResponse(c, response)
}

// GET /payments/purchases
func (h *PaymentHandler) GetPurchaseHistory(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	buyerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	purchases, total, err := h.purchaseService.GetPurchaseHistory(buyerID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(purchases, total, params)
	utils.PaginatedResponse(c, result)
}
