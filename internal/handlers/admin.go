// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ideabay/ideabay-backend/internal/services"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

type AdminHandler struct {
	purchaseService *services.PurchaseService
}

func NewAdminHandler(purchaseService *services.PurchaseService) *AdminHandler {
	return &AdminHandler{
		purchaseService: purchaseService,
	}
}

// GET /admin/commission
//
// TODO: gate on an admin role once the user model grows one; for now any
// authenticated user may read the platform totals.
func (h *AdminHandler) GetCommissionSummary(c *gin.Context) {
	if _, exists := utils.GetUserIDFromContext(c); !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	summary, err := h.purchaseService.GetEarningsSummary()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, summary)
}
