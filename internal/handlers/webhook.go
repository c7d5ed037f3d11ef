// internal/handlers/webhook.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ideabay/ideabay-backend/internal/services"
	"github.com/ideabay/ideabay-backend/internal/utils"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
}

// sideshiftEnvelope is the provider's delivery format. Payload and its
// shiftId are hard requirements; everything else is optional.
type sideshiftEnvelope struct {
	Meta    map[string]interface{} `json:"meta"`
	Payload *sideshiftPayload      `json:"payload"`
}

type sideshiftPayload struct {
	ShiftID string `json:"shiftId"`
	Status  string `json:"status"`
	TxID    string `json:"txid,omitempty"`
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// POST /webhooks/sideshift
//
// Once a reconciliation decision is reached (including "no matching
// purchase") this always acknowledges with 200 so the provider does not
// retry a processed event. Only malformed envelopes are rejected.
func (h *WebhookHandler) HandleSideShift(c *gin.Context) {
	var envelope sideshiftEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		utils.BadRequestResponse(c, "Invalid webhook payload", nil)
		return
	}

	if envelope.Payload == nil {
		utils.BadRequestResponse(c, "Invalid webhook payload", nil)
		return
	}

	if envelope.Payload.ShiftID == "" {
		utils.BadRequestResponse(c, "Missing shiftId", nil)
		return
	}

	event := &services.WebhookEvent{
		ShiftID: envelope.Payload.ShiftID,
		Status:  envelope.Payload.Status,
		TxID:    envelope.Payload.TxID,
	}

	if err := h.webhookService.Reconcile(c.Request.Context(), event); err != nil {
		logrus.WithError(err).WithField("shift_id", event.ShiftID).Error("Webhook reconciliation failed")
		utils.InternalErrorResponse(c, "Webhook processing failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
