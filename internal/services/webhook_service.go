// internal/services/webhook_service.go
package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ideabay/ideabay-backend/internal/models"
)

// fallbackScanLimit bounds how many recent pending purchases the reconciler
// will probe against the gateway when a shift id has no direct match.
const fallbackScanLimit = 50

const (
	WebhookStatusSuccess = "success"
	WebhookStatusFail    = "fail"
)

// WebhookEvent is one settlement notification from the payment provider.
// The provider keys it by shift id, not by the checkout id the ledger stored
// at purchase time; resolving that mismatch is the reconciler's job.
type WebhookEvent struct {
	ShiftID string
	Status  string
	TxID    string
}

// WebhookService reconciles settlement events against the purchase ledger.
type WebhookService struct {
	ledger  *PurchaseService
	gateway CheckoutGateway
}

func NewWebhookService(ledger *PurchaseService, gateway CheckoutGateway) *WebhookService {
	return &WebhookService{
		ledger:  ledger,
		gateway: gateway,
	}
}

// Reconcile applies one settlement event to the ledger. It only returns an
// error for infrastructure failures that should surface as a 5xx; every
// reached decision, including "no matching purchase", is a successful
// acknowledgment so the provider never retries a processed event.
func (s *WebhookService) Reconcile(ctx context.Context, event *WebhookEvent) error {
	purchase, err := s.ledger.FindBySettlementID(event.ShiftID)
	if err != nil {
		return err
	}

	if purchase == nil {
		purchase, err = s.findByCheckoutScan(ctx, event.ShiftID)
		if err != nil {
			return err
		}
	}

	if purchase == nil {
		logrus.WithField("shift_id", event.ShiftID).Warn("No purchase found for settlement event")
		return nil
	}

	switch event.Status {
	case WebhookStatusSuccess:
		err = s.ledger.MarkCompleted(purchase.ID, event.ShiftID)
	case WebhookStatusFail:
		err = s.ledger.MarkFailed(purchase.ID)
	default:
		logrus.WithFields(logrus.Fields{
			"shift_id": event.ShiftID,
			"status":   event.Status,
		}).Info("Ignoring settlement event with unhandled status")
		return nil
	}

	// A terminal record means this event was already applied; duplicate
	// deliveries acknowledge cleanly.
	var stateErr *StateError
	if errors.As(err, &stateErr) {
		logrus.WithFields(logrus.Fields{
			"purchase_id": purchase.ID,
			"shift_id":    event.ShiftID,
		}).Info("Settlement event replayed against terminal purchase, ignoring")
		return nil
	}

	return err
}

// findByCheckoutScan walks the newest pending purchases and asks the gateway
// whether any of their checkouts spawned an order with the event's shift id.
// First match wins. A gateway failure on one candidate skips that candidate
// rather than aborting the scan.
func (s *WebhookService) findByCheckoutScan(ctx context.Context, shiftID string) (*models.Purchase, error) {
	pending, err := s.ledger.FindPendingRecent(fallbackScanLimit)
	if err != nil {
		return nil, err
	}

	for i := range pending {
		checkout, err := s.gateway.GetCheckout(ctx, pending[i].CheckoutID)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"checkout_id": pending[i].CheckoutID,
				"shift_id":    shiftID,
			}).Warn("Checkout lookup failed during settlement scan, skipping candidate")
			continue
		}

		for _, order := range checkout.Orders {
			if order.ID == shiftID {
				return &pending[i], nil
			}
		}
	}

	return nil, nil
}

// ResolvePurchaseForShift exposes the reconciler's matching logic to direct
// lookups (the payment success page polls it while the webhook is in flight).
func (s *WebhookService) ResolvePurchaseForShift(ctx context.Context, shiftID string) (*models.Purchase, error) {
	purchase, err := s.ledger.FindBySettlementID(shiftID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		purchase, err = s.findByCheckoutScan(ctx, shiftID)
		if err != nil {
			return nil, err
		}
	}
	if purchase == nil {
		return nil, &NotFoundError{Resource: "Purchase"}
	}
	return purchase, nil
}

// ShiftStatus probes the provider for the live state of a settlement order.
func (s *WebhookService) ShiftStatus(ctx context.Context, shiftID string) (*Shift, error) {
	return s.gateway.GetShift(ctx, shiftID)
}
