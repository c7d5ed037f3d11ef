// internal/models/purchase.go
package models

import (
	"github.com/google/uuid"
)

// Purchase is one attempt to buy one idea. CheckoutID is issued by the
// payment provider when the checkout session is created; ShiftID is the
// settlement identifier the provider delivers later via webhook. Status only
// moves forward: pending -> completed or pending -> failed.
type Purchase struct {
	BaseModel
	IdeaID       uuid.UUID      `json:"idea_id" gorm:"type:uuid;not null;index"`
	BuyerID      uuid.UUID      `json:"buyer_id" gorm:"type:uuid;not null;index"`
	CheckoutID   string         `json:"checkout_id" gorm:"size:64;not null;index"`
	ShiftID      string         `json:"shift_id,omitempty" gorm:"size:64;index"`
	Status       PurchaseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TotalAmount  float64        `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Commission   float64        `json:"commission" gorm:"type:decimal(10,2);not null"`
	SellerAmount float64        `json:"seller_amount" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Idea  Idea `json:"idea,omitempty" gorm:"foreignKey:IdeaID"`
	Buyer User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
}
