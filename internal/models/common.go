// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. The primary key carries no column default;
// gen_random_uuid() is not portable to the sqlite test databases, so ids are
// assigned by the BeforeCreate hook and the Postgres-side default is applied
// in the migration SQL.
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns a UUID for inserts that go through the ORM.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Enums
type IdeaStatus string

const (
	IdeaStatusLive     IdeaStatus = "live"
	IdeaStatusPending  IdeaStatus = "pending"
	IdeaStatusRejected IdeaStatus = "rejected"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	PurchaseStatusFailed    PurchaseStatus = "failed"
)

type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainArbitrum Chain = "arbitrum"
	ChainOptimism Chain = "optimism"
	ChainSepolia  Chain = "sepolia"
)

func ValidChain(c Chain) bool {
	switch c {
	case ChainEthereum, ChainPolygon, ChainArbitrum, ChainOptimism, ChainSepolia:
		return true
	}
	return false
}

// Idea categories form a closed set; a listing carries between one and three.
var Categories = []string{
	"DeFi",
	"AI",
	"SocialFi",
	"DAO",
	"Gaming",
	"NFTs",
	"Infrastructure",
	"Other",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
