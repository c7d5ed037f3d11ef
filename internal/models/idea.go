// internal/models/idea.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Idea struct {
	BaseModel
	Title               string         `json:"title" gorm:"size:255;not null"`
	ImageURL            string         `json:"image_url" gorm:"size:512"`
	Categories          pq.StringArray `json:"categories" gorm:"type:text[]"`
	Preview             string         `json:"preview" gorm:"type:text;not null"`
	FullContent         string         `json:"full_content,omitempty" gorm:"type:text;not null"`
	Price               float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	SellerID            uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	SellerName          string         `json:"seller_name" gorm:"size:100"`
	SellerTwitter       string         `json:"seller_twitter" gorm:"size:255"`
	SellerWalletAddress string         `json:"seller_wallet_address" gorm:"size:128;not null"`
	PreferredChain      Chain          `json:"preferred_chain" gorm:"type:varchar(20);not null"`
	RatingOriginality   float64        `json:"rating_originality" gorm:"type:decimal(4,2)"`
	RatingUseCaseValue  float64        `json:"rating_use_case_value" gorm:"type:decimal(4,2)"`
	RatingCategoryMatch float64        `json:"rating_category_match" gorm:"type:decimal(4,2)"`
	SalesCount          int64          `json:"sales_count" gorm:"default:0"`
	Status              IdeaStatus     `json:"status" gorm:"type:varchar(20);default:'live';index"`

	// Relationships
	Seller    User       `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:IdeaID"`
}
