// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username       string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"`
	TwitterURL     string     `json:"twitter_url" gorm:"size:255"`
	ProfilePicture string     `json:"profile_picture" gorm:"size:512"`
	LastLoginAt    *time.Time `json:"last_login_at"`

	// Relationships
	Ideas     []Idea     `json:"ideas,omitempty" gorm:"foreignKey:SellerID"`
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:BuyerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
