package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account able to sign in to the dashboard.
type User struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Name     string `gorm:"size:255" json:"name,omitempty"`
	Email    string `gorm:"size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
}

// BeforeCreate assigns the identifier when the caller did not.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// All returns every model in migration order.
func All() []any {
	return []any{&User{}, &Customer{}, &Invoice{}}
}
