package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is billed through invoices.
type Customer struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255;not null" json:"email"`
	// ImageURL is the reference returned by the upload service, stored verbatim.
	ImageURL string `gorm:"size:1024;not null" json:"image_url"`
}

// BeforeCreate assigns the identifier when the caller did not.
func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
