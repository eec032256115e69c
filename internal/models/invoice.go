package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// InvoiceStatuses lists the accepted status values in form order.
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusPending, InvoiceStatusPaid}

// Invoice is a single billed amount owed by a customer.
type Invoice struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// CustomerID must reference an existing customer.
	CustomerID string    `gorm:"size:36;not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`

	// Amount is stored in cents.
	Amount int64         `gorm:"not null;check:amount > 0" json:"amount"`
	Status InvoiceStatus `gorm:"size:20;not null" json:"status"`
	// Date is a calendar date (YYYY-MM-DD), no time of day.
	Date string `gorm:"size:10;not null" json:"date"`
}

// BeforeCreate assigns the identifier when the caller did not.
func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// IsPaid returns true if the invoice has been collected.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// FormattedAmount renders the stored cents as a decimal string.
func (i *Invoice) FormattedAmount() string {
	return FormatAmount(i.Amount)
}

// FormatAmount renders minor units with two decimals, e.g. 5000 -> "50.00".
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ToCents converts a decimal amount to minor units, truncating any
// fraction of a cent.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}
