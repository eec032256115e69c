package services

import (
	"context"

	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/juju/errors"
	"gorm.io/gorm"
)

// InvoiceService computes the dashboard summary cards.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// Summary holds the dashboard card values, amounts in cents.
type Summary struct {
	TotalPaid         int64 `json:"total_paid"`
	TotalPending      int64 `json:"total_pending"`
	NumberOfInvoices  int64 `json:"number_of_invoices"`
	NumberOfCustomers int64 `json:"number_of_customers"`
}

// PaidFormatted renders the collected total.
func (s Summary) PaidFormatted() string { return models.FormatAmount(s.TotalPaid) }

// PendingFormatted renders the outstanding total.
func (s Summary) PendingFormatted() string { return models.FormatAmount(s.TotalPending) }

// GetSummary calculates collected and pending totals plus record counts.
func (s *InvoiceService) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	db := s.db.WithContext(ctx)
	err := db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS total_paid, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS total_pending, "+
			"COUNT(*) AS number_of_invoices",
			models.InvoiceStatusPaid, models.InvoiceStatusPending).
		Scan(&out).Error
	if err != nil {
		return Summary{}, errors.Annotate(err, "invoice totals")
	}
	if err := db.Model(&models.Customer{}).Count(&out.NumberOfCustomers).Error; err != nil {
		return Summary{}, errors.Annotate(err, "customer count")
	}
	return out, nil
}
