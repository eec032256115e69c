package services

import (
	"context"
	"strings"

	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/juju/errors"
	"gorm.io/gorm"
)

// ItemsPerPage is the listing page size.
const ItemsPerPage = 6

// Page is one page of a filtered listing.
type Page[T any] struct {
	Items       []T    `json:"items"`
	Query       string `json:"query"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
}

// InvoiceRow is an invoice joined with its customer for display.
type InvoiceRow struct {
	ID         string               `json:"id"`
	CustomerID string               `json:"customer_id"`
	Amount     int64                `json:"amount"`
	Date       string               `json:"date"`
	Status     models.InvoiceStatus `json:"status"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	ImageURL   string               `json:"image_url"`
}

// FormattedAmount renders the amount in currency units.
func (r InvoiceRow) FormattedAmount() string { return models.FormatAmount(r.Amount) }

// CustomerRow is a customer with its invoice aggregates.
type CustomerRow struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ImageURL      string `json:"image_url"`
	TotalInvoices int64  `json:"total_invoices"`
	TotalPending  int64  `json:"total_pending"`
	TotalPaid     int64  `json:"total_paid"`
}

// PendingFormatted renders the outstanding total.
func (r CustomerRow) PendingFormatted() string { return models.FormatAmount(r.TotalPending) }

// PaidFormatted renders the collected total.
func (r CustomerRow) PaidFormatted() string { return models.FormatAmount(r.TotalPaid) }

// ListingService serves the read side of the dashboard.
type ListingService struct {
	db *gorm.DB
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{db: db}
}

func like(query string) string {
	return "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
}

func totalPages(count int64) int {
	return int((count + ItemsPerPage - 1) / ItemsPerPage)
}

func offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * ItemsPerPage
}

func (s *ListingService) invoiceQuery(ctx context.Context, query string) *gorm.DB {
	q := like(query)
	return s.db.WithContext(ctx).Table("invoices").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("LOWER(customers.name) LIKE ? OR LOWER(customers.email) LIKE ? OR CAST(invoices.amount AS TEXT) LIKE ? "+
			"OR invoices.date LIKE ? OR LOWER(invoices.status) LIKE ?", q, q, q, q, q)
}

// Invoices returns the requested page of invoices matching query, newest first.
func (s *ListingService) Invoices(ctx context.Context, query string, page int) (Page[InvoiceRow], error) {
	if page < 1 {
		page = 1
	}
	out := Page[InvoiceRow]{Query: query, CurrentPage: page, Items: []InvoiceRow{}}
	var count int64
	if err := s.invoiceQuery(ctx, query).Count(&count).Error; err != nil {
		return out, errors.Annotate(err, "counting invoices")
	}
	out.TotalPages = totalPages(count)
	err := s.invoiceQuery(ctx, query).
		Select("invoices.id, invoices.customer_id, invoices.amount, invoices.date, invoices.status, " +
			"customers.name, customers.email, customers.image_url").
		Order("invoices.date DESC, invoices.id").
		Limit(ItemsPerPage).Offset(offset(page)).
		Scan(&out.Items).Error
	if err != nil {
		return out, errors.Annotate(err, "fetching invoices")
	}
	return out, nil
}

func (s *ListingService) customerQuery(ctx context.Context, query string) *gorm.DB {
	q := like(query)
	return s.db.WithContext(ctx).Table("customers").
		Where("LOWER(customers.name) LIKE ? OR LOWER(customers.email) LIKE ?", q, q)
}

// Customers returns the requested page of customers matching query with
// their invoice totals.
func (s *ListingService) Customers(ctx context.Context, query string, page int) (Page[CustomerRow], error) {
	if page < 1 {
		page = 1
	}
	out := Page[CustomerRow]{Query: query, CurrentPage: page, Items: []CustomerRow{}}
	var count int64
	if err := s.customerQuery(ctx, query).Count(&count).Error; err != nil {
		return out, errors.Annotate(err, "counting customers")
	}
	out.TotalPages = totalPages(count)
	err := s.customerQuery(ctx, query).
		Select("customers.id, customers.name, customers.email, customers.image_url, "+
			"COUNT(invoices.id) AS total_invoices, "+
			"COALESCE(SUM(CASE WHEN invoices.status = ? THEN invoices.amount ELSE 0 END), 0) AS total_pending, "+
			"COALESCE(SUM(CASE WHEN invoices.status = ? THEN invoices.amount ELSE 0 END), 0) AS total_paid",
			models.InvoiceStatusPending, models.InvoiceStatusPaid).
		Joins("LEFT JOIN invoices ON invoices.customer_id = customers.id").
		Group("customers.id, customers.name, customers.email, customers.image_url").
		Order("customers.name").
		Limit(ItemsPerPage).Offset(offset(page)).
		Scan(&out.Items).Error
	if err != nil {
		return out, errors.Annotate(err, "fetching customers")
	}
	return out, nil
}

// CustomerByID loads one customer; a missing id is errors.NotFound.
func (s *ListingService) CustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("customer %q", id)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "loading customer %q", id)
	}
	return &c, nil
}

// InvoiceByID loads one invoice; a missing id is errors.NotFound.
func (s *ListingService) InvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("invoice %q", id)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "loading invoice %q", id)
	}
	return &inv, nil
}

// CustomerOptions lists every customer by name for the invoice form.
func (s *ListingService) CustomerOptions(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("name").Find(&customers).Error; err != nil {
		return nil, errors.Annotate(err, "listing customers")
	}
	return customers, nil
}
