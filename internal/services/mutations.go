package services

import (
	"context"
	"fmt"

	"github.com/diewo77/acme-dashboard/internal/forms"
	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/diewo77/acme-dashboard/validation"
	"github.com/juju/clock"
	"github.com/juju/loggo/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var logger = loggo.GetLogger("acme.services")

// Op names a mutation kind as shown to users.
type Op string

const (
	OpCreate Op = "Create"
	OpUpdate Op = "Update"
	OpDelete Op = "Delete"
)

// Entity names a persisted record kind as shown to users.
type Entity string

const (
	EntityInvoice  Entity = "Invoice"
	EntityCustomer Entity = "Customer"
	EntityAccount  Entity = "Account"
)

// PersistenceError is the uniform shape of every failed statement. The
// cause is kept for operators and never rendered.
type PersistenceError struct {
	Op     Op
	Entity Entity
	Err    error
}

// NewPersistenceError wraps err for the given mutation.
func NewPersistenceError(op Op, entity Entity, err error) *PersistenceError {
	return &PersistenceError{Op: op, Entity: entity, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Message is the generic user-facing text for this failure.
func (e *PersistenceError) Message() string {
	return fmt.Sprintf("Database Error: Failed to %s %s.", e.Op, e.Entity)
}

// MutationService issues exactly one statement per call.
type MutationService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewMutationService binds the service to a connection. A nil clock means
// the wall clock.
func NewMutationService(db *gorm.DB, clk clock.Clock) *MutationService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &MutationService{db: db, clock: clk}
}

// CreateInvoice inserts a new invoice. Without a form date, the server's
// current calendar date is used.
func (s *MutationService) CreateInvoice(ctx context.Context, in forms.Invoice) error {
	date := in.Date
	if date == "" {
		date = s.clock.Now().Format(validation.DateLayout)
	}
	inv := models.Invoice{
		CustomerID: in.CustomerID,
		Amount:     models.ToCents(in.Amount),
		Status:     in.Status,
		Date:       date,
	}
	err := s.db.WithContext(ctx).Create(&inv).Error
	return s.check(OpCreate, EntityInvoice, err)
}

// UpdateInvoice rewrites customer, amount and status of the invoice id.
// The issue date is kept.
func (s *MutationService) UpdateInvoice(ctx context.Context, id string, in forms.Invoice) error {
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Updates(map[string]any{
		"customer_id": in.CustomerID,
		"amount":      models.ToCents(in.Amount),
		"status":      string(in.Status),
	}).Error
	return s.check(OpUpdate, EntityInvoice, err)
}

// DeleteInvoice removes the invoice id. A missing row is not an error.
func (s *MutationService) DeleteInvoice(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{}).Error
	return s.check(OpDelete, EntityInvoice, err)
}

// CreateCustomer inserts a new customer.
func (s *MutationService) CreateCustomer(ctx context.Context, in forms.Customer) error {
	c := models.Customer{Name: in.Name, Email: in.Email, ImageURL: in.ImageURL}
	err := s.db.WithContext(ctx).Create(&c).Error
	return s.check(OpCreate, EntityCustomer, err)
}

// UpdateCustomer rewrites every field of the customer id.
func (s *MutationService) UpdateCustomer(ctx context.Context, id string, in forms.Customer) error {
	err := s.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(map[string]any{
		"name":      in.Name,
		"email":     in.Email,
		"image_url": in.ImageURL,
	}).Error
	return s.check(OpUpdate, EntityCustomer, err)
}

// DeleteCustomer removes the customer id. Customers still referenced by
// invoices are refused by the store.
func (s *MutationService) DeleteCustomer(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{}).Error
	return s.check(OpDelete, EntityCustomer, err)
}

// CreateAccount stores a new user with a bcrypt password hash.
func (s *MutationService) CreateAccount(ctx context.Context, in forms.Signup) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.check(OpCreate, EntityAccount, err)
	}
	u := models.User{Name: in.Name, Email: in.Email, Password: string(hashed)}
	err = s.db.WithContext(ctx).Create(&u).Error
	return s.check(OpCreate, EntityAccount, err)
}

func (s *MutationService) check(op Op, entity Entity, err error) error {
	if err == nil {
		return nil
	}
	perr := NewPersistenceError(op, entity, err)
	logger.Errorf("%v", perr)
	return perr
}
