// Package actions runs every dashboard form submission through the same
// pipeline: validate, persist, mark listings stale, then redirect or report.
package actions

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/actions_mock.go github.com/diewo77/acme-dashboard/internal/actions Mutator,Invalidator,Authenticator

import (
	"context"
	"fmt"
	"net/url"

	"github.com/diewo77/acme-dashboard/internal/forms"
	"github.com/diewo77/acme-dashboard/internal/identity"
	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/diewo77/acme-dashboard/internal/services"
	"github.com/diewo77/acme-dashboard/validation"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("acme.actions")

// Listing and landing paths.
const (
	InvoicesPath  = "/dashboard/invoices"
	CustomersPath = "/dashboard/customers"
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// User-facing authentication messages.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgAuthFailed         = "Something went wrong."
)

// Mutator persists validated records, one statement per call.
type Mutator interface {
	CreateInvoice(ctx context.Context, in forms.Invoice) error
	UpdateInvoice(ctx context.Context, id string, in forms.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	CreateCustomer(ctx context.Context, in forms.Customer) error
	UpdateCustomer(ctx context.Context, id string, in forms.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
	CreateAccount(ctx context.Context, in forms.Signup) error
}

// Invalidator marks a listing path stale.
type Invalidator interface {
	Revalidate(path string)
}

// Authenticator checks login credentials. Expected failures are
// *identity.Error.
type Authenticator interface {
	Verify(ctx context.Context, in forms.Login) (*models.User, error)
}

// Controller is stateless; one instance serves every request.
type Controller struct {
	store    Mutator
	cache    Invalidator
	identity Authenticator
	metrics  *Metrics
}

// NewController wires the pipeline collaborators. metrics may be nil.
func NewController(store Mutator, cache Invalidator, id Authenticator, metrics *Metrics) *Controller {
	return &Controller{store: store, cache: cache, identity: id, metrics: metrics}
}

func missingFields(op services.Op, entity services.Entity) string {
	return fmt.Sprintf("Missing Fields. Failed to %s %s.", op, entity)
}

func persistenceMessage(op services.Op, entity services.Entity, err error) string {
	var perr *services.PersistenceError
	if errors.As(err, &perr) {
		return perr.Message()
	}
	return services.NewPersistenceError(op, entity, err).Message()
}

// submit is the shared validate, execute, invalidate, redirect flow.
func (c *Controller) submit(
	ctx context.Context,
	op services.Op,
	entity services.Entity,
	violations validation.Violations,
	exec func(context.Context) error,
	target string,
	stale ...string,
) Outcome {
	if !violations.Empty() {
		c.metrics.observe(string(entity), string(op), resultInvalid)
		return reported(missingFields(op, entity), violations)
	}
	if err := exec(ctx); err != nil {
		c.metrics.observe(string(entity), string(op), resultFailed)
		return reported(persistenceMessage(op, entity, err), nil)
	}
	for _, path := range stale {
		c.cache.Revalidate(path)
	}
	c.metrics.observe(string(entity), string(op), resultRedirected)
	return redirect(target)
}

// remove deletes without validation and acknowledges in place.
func (c *Controller) remove(ctx context.Context, entity services.Entity, exec func(context.Context) error, stale ...string) Outcome {
	if err := exec(ctx); err != nil {
		c.metrics.observe(string(entity), string(services.OpDelete), resultFailed)
		return reported(persistenceMessage(services.OpDelete, entity, err), nil)
	}
	for _, path := range stale {
		c.cache.Revalidate(path)
	}
	c.metrics.observe(string(entity), string(services.OpDelete), resultDeleted)
	return acknowledged(fmt.Sprintf("Deleted %s.", entity))
}

// CreateInvoice validates and inserts an invoice.
func (c *Controller) CreateInvoice(ctx context.Context, values url.Values) Outcome {
	in, v := forms.ParseInvoice(values)
	return c.submit(ctx, services.OpCreate, services.EntityInvoice, v,
		func(ctx context.Context) error { return c.store.CreateInvoice(ctx, in) },
		InvoicesPath, InvoicesPath)
}

// UpdateInvoice validates and rewrites invoice id. Only id selects the
// target; an "id" field in values is ignored.
func (c *Controller) UpdateInvoice(ctx context.Context, id string, values url.Values) Outcome {
	in, v := forms.ParseInvoice(values)
	return c.submit(ctx, services.OpUpdate, services.EntityInvoice, v,
		func(ctx context.Context) error { return c.store.UpdateInvoice(ctx, id, in) },
		InvoicesPath, InvoicesPath)
}

// DeleteInvoice removes invoice id.
func (c *Controller) DeleteInvoice(ctx context.Context, id string) Outcome {
	return c.remove(ctx, services.EntityInvoice,
		func(ctx context.Context) error { return c.store.DeleteInvoice(ctx, id) },
		InvoicesPath)
}

// CreateCustomer validates and inserts a customer.
func (c *Controller) CreateCustomer(ctx context.Context, values url.Values) Outcome {
	in, v := forms.ParseCustomer(values)
	return c.submit(ctx, services.OpCreate, services.EntityCustomer, v,
		func(ctx context.Context) error { return c.store.CreateCustomer(ctx, in) },
		CustomersPath, CustomersPath, InvoicesPath)
}

// UpdateCustomer validates and rewrites customer id.
func (c *Controller) UpdateCustomer(ctx context.Context, id string, values url.Values) Outcome {
	in, v := forms.ParseCustomer(values)
	return c.submit(ctx, services.OpUpdate, services.EntityCustomer, v,
		func(ctx context.Context) error { return c.store.UpdateCustomer(ctx, id, in) },
		CustomersPath, CustomersPath, InvoicesPath)
}

// DeleteCustomer removes customer id.
func (c *Controller) DeleteCustomer(ctx context.Context, id string) Outcome {
	return c.remove(ctx, services.EntityCustomer,
		func(ctx context.Context) error { return c.store.DeleteCustomer(ctx, id) },
		CustomersPath, InvoicesPath)
}

// Signup creates an account and sends the user to the login page.
func (c *Controller) Signup(ctx context.Context, values url.Values) Outcome {
	in, v := forms.ParseSignup(values)
	return c.submit(ctx, services.OpCreate, services.EntityAccount, v,
		func(ctx context.Context) error { return c.store.CreateAccount(ctx, in) },
		LoginPath)
}

// Authenticate verifies credentials. Categorized failures become soft
// outcomes; any other error is returned to the caller untouched.
func (c *Controller) Authenticate(ctx context.Context, values url.Values) (Outcome, error) {
	user, err := c.identity.Verify(ctx, forms.ParseLogin(values))
	if err == nil {
		c.metrics.observe("Session", string(services.OpCreate), resultRedirected)
		out := redirect(DashboardPath)
		out.Subject = user.ID
		return out, nil
	}

	var ierr *identity.Error
	if !errors.As(err, &ierr) {
		c.metrics.observe("Session", string(services.OpCreate), resultError)
		return Outcome{}, err
	}
	c.metrics.observe("Session", string(services.OpCreate), resultRejected)
	if ierr.Kind == identity.KindInvalidCredentials {
		return reported(MsgInvalidCredentials, nil), nil
	}
	logger.Warningf("login failed: %v", ierr)
	return reported(MsgAuthFailed, nil), nil
}
