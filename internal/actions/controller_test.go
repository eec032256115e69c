package actions_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/diewo77/acme-dashboard/internal/actions"
	"github.com/diewo77/acme-dashboard/internal/actions/mocks"
	"github.com/diewo77/acme-dashboard/internal/forms"
	"github.com/diewo77/acme-dashboard/internal/identity"
	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/diewo77/acme-dashboard/internal/services"
	"github.com/juju/loggo/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	store   *mocks.MockMutator
	cache   *mocks.MockInvalidator
	id      *mocks.MockAuthenticator
	metrics *actions.Metrics
	ctrl    *actions.Controller
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mc := gomock.NewController(t)
	f := &fixture{
		store:   mocks.NewMockMutator(mc),
		cache:   mocks.NewMockInvalidator(mc),
		id:      mocks.NewMockAuthenticator(mc),
		metrics: actions.NewMetrics(prometheus.NewRegistry()),
	}
	f.ctrl = actions.NewController(f.store, f.cache, f.id, f.metrics)
	return f
}

func form(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

// Scenario A: missing customer.
func TestCreateInvoice_MissingCustomer(t *testing.T) {
	f := setup(t)

	out := f.ctrl.CreateInvoice(context.Background(), form("customerId", "", "amount", "10", "status", "pending"))

	assert.True(t, out.Failed)
	assert.False(t, out.Redirected())
	assert.Equal(t, "Missing Fields. Failed to Create Invoice.", out.Message)
	assert.Equal(t, []string{"Please select a customer."}, out.Errors["customerId"])
	assert.Equal(t, []string{"customerId"}, out.Errors.Fields())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Count("Invoice", "Create", "invalid")))
}

// Scenario B: zero amount.
func TestCreateInvoice_ZeroAmount(t *testing.T) {
	f := setup(t)

	out := f.ctrl.CreateInvoice(context.Background(), form("customerId", "abc", "amount", "0", "status", "paid"))

	assert.Equal(t, []string{"Please enter an amount greater than $0."}, out.Errors["amount"])
	assert.False(t, out.Errors.Has("customerId"))
	assert.False(t, out.Errors.Has("status"))
}

func TestCreateInvoice_NonPositiveAmountAlwaysReported(t *testing.T) {
	f := setup(t)
	for _, amount := range []string{"-5", "0", "0.00", "0.001", "abc", ""} {
		out := f.ctrl.CreateInvoice(context.Background(), form("amount", amount, "status", "bogus"))
		assert.True(t, out.Errors.Has("amount"), "amount %q", amount)
	}
}

func TestCreateInvoice_SuccessInvalidatesThenRedirects(t *testing.T) {
	f := setup(t)
	gomock.InOrder(
		f.store.EXPECT().CreateInvoice(gomock.Any(), gomock.Cond(func(x any) bool {
			in := x.(forms.Invoice)
			return in.CustomerID == "abc" && models.ToCents(in.Amount) == 5000 && in.Status == models.InvoiceStatusPending
		})).Return(nil),
		f.cache.EXPECT().Revalidate(actions.InvoicesPath),
	)

	out := f.ctrl.CreateInvoice(context.Background(), form("customerId", "abc", "amount", "50.00", "status", "pending"))

	assert.Equal(t, actions.Outcome{Redirect: "/dashboard/invoices"}, out)
}

// Scenario C: valid customer.
func TestCreateCustomer_Success(t *testing.T) {
	f := setup(t)
	want := forms.Customer{Name: "Jo", Email: "j@x.com", ImageURL: "https://x/y.png"}
	f.store.EXPECT().CreateCustomer(gomock.Any(), want).Return(nil)
	f.cache.EXPECT().Revalidate(actions.CustomersPath)
	f.cache.EXPECT().Revalidate(actions.InvoicesPath)

	out := f.ctrl.CreateCustomer(context.Background(), form("name", "Jo", "email", "j@x.com", "image", "https://x/y.png"))

	assert.True(t, out.Redirected())
	assert.Equal(t, actions.CustomersPath, out.Redirect)
	assert.False(t, out.Failed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Count("Customer", "Create", "redirected")))
}

func TestCreateCustomer_ReportsExactlyMissingFields(t *testing.T) {
	f := setup(t)

	out := f.ctrl.CreateCustomer(context.Background(), form("name", "Jo"))

	assert.Equal(t, "Missing Fields. Failed to Create Customer.", out.Message)
	assert.Equal(t, []string{"email", "image_url"}, out.Errors.Fields())
}

// Scenario D: persistence failure on update.
func TestUpdateCustomer_PersistenceFailure(t *testing.T) {
	f := setup(t)
	f.store.EXPECT().UpdateCustomer(gomock.Any(), "c1", gomock.Any()).
		Return(services.NewPersistenceError(services.OpUpdate, services.EntityCustomer, errors.New("connection refused")))

	out := f.ctrl.UpdateCustomer(context.Background(), "c1", form("name", "Jo", "email", "j@x.com", "image_url", "k"))

	assert.Equal(t, "Database Error: Failed to Update Customer.", out.Message)
	assert.Empty(t, out.Errors)
	assert.True(t, out.Failed)
	assert.False(t, out.Redirected())
}

func TestPersistenceFailure_NotLoggedByController(t *testing.T) {
	var w loggo.TestWriter
	require.NoError(t, loggo.RegisterWriter("actions-test", &w))
	t.Cleanup(func() { _, _ = loggo.RemoveWriter("actions-test") })

	f := setup(t)
	f.store.EXPECT().UpdateCustomer(gomock.Any(), "c1", gomock.Any()).
		Return(services.NewPersistenceError(services.OpUpdate, services.EntityCustomer, errors.New("connection refused")))
	out := f.ctrl.UpdateCustomer(context.Background(), "c1", form("name", "Jo", "email", "j@x.com", "image_url", "k"))
	require.True(t, out.Failed)

	// the services layer owns the operator log line
	for _, e := range w.Log() {
		assert.NotEqual(t, "acme.actions", e.Module, "unexpected log: %s", e.Message)
	}
}

func TestUpdateInvoice_PlainErrorStillGeneric(t *testing.T) {
	f := setup(t)
	f.store.EXPECT().UpdateInvoice(gomock.Any(), "inv-1", gomock.Any()).Return(errors.New("boom"))

	out := f.ctrl.UpdateInvoice(context.Background(), "inv-1", form("customerId", "c", "amount", "1", "status", "paid"))

	assert.Equal(t, "Database Error: Failed to Update Invoice.", out.Message)
}

func TestUpdateInvoice_IgnoresFormID(t *testing.T) {
	f := setup(t)
	f.store.EXPECT().UpdateInvoice(gomock.Any(), "bound-id", gomock.Any()).Return(nil)
	f.cache.EXPECT().Revalidate(actions.InvoicesPath)

	out := f.ctrl.UpdateInvoice(context.Background(), "bound-id",
		form("id", "other-id", "customerId", "c", "amount", "1", "status", "paid"))

	assert.Equal(t, actions.InvoicesPath, out.Redirect)
}

func TestDeleteInvoice_IdempotentAcknowledgement(t *testing.T) {
	f := setup(t)
	f.store.EXPECT().DeleteInvoice(gomock.Any(), "missing").Return(nil).Times(2)
	f.cache.EXPECT().Revalidate(actions.InvoicesPath).Times(2)

	first := f.ctrl.DeleteInvoice(context.Background(), "missing")
	second := f.ctrl.DeleteInvoice(context.Background(), "missing")

	assert.Equal(t, actions.Outcome{Message: "Deleted Invoice."}, first)
	assert.Equal(t, first, second)
}

func TestDeleteCustomer_Failure(t *testing.T) {
	f := setup(t)
	f.store.EXPECT().DeleteCustomer(gomock.Any(), "c1").Return(errors.New("fk"))

	out := f.ctrl.DeleteCustomer(context.Background(), "c1")

	assert.Equal(t, "Database Error: Failed to Delete Customer.", out.Message)
	assert.True(t, out.Failed)
}

func TestSignup(t *testing.T) {
	f := setup(t)
	f.store.EXPECT().CreateAccount(gomock.Any(), forms.Signup{Email: "a@b.c", Password: "pw"}).Return(nil)

	out := f.ctrl.Signup(context.Background(), form("email", "a@b.c", "password", "pw"))
	assert.Equal(t, actions.LoginPath, out.Redirect)

	invalid := f.ctrl.Signup(context.Background(), form("email", "a@b.c"))
	assert.Equal(t, "Missing Fields. Failed to Create Account.", invalid.Message)
	assert.Equal(t, []string{"password"}, invalid.Errors.Fields())
}

func TestAuthenticate(t *testing.T) {
	login := forms.Login{Email: "a@b.c", Password: "pw"}
	values := form("email", "a@b.c", "password", "pw")

	t.Run("success", func(t *testing.T) {
		f := setup(t)
		f.id.EXPECT().Verify(gomock.Any(), login).Return(&models.User{ID: "u1"}, nil)
		out, err := f.ctrl.Authenticate(context.Background(), values)
		require.NoError(t, err)
		assert.Equal(t, actions.DashboardPath, out.Redirect)
		assert.Equal(t, "u1", out.Subject)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		f := setup(t)
		f.id.EXPECT().Verify(gomock.Any(), login).Return(nil, &identity.Error{Kind: identity.KindInvalidCredentials})
		out, err := f.ctrl.Authenticate(context.Background(), values)
		require.NoError(t, err)
		assert.Equal(t, actions.MsgInvalidCredentials, out.Message)
		assert.False(t, out.Redirected())
	})

	t.Run("other category", func(t *testing.T) {
		f := setup(t)
		f.id.EXPECT().Verify(gomock.Any(), login).Return(nil, &identity.Error{Kind: identity.KindCorruptRecord})
		out, err := f.ctrl.Authenticate(context.Background(), values)
		require.NoError(t, err)
		assert.Equal(t, actions.MsgAuthFailed, out.Message)
	})

	t.Run("unexpected fault propagates", func(t *testing.T) {
		f := setup(t)
		boom := errors.New("identity backend down")
		f.id.EXPECT().Verify(gomock.Any(), login).Return(nil, boom)
		_, err := f.ctrl.Authenticate(context.Background(), values)
		assert.ErrorIs(t, err, boom)
	})
}

func TestNilMetricsIsAllowed(t *testing.T) {
	mc := gomock.NewController(t)
	c := actions.NewController(mocks.NewMockMutator(mc), mocks.NewMockInvalidator(mc), mocks.NewMockAuthenticator(mc), nil)
	out := c.CreateCustomer(context.Background(), url.Values{})
	assert.True(t, out.Failed)
}
