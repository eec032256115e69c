// Package forms converts raw submitted fields into typed, checked records.
//
// Each Parse function is pure: it returns the typed record together with
// the full set of violations. Callers must treat the record as unusable
// whenever the returned violations are not empty.
package forms

import (
	"math"
	"net/url"
	"strings"

	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/diewo77/acme-dashboard/validation"
	"github.com/shopspring/decimal"
)

// Field names, as posted by the forms and used as error keys.
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
	FieldDate       = "date"
	FieldName       = "name"
	FieldEmail      = "email"
	FieldImageURL   = "image_url"
	FieldPassword   = "password"
)

// User-facing messages.
const (
	MsgSelectCustomer = "Please select a customer."
	MsgAmount         = "Please enter an amount greater than $0."
	MsgStatus         = "Please select an invoice status."
	MsgDate           = "Please enter a valid date."
	MsgCustomerName   = "Please input customer name."
	MsgCustomerEmail  = "Please input customer email."
	MsgCustomerImage  = "Please upload a customer image."
	MsgEmail          = "Please input your email."
	MsgPassword       = "Please input your password."
)

// Invoice is a checked invoice submission.
type Invoice struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     models.InvoiceStatus
	// Date is empty when the form did not carry one.
	Date string
}

// Customer is a checked customer submission.
type Customer struct {
	Name     string
	Email    string
	ImageURL string
}

// Signup is a checked account creation request.
type Signup struct {
	Name     string
	Email    string
	Password string
}

// Login carries the credentials handed to the identity collaborator.
type Login struct {
	Email    string
	Password string
}

// ParseInvoice validates an invoice form. Any "id" field is ignored.
func ParseInvoice(values url.Values) (Invoice, validation.Violations) {
	v := make(validation.Violations)
	var inv Invoice
	inv.CustomerID = validation.Required(FieldCustomerID, values.Get(FieldCustomerID), MsgSelectCustomer, v)
	inv.Amount = validation.PositiveDecimal(FieldAmount, values.Get(FieldAmount), MsgAmount, v)
	if !v.Has(FieldAmount) && !centsInRange(inv.Amount) {
		v.Add(FieldAmount, MsgAmount)
	}
	statuses := make([]string, len(models.InvoiceStatuses))
	for i, s := range models.InvoiceStatuses {
		statuses[i] = string(s)
	}
	inv.Status = models.InvoiceStatus(validation.OneOf(FieldStatus, values.Get(FieldStatus), MsgStatus, v, statuses...))
	inv.Date = validation.OptionalDate(FieldDate, values.Get(FieldDate), MsgDate, v)
	return inv, v
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// centsInRange reports whether amount is at least one cent once truncated
// and still fits the int64 minor-unit column.
func centsInRange(amount decimal.Decimal) bool {
	cents := amount.Shift(2).Truncate(0)
	return cents.GreaterThanOrEqual(decimal.NewFromInt(1)) && cents.LessThanOrEqual(maxCents)
}

// ParseCustomer validates a customer form. The image reference comes from
// the upload service and is only required to be present. Fields are also
// accepted under their upload-form names (customerName, customerEmail,
// customerImage or image).
func ParseCustomer(values url.Values) (Customer, validation.Violations) {
	v := make(validation.Violations)
	return Customer{
		Name:     validation.Required(FieldName, firstOf(values, FieldName, "customerName"), MsgCustomerName, v),
		Email:    validation.Required(FieldEmail, firstOf(values, FieldEmail, "customerEmail"), MsgCustomerEmail, v),
		ImageURL: validation.Required(FieldImageURL, firstOf(values, FieldImageURL, "customerImage", "image"), MsgCustomerImage, v),
	}, v
}

func firstOf(values url.Values, keys ...string) string {
	for _, k := range keys {
		if s := values.Get(k); s != "" {
			return s
		}
	}
	return ""
}

// ParseSignup validates an account creation form.
func ParseSignup(values url.Values) (Signup, validation.Violations) {
	v := make(validation.Violations)
	s := Signup{
		Name:  values.Get(FieldName),
		Email: validation.Required(FieldEmail, values.Get(FieldEmail), MsgEmail, v),
	}
	// passwords are taken as typed, surrounding spaces included
	s.Password = values.Get(FieldPassword)
	if s.Password == "" {
		v.Add(FieldPassword, MsgPassword)
	}
	return s, v
}

// ParseLogin extracts credentials without judging them; an empty field is
// left for the identity collaborator to reject.
func ParseLogin(values url.Values) Login {
	// emails are trimmed as on signup, passwords are taken as typed
	return Login{Email: strings.TrimSpace(values.Get(FieldEmail)), Password: values.Get(FieldPassword)}
}
