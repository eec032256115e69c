// Package validation holds the rule primitives shared by every form schema.
// Rules never stop at the first failure: each one appends to the field's
// message list so a single pass reports every violated field.
package validation

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format stored for invoices.
const DateLayout = "2006-01-02"

// Violations maps a field name to its ordered error messages.
type Violations map[string][]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add appends msg to the messages of field.
func (v Violations) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Has reports whether field has at least one message.
func (v Violations) Has(field string) bool { return len(v[field]) > 0 }

// First returns the first message recorded for field, or "".
func (v Violations) First(field string) string {
	if msgs := v[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the violated field names in sorted order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Required records msg when value is blank and returns the trimmed value.
func Required(field, value, msg string, v Violations) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, msg)
	}
	return value
}

// PositiveDecimal coerces value to a decimal and records msg unless the
// result is strictly positive. Blank or non-numeric input is a violation.
func PositiveDecimal(field, value, msg string, v Violations) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || !d.IsPositive() {
		v.Add(field, msg)
		return decimal.Zero
	}
	return d
}

// OneOf records msg unless value is exactly one of allowed.
func OneOf(field, value, msg string, v Violations, allowed ...string) string {
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	v.Add(field, msg)
	return value
}

// OptionalDate accepts an absent value; a present one must be a calendar date.
func OptionalDate(field, value, msg string, v Violations) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		v.Add(field, msg)
		return ""
	}
	return value
}
