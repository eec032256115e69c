package validation

import "testing"

func TestRequired(t *testing.T) {
	v := make(Violations)
	if got := Required("name", "  Jo ", "missing", v); got != "Jo" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	Required("email", "   ", "missing email", v)
	if v.Has("name") {
		t.Fatalf("name should be valid")
	}
	if v.First("email") != "missing email" {
		t.Fatalf("unexpected email messages: %#v", v["email"])
	}
}

func TestPositiveDecimal(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"10", true},
		{" 50.00 ", true},
		{"1e2", true},
		{"0", false},
		{"-3", false},
		{"", false},
		{"abc", false},
	}
	for _, tt := range tests {
		v := make(Violations)
		PositiveDecimal("amount", tt.in, "bad", v)
		if v.Empty() != tt.valid {
			t.Errorf("PositiveDecimal(%q) valid=%v, want %v", tt.in, v.Empty(), tt.valid)
		}
	}
}

func TestOneOf(t *testing.T) {
	v := make(Violations)
	OneOf("status", "paid", "bad", v, "pending", "paid")
	OneOf("other", "PAID", "bad", v, "pending", "paid")
	if v.Has("status") || !v.Has("other") {
		t.Fatalf("unexpected violations: %#v", v)
	}
}

func TestOptionalDate(t *testing.T) {
	v := make(Violations)
	if got := OptionalDate("date", "", "bad", v); got != "" || !v.Empty() {
		t.Fatalf("absent date must be accepted")
	}
	if got := OptionalDate("date", "2024-02-29", "bad", v); got != "2024-02-29" {
		t.Fatalf("got %q", got)
	}
	OptionalDate("date", "29/02/2024", "bad", v)
	if !v.Has("date") {
		t.Fatalf("expected violation for malformed date")
	}
}

func TestViolationsCollectsMultipleMessages(t *testing.T) {
	v := make(Violations)
	v.Add("amount", "first")
	v.Add("amount", "second")
	v.Add("customerId", "x")
	if len(v["amount"]) != 2 || v.First("amount") != "first" {
		t.Fatalf("messages must keep order: %#v", v["amount"])
	}
	fields := v.Fields()
	if len(fields) != 2 || fields[0] != "amount" || fields[1] != "customerId" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
