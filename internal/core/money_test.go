package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true}, // zero-amount records are allowed
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyDecimalRoundTrip(t *testing.T) {
	m := Money{Cents: 12345}
	if got := m.Decimal().StringFixed(2); got != "123.45" {
		t.Fatalf("expected 123.45, got %s", got)
	}
	if back := MoneyFromDecimal(m.Decimal()); back != m {
		t.Fatalf("round-trip mismatch: %v", back)
	}
	// Thirds round half-up at the cent.
	third := decimal.New(100, 0).Div(decimal.New(3, 0))
	if got := MoneyFromDecimal(third).Cents; got != 3333 {
		t.Fatalf("expected 3333, got %d", got)
	}
}

func TestMoneyDisplay(t *testing.T) {
	if got := (Money{Cents: 1234}).Display("$"); got != "$12.34" {
		t.Fatalf("got %s", got)
	}
	if got := (Money{Cents: 0}).Display("€"); got != "€0.00" {
		t.Fatalf("got %s", got)
	}
	if got := FormatAmount(decimal.New(-150, -2), "$"); got != "-$1.50" {
		t.Fatalf("got %s", got)
	}
}
