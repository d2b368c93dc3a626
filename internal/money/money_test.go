package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddSameCurrency(t *testing.T) {
	a := FromMinorUnits(1050, "USD")
	b := FromMinorUnits(950, "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if got := sum.MinorUnits(); got != 2000 {
		t.Errorf("expected 2000 minor units, got %d", got)
	}
	if sum.Currency != "USD" {
		t.Errorf("expected USD, got %s", sum.Currency)
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	a := FromMinorUnits(100, "USD")
	b := FromMinorUnits(100, "EUR")

	_, err := a.Add(b)
	var mismatch *CurrencyMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected CurrencyMismatchError, got %v", err)
	}
	if mismatch.Left != "USD" || mismatch.Right != "EUR" {
		t.Errorf("unexpected error fields: %+v", mismatch)
	}
}

func TestSub(t *testing.T) {
	a, _ := FromString("1000.00", "USD")
	b, _ := FromString("950.00", "USD")

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub returned error: %v", err)
	}
	if diff.StringFixed() != "50.00" {
		t.Errorf("expected 50.00, got %s", diff.StringFixed())
	}
}

func TestSubCurrencyMismatch(t *testing.T) {
	a := FromMinorUnits(100, "USD")
	b := FromMinorUnits(100, "GBP")
	if _, err := a.Sub(b); err == nil {
		t.Fatal("expected error on mixed currencies")
	}
}

func TestFromStringRejectsGarbage(t *testing.T) {
	if _, err := FromString("not-a-number", "USD"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExactDecimalArithmetic(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, the classic binary float trap.
	a, _ := FromString("0.10", "USD")
	b, _ := FromString("0.20", "USD")
	sum, _ := a.Add(b)
	if !sum.Amount.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("expected exactly 0.3, got %s", sum.Amount)
	}
}

func TestCmpAndZero(t *testing.T) {
	z := Zero("USD")
	if !z.IsZero() {
		t.Error("Zero should be zero")
	}

	a := FromMinorUnits(500, "USD")
	c, err := a.Cmp(z)
	if err != nil || c != 1 {
		t.Errorf("expected 1, got %d (err %v)", c, err)
	}
	c, err = z.Cmp(a)
	if err != nil || c != -1 {
		t.Errorf("expected -1, got %d (err %v)", c, err)
	}
	if _, err := a.Cmp(FromMinorUnits(1, "JPY")); err == nil {
		t.Error("expected currency mismatch on Cmp")
	}
}

func TestNegAndSigns(t *testing.T) {
	a := FromMinorUnits(250, "USD")
	n := a.Neg()
	if !n.IsNegative() || a.IsNegative() {
		t.Error("Neg should flip sign without mutating the receiver")
	}
	if !a.IsPositive() {
		t.Error("expected positive amount")
	}
}

func TestString(t *testing.T) {
	a := FromMinorUnits(123456, "EUR")
	if a.String() != "1234.56 EUR" {
		t.Errorf("unexpected display form %q", a.String())
	}
}
