package services

import (
	"errors"
	"testing"

	"ledger-service/internal/money"
	"ledger-service/internal/repositories"
)

func TestBuildEntryParsesAmounts(t *testing.T) {
	s := &LedgerService{}
	entry, err := s.buildEntry("JE-1", EntryInput{
		Date:     "2026-01-15",
		Currency: "USD",
		Lines: []LineInput{
			{AccountID: 1, Debit: "500.00"},
			{AccountID: 2, Credit: "500.00"},
		},
	})
	if err != nil {
		t.Fatalf("buildEntry returned error: %v", err)
	}
	if len(entry.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(entry.Lines))
	}
	if entry.Lines[0].Debit.StringFixed() != "500.00" {
		t.Errorf("unexpected debit %s", entry.Lines[0].Debit.StringFixed())
	}
	if !entry.Lines[0].Credit.IsZero() {
		t.Errorf("credit side should default to zero")
	}
}

func TestBuildEntryValidation(t *testing.T) {
	s := &LedgerService{}
	tests := []struct {
		name  string
		input EntryInput
	}{
		{"missing date", EntryInput{Currency: "USD"}},
		{"bad date format", EntryInput{Date: "15/01/2026", Currency: "USD"}},
		{"missing currency", EntryInput{Date: "2026-01-15"}},
		{"unparseable amount", EntryInput{
			Date: "2026-01-15", Currency: "USD",
			Lines: []LineInput{{AccountID: 1, Debit: "abc"}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.buildEntry("JE-1", tc.input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestToBookTransactionsSignConvention(t *testing.T) {
	lines := []repositories.PostedAccountLine{
		{EntryID: "JE-1", EntryDate: "2026-01-10", DebitAmount: "100.00", CreditAmount: "0.00", Currency: "USD"},
		{EntryID: "JE-2", EntryDate: "2026-01-11", DebitAmount: "0.00", CreditAmount: "40.00", Currency: "USD"},
	}

	txns, err := toBookTransactions(lines, "USD")
	if err != nil {
		t.Fatalf("toBookTransactions returned error: %v", err)
	}
	if txns[0].Amount.StringFixed() != "100.00" {
		t.Errorf("debit should increase the account, got %s", txns[0].Amount.StringFixed())
	}
	if txns[1].Amount.StringFixed() != "-40.00" {
		t.Errorf("credit should decrease the account, got %s", txns[1].Amount.StringFixed())
	}
}

func TestToBookTransactionsBadAmount(t *testing.T) {
	lines := []repositories.PostedAccountLine{
		{EntryID: "JE-1", DebitAmount: "oops", CreditAmount: "0.00", Currency: "USD"},
	}
	if _, err := toBookTransactions(lines, "USD"); err == nil {
		t.Error("expected error on unparseable stored amount")
	}
}

func TestToBookTransactionsForeignCurrencyLine(t *testing.T) {
	lines := []repositories.PostedAccountLine{
		{EntryID: "JE-1", EntryDate: "2026-01-10", DebitAmount: "100.00", CreditAmount: "0.00", Currency: "EUR"},
	}

	_, err := toBookTransactions(lines, "USD")
	if err == nil {
		t.Fatal("a EUR line must not be summed into a USD book balance")
	}
	var mismatch *money.CurrencyMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected CurrencyMismatchError, got %v", err)
	}
	if mismatch.Left != "EUR" || mismatch.Right != "USD" {
		t.Errorf("unexpected mismatch pair %s vs %s", mismatch.Left, mismatch.Right)
	}
}
