package posting

import (
	"errors"
	"testing"
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/money"
)

func debitLine(account int64, cents int64) models.JournalLine {
	return models.JournalLine{
		AccountID: account,
		Debit:     money.FromMinorUnits(cents, "USD"),
		Credit:    money.Zero("USD"),
	}
}

func creditLine(account int64, cents int64) models.JournalLine {
	return models.JournalLine{
		AccountID: account,
		Debit:     money.Zero("USD"),
		Credit:    money.FromMinorUnits(cents, "USD"),
	}
}

func draftEntry(lines ...models.JournalLine) *models.JournalEntry {
	return &models.JournalEntry{
		ID:       "JE-TEST-1",
		Date:     "2026-01-15",
		Currency: "USD",
		Status:   models.StatusDraft,
		Lines:    lines,
		Version:  1,
	}
}

func TestValidateBalanced(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(debitLine(1, 50000), creditLine(2, 50000))
	if err := en.Validate(entry); err != nil {
		t.Fatalf("balanced entry should validate, got %v", err)
	}
}

func TestValidateBalancedMultiLine(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(
		debitLine(1, 30000),
		debitLine(2, 20000),
		creditLine(3, 50000),
	)
	if err := en.Validate(entry); err != nil {
		t.Fatalf("multi-line balanced entry should validate, got %v", err)
	}
}

func TestValidateUnbalanced(t *testing.T) {
	en := NewEngine()
	tests := []struct {
		name  string
		entry *models.JournalEntry
	}{
		{"one cent skew", draftEntry(debitLine(1, 50001), creditLine(2, 50000))},
		{"large skew", draftEntry(debitLine(1, 100000), creditLine(2, 50000))},
		{"credit heavy", draftEntry(debitLine(1, 100), creditLine(2, 200))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := en.Validate(tc.entry)
			var unbalanced *UnbalancedEntryError
			if !errors.As(err, &unbalanced) {
				t.Fatalf("expected UnbalancedEntryError, got %v", err)
			}
		})
	}
}

func TestValidateTooFewLines(t *testing.T) {
	en := NewEngine()
	err := en.Validate(draftEntry(debitLine(1, 100)))
	var empty *EmptyEntryError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyEntryError, got %v", err)
	}
	if empty.LineCount != 1 {
		t.Errorf("expected line count 1, got %d", empty.LineCount)
	}
}

func TestValidateInvalidLines(t *testing.T) {
	en := NewEngine()

	bothSides := models.JournalLine{
		AccountID: 1,
		Debit:     money.FromMinorUnits(100, "USD"),
		Credit:    money.FromMinorUnits(100, "USD"),
	}
	neither := models.JournalLine{
		AccountID: 1,
		Debit:     money.Zero("USD"),
		Credit:    money.Zero("USD"),
	}
	negative := models.JournalLine{
		AccountID: 1,
		Debit:     money.FromMinorUnits(-100, "USD"),
		Credit:    money.Zero("USD"),
	}
	foreign := models.JournalLine{
		AccountID: 1,
		Debit:     money.FromMinorUnits(100, "EUR"),
		Credit:    money.Zero("EUR"),
	}

	tests := []struct {
		name string
		line models.JournalLine
	}{
		{"both sides set", bothSides},
		{"neither side set", neither},
		{"negative amount", negative},
		{"wrong currency", foreign},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := en.Validate(draftEntry(tc.line, creditLine(2, 100)))
			var invalid *InvalidLineError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidLineError, got %v", err)
			}
			if invalid.Index != 0 {
				t.Errorf("expected index 0, got %d", invalid.Index)
			}
		})
	}
}

func TestPostDraft(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(debitLine(1, 50000), creditLine(2, 50000))
	now := time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)

	posted, err := en.Post(entry, now)
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if posted.Status != models.StatusPosted {
		t.Errorf("expected posted status, got %s", posted.Status)
	}
	if posted.PostedAt == nil || !posted.PostedAt.Equal(now) {
		t.Errorf("expected PostedAt %v, got %v", now, posted.PostedAt)
	}
	if posted.Version != entry.Version+1 {
		t.Errorf("expected version bump to %d, got %d", entry.Version+1, posted.Version)
	}
	// Input must not be mutated.
	if entry.Status != models.StatusDraft {
		t.Error("Post mutated its input")
	}
}

func TestPostRejectsUnbalanced(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(debitLine(1, 100), creditLine(2, 200))
	if _, err := en.Post(entry, time.Now()); err == nil {
		t.Fatal("expected validation failure on post")
	}
}

func TestPostAlreadyPosted(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(debitLine(1, 100), creditLine(2, 100))
	posted, err := en.Post(entry, time.Now())
	if err != nil {
		t.Fatalf("first post failed: %v", err)
	}

	_, err = en.Post(posted, time.Now())
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError on second post, got %v", err)
	}
	if transition.From != models.StatusPosted {
		t.Errorf("expected transition from posted, got %s", transition.From)
	}
}

func TestUnpostThenPostRoundTrip(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(debitLine(1, 50000), creditLine(2, 50000))

	posted, err := en.Post(entry, time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	draft, err := en.Unpost(posted)
	if err != nil {
		t.Fatalf("unpost failed: %v", err)
	}
	if draft.Status != models.StatusDraft || draft.PostedAt != nil {
		t.Fatalf("unpost should yield a draft without PostedAt, got %s %v", draft.Status, draft.PostedAt)
	}

	reposted, err := en.Post(draft, time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("repost failed: %v", err)
	}
	if reposted.Status != models.StatusPosted {
		t.Errorf("expected posted after round trip, got %s", reposted.Status)
	}
	if len(reposted.Lines) != len(entry.Lines) {
		t.Errorf("lines changed across round trip")
	}
}

func TestUnpostRequiresPosted(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(debitLine(1, 100), creditLine(2, 100))
	if _, err := en.Unpost(entry); err == nil {
		t.Fatal("expected error unposting a draft")
	}
}

func TestReject(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(debitLine(1, 100), creditLine(2, 100))

	rejected, err := en.Reject(entry, "duplicate of JE-44")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != models.StatusRejected || rejected.RejectReason != "duplicate of JE-44" {
		t.Errorf("unexpected rejected entry: %+v", rejected)
	}

	if _, err := en.Reject(entry, "   "); err == nil {
		t.Error("expected error on blank reason")
	}

	posted, _ := en.Post(entry, time.Now())
	if _, err := en.Reject(posted, "too late"); err == nil {
		t.Error("expected error rejecting a posted entry")
	}
}

func TestCheckMutable(t *testing.T) {
	en := NewEngine()
	entry := draftEntry(debitLine(1, 100), creditLine(2, 100))

	if err := en.CheckMutable(entry); err != nil {
		t.Errorf("draft should be mutable, got %v", err)
	}

	posted, _ := en.Post(entry, time.Now())
	err := en.CheckMutable(posted)
	var immutable *ImmutableEntryError
	if !errors.As(err, &immutable) {
		t.Fatalf("expected ImmutableEntryError, got %v", err)
	}
	if immutable.EntryID != entry.ID {
		t.Errorf("error should carry the entry id")
	}

	rejected, _ := en.Reject(entry, "nope")
	if err := en.CheckMutable(rejected); err == nil {
		t.Error("rejected entries should not be mutable")
	}
}
