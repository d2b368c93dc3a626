package posting

import (
	"fmt"
	"strings"
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/money"
)

// UnbalancedEntryError reports debit and credit totals that differ.
// Fixed-point arithmetic means the tolerance is exactly zero.
type UnbalancedEntryError struct {
	Debits  money.Money
	Credits money.Money
}

func (e *UnbalancedEntryError) Error() string {
	return fmt.Sprintf("entry is not balanced: debits %s, credits %s", e.Debits, e.Credits)
}

// EmptyEntryError reports an entry with fewer than two lines.
type EmptyEntryError struct {
	LineCount int
}

func (e *EmptyEntryError) Error() string {
	return fmt.Sprintf("entry needs at least 2 lines, has %d", e.LineCount)
}

// InvalidLineError reports a line that has both or neither side set,
// a negative amount, or a foreign currency.
type InvalidLineError struct {
	Index  int
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("line %d is invalid: %s", e.Index, e.Reason)
}

// InvalidTransitionError reports a lifecycle operation applied in the
// wrong state.
type InvalidTransitionError struct {
	From models.EntryStatus
	To   models.EntryStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition entry from %s to %s", e.From, e.To)
}

// ImmutableEntryError reports a mutation attempt on a posted entry.
type ImmutableEntryError struct {
	EntryID string
}

func (e *ImmutableEntryError) Error() string {
	return fmt.Sprintf("entry %s is posted and immutable", e.EntryID)
}

// Engine validates journal entries and drives their lifecycle. It is
// stateless: every operation is a pure function over the caller's
// entry, returning a transformed copy. Persistence and concurrency
// control belong to the store behind the service layer.
type Engine struct{}

// NewEngine returns a posting engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Validate checks the double-entry invariants: at least two lines,
// each line carrying exactly one positive side in the entry currency,
// and debit and credit totals equal to the cent.
func (en *Engine) Validate(entry *models.JournalEntry) error {
	if len(entry.Lines) < 2 {
		return &EmptyEntryError{LineCount: len(entry.Lines)}
	}

	for i, line := range entry.Lines {
		hasDebit := !line.Debit.IsZero()
		hasCredit := !line.Credit.IsZero()

		switch {
		case hasDebit && hasCredit:
			return &InvalidLineError{Index: i, Reason: "both debit and credit set"}
		case !hasDebit && !hasCredit:
			return &InvalidLineError{Index: i, Reason: "neither debit nor credit set"}
		case line.Debit.IsNegative() || line.Credit.IsNegative():
			return &InvalidLineError{Index: i, Reason: "negative amount"}
		}

		amount := line.Debit
		if hasCredit {
			amount = line.Credit
		}
		if amount.Currency != entry.Currency {
			return &InvalidLineError{
				Index:  i,
				Reason: fmt.Sprintf("currency %s does not match entry currency %s", amount.Currency, entry.Currency),
			}
		}
	}

	debits, err := entry.TotalDebits()
	if err != nil {
		return err
	}
	credits, err := entry.TotalCredits()
	if err != nil {
		return err
	}
	if !debits.Equal(credits) {
		return &UnbalancedEntryError{Debits: debits, Credits: credits}
	}
	return nil
}

// Post validates the entry and transitions draft (or approved) to
// posted. The returned copy carries the posting timestamp and a bumped
// version; the caller persists it under an optimistic version check.
func (en *Engine) Post(entry *models.JournalEntry, at time.Time) (*models.JournalEntry, error) {
	if entry.Status != models.StatusDraft && entry.Status != models.StatusApproved {
		return nil, &InvalidTransitionError{From: entry.Status, To: models.StatusPosted}
	}
	if err := en.Validate(entry); err != nil {
		return nil, err
	}

	posted := cloneEntry(entry)
	posted.Status = models.StatusPosted
	posted.PostedAt = &at
	posted.Version++
	return posted, nil
}

// Unpost reverses a posted entry back to draft. This is an explicit,
// audited action; the entry's balance contributions are withdrawn by
// virtue of the status change, never by deleting lines.
func (en *Engine) Unpost(entry *models.JournalEntry) (*models.JournalEntry, error) {
	if entry.Status != models.StatusPosted {
		return nil, &InvalidTransitionError{From: entry.Status, To: models.StatusDraft}
	}

	draft := cloneEntry(entry)
	draft.Status = models.StatusDraft
	draft.PostedAt = nil
	draft.Version++
	return draft, nil
}

// Reject transitions a draft to rejected with a mandatory reason.
func (en *Engine) Reject(entry *models.JournalEntry, reason string) (*models.JournalEntry, error) {
	if entry.Status != models.StatusDraft {
		return nil, &InvalidTransitionError{From: entry.Status, To: models.StatusRejected}
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("rejection requires a reason")
	}

	rejected := cloneEntry(entry)
	rejected.Status = models.StatusRejected
	rejected.RejectReason = reason
	rejected.Version++
	return rejected, nil
}

// CheckMutable returns an ImmutableEntryError when the entry's lines
// may no longer change. Drafts are the only editable state.
func (en *Engine) CheckMutable(entry *models.JournalEntry) error {
	if entry.Status == models.StatusDraft {
		return nil
	}
	if entry.Status == models.StatusPosted {
		return &ImmutableEntryError{EntryID: entry.ID}
	}
	return &InvalidTransitionError{From: entry.Status, To: models.StatusDraft}
}

func cloneEntry(entry *models.JournalEntry) *models.JournalEntry {
	out := *entry
	out.Lines = make([]models.JournalLine, len(entry.Lines))
	copy(out.Lines, entry.Lines)
	if entry.PostedAt != nil {
		at := *entry.PostedAt
		out.PostedAt = &at
	}
	return &out
}
