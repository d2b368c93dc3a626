package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an optimistic version check fails,
	// meaning another transition won the race for the same entry.
	ErrConflict = errors.New("entry was modified concurrently")
)

// PostedAccountLine is the projection used by reconciliation: one
// posted journal line's signed effect on a single account.
type PostedAccountLine struct {
	EntryID      string
	EntryDate    string
	Reference    string
	DebitAmount  string
	CreditAmount string
	Currency     string
}
