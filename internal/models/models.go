package models

import (
	"encoding/json"
	"time"

	"ledger-service/internal/money"
)

// AccountType classifies a ledger account.
type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	}
	return false
}

// Side is the accounting side of a posting or an account's normal balance.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// NormalBalanceFor returns the side on which increases to the given
// account type are recorded: asset/expense on debit, the rest on credit.
func NormalBalanceFor(t AccountType) Side {
	switch t {
	case TypeAsset, TypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// LedgerAccount is one node in the chart of accounts.
type LedgerAccount struct {
	ID            int64       `db:"id" json:"id"`
	Code          string      `db:"code" json:"code"`
	Name          string      `db:"name" json:"name"`
	Type          AccountType `db:"account_type" json:"type"`
	NormalBalance Side        `db:"normal_balance" json:"normal_balance"`
	ParentID      *int64      `db:"parent_id" json:"parent_id,omitempty"`
	IsActive      bool        `db:"is_active" json:"is_active"`
	CreatedAt     time.Time   `db:"created_at" json:"-"`
	UpdatedAt     time.Time   `db:"updated_at" json:"-"`
}

// JournalLine is one debit-or-credit posting against an account.
// Exactly one of Debit/Credit is non-zero on a valid line.
type JournalLine struct {
	ID          int64       `db:"id" json:"id,omitempty"`
	AccountID   int64       `db:"account_id" json:"account_id"`
	Description string      `db:"description" json:"description,omitempty"`
	Debit       money.Money `db:"-" json:"debit"`
	Credit      money.Money `db:"-" json:"credit"`
}

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "draft"
	StatusApproved EntryStatus = "approved"
	StatusPosted   EntryStatus = "posted"
	StatusRejected EntryStatus = "rejected"
)

// JournalEntry is a balanced set of journal lines with lifecycle state.
// Version guards optimistic concurrency on state transitions.
type JournalEntry struct {
	ID           string        `db:"id" json:"id"`
	Date         string        `db:"entry_date" json:"date"`
	Reference    string        `db:"reference" json:"reference"`
	Description  string        `db:"description" json:"description"`
	Currency     string        `db:"currency" json:"currency"`
	Lines        []JournalLine `db:"-" json:"lines"`
	Status       EntryStatus   `db:"status" json:"status"`
	RejectReason string        `db:"reject_reason" json:"reject_reason,omitempty"`
	Version      int64         `db:"version" json:"version"`
	PostedAt     *time.Time    `db:"posted_at" json:"posted_at,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"-"`
	UpdatedAt    time.Time     `db:"updated_at" json:"-"`
}

// TotalDebits sums the debit side of all lines. Fails on mixed currencies.
func (e *JournalEntry) TotalDebits() (money.Money, error) {
	total := money.Zero(e.Currency)
	for _, l := range e.Lines {
		if l.Debit.IsZero() {
			continue
		}
		sum, err := total.Add(l.Debit)
		if err != nil {
			return money.Money{}, err
		}
		total = sum
	}
	return total, nil
}

// TotalCredits sums the credit side of all lines.
func (e *JournalEntry) TotalCredits() (money.Money, error) {
	total := money.Zero(e.Currency)
	for _, l := range e.Lines {
		if l.Credit.IsZero() {
			continue
		}
		sum, err := total.Add(l.Credit)
		if err != nil {
			return money.Money{}, err
		}
		total = sum
	}
	return total, nil
}

// BankStatement is a statement imported for one bank account.
type BankStatement struct {
	ID            int64       `db:"id" json:"id"`
	BankAccountID int64       `db:"bank_account_id" json:"bank_account_id"`
	StatementDate string      `db:"statement_date" json:"statement_date"`
	Balance       money.Money `db:"-" json:"balance"`
	CreatedAt     time.Time   `db:"created_at" json:"-"`
}

// BankStatementLine is one transaction reported by the bank.
type BankStatementLine struct {
	ID          int64       `db:"id" json:"id"`
	StatementID int64       `db:"statement_id" json:"statement_id"`
	Date        string      `db:"line_date" json:"date"`
	Description string      `db:"description" json:"description"`
	Reference   string      `db:"reference" json:"reference"`
	Amount      money.Money `db:"-" json:"amount"`
}

// ReconciliationRecord is derived on demand from posted transactions
// plus the latest bank statement; it is never stored independently.
type ReconciliationRecord struct {
	BankAccountID     int64       `json:"bank_account_id"`
	StatementDate     string      `json:"statement_date"`
	StatementBalance  money.Money `json:"statement_balance"`
	BookBalance       money.Money `json:"book_balance"`
	Difference        money.Money `json:"difference"`
	Classification    string      `json:"classification"`
	ReconciledCount   int         `json:"reconciled_count"`
	UnreconciledCount int         `json:"unreconciled_count"`
}

// AuditEvent records a lifecycle action against a journal entry.
type AuditEvent struct {
	ID        int64           `db:"id" json:"id"`
	EntryID   string          `db:"entry_id" json:"entry_id"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details,omitempty"`
	UserID    string          `db:"user_id" json:"user_id"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// AuditAction constants
const (
	AuditActionCreated  = "created"
	AuditActionUpdated  = "updated"
	AuditActionPosted   = "posted"
	AuditActionUnposted = "unposted"
	AuditActionRejected = "rejected"
	AuditActionDeleted  = "deleted"
)
