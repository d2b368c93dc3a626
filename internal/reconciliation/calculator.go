package reconciliation

import (
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/money"
)

// Classification of a statement-vs-book difference.
const (
	StatusReconciled      = "reconciled"
	StatusStatementHigher = "statement_higher"
	StatusBooksHigher     = "books_higher"
)

// Date window inside which a book transaction may still match a
// statement line carrying the same amount.
const DateToleranceDays = 3

// BookTransaction is one posted journal line's effect on the bank
// account under reconciliation, flattened for matching.
type BookTransaction struct {
	EntryID   string
	Date      string
	Reference string
	Amount    money.Money
}

// Summary reports the outcome of matching book transactions against
// statement lines. Counts, not the full objects, travel to the UI.
type Summary struct {
	ReconciledCount   int         `json:"reconciled_count"`
	UnreconciledCount int         `json:"unreconciled_count"`
	MatchedAmount     money.Money `json:"matched_amount"`
	UnmatchedAmount   money.Money `json:"unmatched_amount"`
}

// Calculator compares bank statement balances against book balances
// and matches statement lines to posted transactions. All methods are
// pure; the service layer supplies the data.
type Calculator struct{}

// NewCalculator returns a reconciliation calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ComputeDifference returns statementBalance - bookBalance.
func (c *Calculator) ComputeDifference(statementBalance, bookBalance money.Money) (money.Money, error) {
	return statementBalance.Sub(bookBalance)
}

// Classify maps a difference to its investigation bucket: a positive
// difference points at deposits missing from the books, a negative one
// at outstanding checks or uncleared debits.
func (c *Calculator) Classify(difference money.Money) string {
	switch {
	case difference.IsZero():
		return StatusReconciled
	case difference.IsPositive():
		return StatusStatementHigher
	default:
		return StatusBooksHigher
	}
}

// Summarize partitions posted book transactions dated on or before the
// cutoff into reconciled (matched against a statement line) and
// unreconciled sets. Matching runs two passes: exact amount plus
// reference first, then exact amount within the date window. Each
// statement line is consumed at most once. The transactions must share
// a currency; a mixed batch fails rather than producing a partial sum.
func (c *Calculator) Summarize(transactions []BookTransaction, lines []models.BankStatementLine, cutoff string) (Summary, error) {
	var eligible []BookTransaction
	for _, tx := range transactions {
		if cutoff == "" || tx.Date <= cutoff {
			eligible = append(eligible, tx)
		}
	}

	usedLines := make(map[int64]bool, len(lines))
	matched := make(map[int]bool, len(eligible))

	for i, tx := range eligible {
		for _, line := range lines {
			if usedLines[line.ID] {
				continue
			}
			if tx.Reference != "" && tx.Reference == line.Reference && tx.Amount.Equal(line.Amount) {
				usedLines[line.ID] = true
				matched[i] = true
				break
			}
		}
	}

	for i, tx := range eligible {
		if matched[i] {
			continue
		}
		for _, line := range lines {
			if usedLines[line.ID] {
				continue
			}
			if tx.Amount.Equal(line.Amount) && withinDateWindow(tx.Date, line.Date) {
				usedLines[line.ID] = true
				matched[i] = true
				break
			}
		}
	}

	summary := Summary{}
	currency := ""
	if len(eligible) > 0 {
		currency = eligible[0].Amount.Currency
	}
	summary.MatchedAmount = money.Zero(currency)
	summary.UnmatchedAmount = money.Zero(currency)

	for i, tx := range eligible {
		var err error
		if matched[i] {
			summary.ReconciledCount++
			summary.MatchedAmount, err = summary.MatchedAmount.Add(tx.Amount)
		} else {
			summary.UnreconciledCount++
			summary.UnmatchedAmount, err = summary.UnmatchedAmount.Add(tx.Amount)
		}
		if err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

// BookBalance sums the given transactions up to the cutoff date.
func (c *Calculator) BookBalance(transactions []BookTransaction, cutoff, currency string) (money.Money, error) {
	balance := money.Zero(currency)
	for _, tx := range transactions {
		if cutoff != "" && tx.Date > cutoff {
			continue
		}
		sum, err := balance.Add(tx.Amount)
		if err != nil {
			return money.Money{}, err
		}
		balance = sum
	}
	return balance, nil
}

func withinDateWindow(a, b string) bool {
	da, err := time.Parse("2006-01-02", a)
	if err != nil {
		return false
	}
	db, err := time.Parse("2006-01-02", b)
	if err != nil {
		return false
	}
	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return diff <= DateToleranceDays*24*time.Hour
}
