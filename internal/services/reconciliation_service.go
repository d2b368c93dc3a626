package services

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"ledger-service/internal/models"
	"ledger-service/internal/money"
	"ledger-service/internal/reconciliation"
	"ledger-service/internal/repositories"
)

// ReconciliationService derives reconciliation records on demand from
// the latest bank statement and the posted book transactions of the
// bank account. Nothing is stored; the record is recomputed per call.
type ReconciliationService struct {
	db            *sql.DB
	calculator    *reconciliation.Calculator
	journalRepo   repositories.JournalRepository
	statementRepo repositories.StatementRepository
	logger        *zap.Logger
}

func NewReconciliationService(
	db *sql.DB,
	journalRepo repositories.JournalRepository,
	statementRepo repositories.StatementRepository,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		db:            db,
		calculator:    reconciliation.NewCalculator(),
		journalRepo:   journalRepo,
		statementRepo: statementRepo,
		logger:        logger,
	}
}

// StatementInput is the import payload for a bank statement.
type StatementInput struct {
	StatementDate string               `json:"statement_date"`
	Balance       string               `json:"balance"`
	Currency      string               `json:"currency"`
	Lines         []StatementLineInput `json:"lines"`
}

type StatementLineInput struct {
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Amount      string `json:"amount"`
}

// ImportStatement stores a bank statement and its lines for later
// reconciliation runs.
func (s *ReconciliationService) ImportStatement(bankAccountID int64, input StatementInput) (*models.BankStatement, error) {
	if input.StatementDate == "" {
		return nil, fmt.Errorf("statement_date is required")
	}
	balance, err := money.FromString(input.Balance, input.Currency)
	if err != nil {
		return nil, err
	}

	statement := &models.BankStatement{
		BankAccountID: bankAccountID,
		StatementDate: input.StatementDate,
		Balance:       balance,
	}
	lines := make([]models.BankStatementLine, 0, len(input.Lines))
	for i, l := range input.Lines {
		amount, err := money.FromString(l.Amount, input.Currency)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, models.BankStatementLine{
			Date:        l.Date,
			Description: l.Description,
			Reference:   l.Reference,
			Amount:      amount,
		})
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.statementRepo.InsertStatement(tx, statement, lines); err != nil {
		return nil, fmt.Errorf("failed to insert statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return statement, nil
}

// GetReconciliation computes the reconciliation record for a bank
// account against its latest statement. A missing statement surfaces
// as repositories.ErrNotFound, which the handler treats as "no data".
func (s *ReconciliationService) GetReconciliation(bankAccountID int64) (*models.ReconciliationRecord, error) {
	statement, err := s.statementRepo.GetLatestStatement(bankAccountID)
	if err != nil {
		return nil, err
	}
	statementLines, err := s.statementRepo.GetStatementLines(statement.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load statement lines: %w", err)
	}

	postedLines, err := s.journalRepo.ListPostedAccountLines(bankAccountID, statement.StatementDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load posted lines: %w", err)
	}
	transactions, err := toBookTransactions(postedLines, statement.Balance.Currency)
	if err != nil {
		return nil, err
	}

	bookBalance, err := s.calculator.BookBalance(transactions, statement.StatementDate, statement.Balance.Currency)
	if err != nil {
		return nil, err
	}
	difference, err := s.calculator.ComputeDifference(statement.Balance, bookBalance)
	if err != nil {
		return nil, err
	}
	summary, err := s.calculator.Summarize(transactions, statementLines, statement.StatementDate)
	if err != nil {
		return nil, err
	}

	return &models.ReconciliationRecord{
		BankAccountID:     bankAccountID,
		StatementDate:     statement.StatementDate,
		StatementBalance:  statement.Balance,
		BookBalance:       bookBalance,
		Difference:        difference,
		Classification:    s.calculator.Classify(difference),
		ReconciledCount:   summary.ReconciledCount,
		UnreconciledCount: summary.UnreconciledCount,
	}, nil
}

// toBookTransactions flattens posted journal lines into their signed
// effect on the bank account: debits increase an asset account, so the
// amount is debit minus credit. A line denominated in another currency
// than the statement fails the whole run; re-tagging it would corrupt
// the book balance.
func toBookTransactions(lines []repositories.PostedAccountLine, currency string) ([]reconciliation.BookTransaction, error) {
	var out []reconciliation.BookTransaction
	for _, l := range lines {
		if l.Currency != currency {
			return nil, fmt.Errorf("entry %s: %w", l.EntryID,
				&money.CurrencyMismatchError{Left: l.Currency, Right: currency})
		}
		debit, err := money.FromString(l.DebitAmount, currency)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", l.EntryID, err)
		}
		credit, err := money.FromString(l.CreditAmount, currency)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", l.EntryID, err)
		}
		amount, err := debit.Sub(credit)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", l.EntryID, err)
		}
		out = append(out, reconciliation.BookTransaction{
			EntryID:   l.EntryID,
			Date:      l.EntryDate,
			Reference: l.Reference,
			Amount:    amount,
		})
	}
	return out, nil
}
