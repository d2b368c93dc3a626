package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ledger-service/internal/chart"
	"ledger-service/internal/events"
	"ledger-service/internal/models"
	"ledger-service/internal/money"
	"ledger-service/internal/posting"
	"ledger-service/internal/repositories"
)

// LedgerService orchestrates the chart of accounts and the journal
// entry lifecycle: validation via the posting engine, persistence
// under optimistic concurrency, audit logging and event publishing.
type LedgerService struct {
	db          *sql.DB
	engine      *posting.Engine
	accountRepo repositories.AccountRepository
	journalRepo repositories.JournalRepository
	auditRepo   repositories.AuditRepository
	publisher   events.Publisher
	logger      *zap.Logger
}

func NewLedgerService(
	db *sql.DB,
	accountRepo repositories.AccountRepository,
	journalRepo repositories.JournalRepository,
	auditRepo repositories.AuditRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		db:          db,
		engine:      posting.NewEngine(),
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		auditRepo:   auditRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// AccountInput is the creation payload for a ledger account.
type AccountInput struct {
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Type          models.AccountType `json:"type"`
	NormalBalance models.Side        `json:"normal_balance,omitempty"`
	ParentID      *int64             `json:"parent_id,omitempty"`
}

// CreateAccount validates and persists a new chart-of-accounts node.
// The normal balance defaults from the account type unless overridden.
func (s *LedgerService) CreateAccount(input AccountInput) (*models.LedgerAccount, error) {
	if input.Code == "" {
		return nil, fmt.Errorf("code is required")
	}
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("unknown account type %q", input.Type)
	}
	if input.ParentID != nil {
		if _, err := s.accountRepo.GetAccountByID(*input.ParentID); err != nil {
			if err == repositories.ErrNotFound {
				return nil, fmt.Errorf("parent account %d does not exist", *input.ParentID)
			}
			return nil, fmt.Errorf("failed to look up parent account: %w", err)
		}
	}

	normalBalance := input.NormalBalance
	if normalBalance == "" {
		normalBalance = models.NormalBalanceFor(input.Type)
	}

	account := &models.LedgerAccount{
		Code:          input.Code,
		Name:          input.Name,
		Type:          input.Type,
		NormalBalance: normalBalance,
		ParentID:      input.ParentID,
		IsActive:      true,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.accountRepo.InsertAccount(tx, account); err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account, nil
}

// ListAccounts returns the flat chart of accounts ordered by code.
func (s *LedgerService) ListAccounts() ([]models.LedgerAccount, error) {
	return s.accountRepo.ListAccounts()
}

// AccountTree assembles the chart-of-accounts forest, surfacing
// integrity warnings and failing on cyclic hierarchies.
func (s *LedgerService) AccountTree() (*chart.Tree, error) {
	accounts, err := s.accountRepo.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return chart.BuildTree(accounts)
}

// EntryInput is the create/update payload for a journal entry draft.
type EntryInput struct {
	Date        string      `json:"date"`
	Reference   string      `json:"reference"`
	Description string      `json:"description"`
	Currency    string      `json:"currency"`
	Lines       []LineInput `json:"lines"`
}

// LineInput carries one line's amounts as decimal strings; they are
// parsed into exact decimals at this boundary and nowhere else.
type LineInput struct {
	AccountID   int64  `json:"account_id"`
	Description string `json:"description,omitempty"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
}

func (s *LedgerService) buildEntry(id string, input EntryInput) (*models.JournalEntry, error) {
	if input.Date == "" {
		return nil, fmt.Errorf("date is required")
	}
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return nil, fmt.Errorf("invalid date %q, use YYYY-MM-DD", input.Date)
	}
	if input.Currency == "" {
		return nil, fmt.Errorf("currency is required")
	}

	entry := &models.JournalEntry{
		ID:          id,
		Date:        input.Date,
		Reference:   input.Reference,
		Description: input.Description,
		Currency:    input.Currency,
		Status:      models.StatusDraft,
		Version:     1,
	}
	for i, l := range input.Lines {
		line := models.JournalLine{
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       money.Zero(input.Currency),
			Credit:      money.Zero(input.Currency),
		}
		var err error
		if l.Debit != "" {
			if line.Debit, err = money.FromString(l.Debit, input.Currency); err != nil {
				return nil, fmt.Errorf("line %d: %w", i, err)
			}
		}
		if l.Credit != "" {
			if line.Credit, err = money.FromString(l.Credit, input.Currency); err != nil {
				return nil, fmt.Errorf("line %d: %w", i, err)
			}
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, nil
}

// CreateEntry saves a new draft. Drafts may be works in progress; the
// balance invariant is enforced at post time, not here.
func (s *LedgerService) CreateEntry(input EntryInput) (*models.JournalEntry, error) {
	entry, err := s.buildEntry(uuid.New().String(), input)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.journalRepo.InsertEntry(tx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	if err := s.audit(tx, entry.ID, models.AuditActionCreated, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, nil
}

// UpdateEntry rewrites a draft's header and lines. Posted entries are
// immutable and rejected with a typed error.
func (s *LedgerService) UpdateEntry(id string, input EntryInput) (*models.JournalEntry, error) {
	current, err := s.journalRepo.GetEntryByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.CheckMutable(current); err != nil {
		return nil, err
	}

	entry, err := s.buildEntry(id, input)
	if err != nil {
		return nil, err
	}
	entry.Version = current.Version

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.journalRepo.ReplaceLines(tx, entry); err != nil {
		return nil, err
	}
	if err := s.audit(tx, entry.ID, models.AuditActionUpdated, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, nil
}

// GetEntry loads one journal entry with its lines.
func (s *LedgerService) GetEntry(id string) (*models.JournalEntry, error) {
	return s.journalRepo.GetEntryByID(id)
}

// ListEntries returns entries matching the search term, newest first.
func (s *LedgerService) ListEntries(search string, limit int) ([]*models.JournalEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.journalRepo.ListEntries(search, limit)
}

// PostEntry validates and finalizes a draft. The optimistic version
// check in the store guarantees at most one concurrent post/unpost per
// entry id succeeds; the loser gets ErrConflict.
func (s *LedgerService) PostEntry(ctx context.Context, id string) (*models.JournalEntry, error) {
	current, err := s.journalRepo.GetEntryByID(id)
	if err != nil {
		return nil, err
	}

	posted, err := s.engine.Post(current, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.transition(posted, current.Version, models.AuditActionPosted, nil); err != nil {
		return nil, err
	}
	s.publish(ctx, posted, models.AuditActionPosted)
	return posted, nil
}

// UnpostEntry reverses a posted entry back to draft. Its balance
// contributions are withdrawn; the reversal is audit-logged, never a
// silent mutation.
func (s *LedgerService) UnpostEntry(ctx context.Context, id string) (*models.JournalEntry, error) {
	current, err := s.journalRepo.GetEntryByID(id)
	if err != nil {
		return nil, err
	}

	draft, err := s.engine.Unpost(current)
	if err != nil {
		return nil, err
	}

	if err := s.transition(draft, current.Version, models.AuditActionUnposted, nil); err != nil {
		return nil, err
	}
	s.publish(ctx, draft, models.AuditActionUnposted)
	return draft, nil
}

// RejectEntry transitions a draft to rejected with a mandatory reason.
func (s *LedgerService) RejectEntry(id, reason string) (*models.JournalEntry, error) {
	current, err := s.journalRepo.GetEntryByID(id)
	if err != nil {
		return nil, err
	}

	rejected, err := s.engine.Reject(current, reason)
	if err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]string{"reason": reason})
	if err := s.transition(rejected, current.Version, models.AuditActionRejected, details); err != nil {
		return nil, err
	}
	return rejected, nil
}

// DeleteEntry removes a draft. Posted entries cannot be deleted; they
// must be unposted first, preserving the audit trail.
func (s *LedgerService) DeleteEntry(id string) error {
	current, err := s.journalRepo.GetEntryByID(id)
	if err != nil {
		return err
	}
	if err := s.engine.CheckMutable(current); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.journalRepo.DeleteEntry(tx, id); err != nil {
		return err
	}
	if err := s.audit(tx, id, models.AuditActionDeleted, nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AuditTrail lists the recorded lifecycle actions for an entry.
func (s *LedgerService) AuditTrail(entryID string) ([]models.AuditEvent, error) {
	return s.auditRepo.ListAuditEvents(entryID)
}

func (s *LedgerService) transition(entry *models.JournalEntry, expectedVersion int64, action string, details json.RawMessage) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.journalRepo.UpdateEntryStatus(tx, entry, expectedVersion); err != nil {
		return err
	}
	if err := s.audit(tx, entry.ID, action, details); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *LedgerService) audit(tx *sql.Tx, entryID, action string, details json.RawMessage) error {
	event := &models.AuditEvent{
		EntryID: entryID,
		Action:  action,
		Details: details,
		UserID:  "system",
	}
	if err := s.auditRepo.InsertAuditEvent(tx, event); err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// publish is best effort: a broker outage must not fail the posting,
// so failures are logged and dropped.
func (s *LedgerService) publish(ctx context.Context, entry *models.JournalEntry, action string) {
	total, err := entry.TotalDebits()
	if err != nil {
		s.logger.Warn("skipping event publish", zap.String("entry_id", entry.ID), zap.Error(err))
		return
	}
	event := events.EntryEvent{
		EntryID:    entry.ID,
		Action:     action,
		Reference:  entry.Reference,
		Currency:   entry.Currency,
		Total:      total.StringFixed(),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish entry event",
			zap.String("entry_id", entry.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
