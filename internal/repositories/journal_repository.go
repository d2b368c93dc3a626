package repositories

import (
	"database/sql"
	"fmt"

	"ledger-service/internal/models"
	"ledger-service/internal/money"
)

type JournalRepository interface {
	InsertEntry(tx *sql.Tx, entry *models.JournalEntry) error
	GetEntryByID(id string) (*models.JournalEntry, error)
	ListEntries(search string, limit int) ([]*models.JournalEntry, error)
	ReplaceLines(tx *sql.Tx, entry *models.JournalEntry) error
	UpdateEntryStatus(tx *sql.Tx, entry *models.JournalEntry, expectedVersion int64) error
	DeleteEntry(tx *sql.Tx, id string) error
	ListPostedAccountLines(accountID int64, cutoffDate string) ([]PostedAccountLine, error)
}

type journalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) InsertEntry(tx *sql.Tx, entry *models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (
			id, entry_date, reference, description, currency, status, version
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query,
		entry.ID,
		entry.Date,
		entry.Reference,
		entry.Description,
		entry.Currency,
		entry.Status,
		entry.Version,
	)
	if err != nil {
		return err
	}
	return r.insertLines(tx, entry)
}

func (r *journalRepository) insertLines(tx *sql.Tx, entry *models.JournalEntry) error {
	query := `
		INSERT INTO journal_lines (
			entry_id, account_id, description, debit_amount, credit_amount
		) VALUES (?, ?, ?, ?, ?)
	`
	for i := range entry.Lines {
		line := &entry.Lines[i]
		result, err := tx.Exec(query,
			entry.ID,
			line.AccountID,
			line.Description,
			line.Debit.StringFixed(),
			line.Credit.StringFixed(),
		)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		line.ID = id
	}
	return nil
}

func (r *journalRepository) GetEntryByID(id string) (*models.JournalEntry, error) {
	query := `
		SELECT id, entry_date, reference, description, currency, status,
		       reject_reason, version, posted_at, created_at, updated_at
		FROM journal_entries
		WHERE id = ?
	`
	entry := &models.JournalEntry{}
	var rejectReason sql.NullString
	var postedAt sql.NullTime
	err := r.db.QueryRow(query, id).Scan(
		&entry.ID,
		&entry.Date,
		&entry.Reference,
		&entry.Description,
		&entry.Currency,
		&entry.Status,
		&rejectReason,
		&entry.Version,
		&postedAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entry.RejectReason = rejectReason.String
	if postedAt.Valid {
		entry.PostedAt = &postedAt.Time
	}

	if err := r.loadLines(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *journalRepository) loadLines(entry *models.JournalEntry) error {
	query := `
		SELECT id, account_id, description, debit_amount, credit_amount
		FROM journal_lines
		WHERE entry_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, entry.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var line models.JournalLine
		var debit, credit string
		err := rows.Scan(
			&line.ID,
			&line.AccountID,
			&line.Description,
			&debit,
			&credit,
		)
		if err != nil {
			return err
		}
		if line.Debit, err = money.FromString(debit, entry.Currency); err != nil {
			return fmt.Errorf("entry %s line %d: %w", entry.ID, line.ID, err)
		}
		if line.Credit, err = money.FromString(credit, entry.Currency); err != nil {
			return fmt.Errorf("entry %s line %d: %w", entry.ID, line.ID, err)
		}
		entry.Lines = append(entry.Lines, line)
	}
	return rows.Err()
}

func (r *journalRepository) ListEntries(search string, limit int) ([]*models.JournalEntry, error) {
	query := `
		SELECT id, entry_date, reference, description, currency, status,
		       reject_reason, version, posted_at, created_at, updated_at
		FROM journal_entries
		WHERE (? = '' OR reference LIKE ? OR description LIKE ?)
		ORDER BY entry_date DESC, id DESC
		LIMIT ?
	`
	pattern := "%" + search + "%"
	rows, err := r.db.Query(query, search, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		entry := &models.JournalEntry{}
		var rejectReason sql.NullString
		var postedAt sql.NullTime
		err := rows.Scan(
			&entry.ID,
			&entry.Date,
			&entry.Reference,
			&entry.Description,
			&entry.Currency,
			&entry.Status,
			&rejectReason,
			&entry.Version,
			&postedAt,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entry.RejectReason = rejectReason.String
		if postedAt.Valid {
			entry.PostedAt = &postedAt.Time
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if err := r.loadLines(entry); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// ReplaceLines rewrites a draft's header fields and lines. Callers
// must have checked mutability; posted entries never reach this path.
func (r *journalRepository) ReplaceLines(tx *sql.Tx, entry *models.JournalEntry) error {
	query := `
		UPDATE journal_entries
		SET entry_date = ?, reference = ?, description = ?, currency = ?
		WHERE id = ? AND status = 'draft'
	`
	result, err := tx.Exec(query,
		entry.Date,
		entry.Reference,
		entry.Description,
		entry.Currency,
		entry.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConflict
	}

	if _, err := tx.Exec(`DELETE FROM journal_lines WHERE entry_id = ?`, entry.ID); err != nil {
		return err
	}
	return r.insertLines(tx, entry)
}

// UpdateEntryStatus persists a lifecycle transition under an optimistic
// version check. Zero rows affected means another post/unpost won the
// race, reported as ErrConflict so at most one transition per entry id
// ever succeeds.
func (r *journalRepository) UpdateEntryStatus(tx *sql.Tx, entry *models.JournalEntry, expectedVersion int64) error {
	query := `
		UPDATE journal_entries
		SET status = ?, reject_reason = ?, version = ?, posted_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := tx.Exec(query,
		entry.Status,
		entry.RejectReason,
		entry.Version,
		entry.PostedAt,
		entry.ID,
		expectedVersion,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *journalRepository) DeleteEntry(tx *sql.Tx, id string) error {
	if _, err := tx.Exec(`DELETE FROM journal_lines WHERE entry_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.Exec(`DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPostedAccountLines returns every posted line touching the given
// account up to the cutoff date, for book-balance derivation.
func (r *journalRepository) ListPostedAccountLines(accountID int64, cutoffDate string) ([]PostedAccountLine, error) {
	query := `
		SELECT je.id, je.entry_date, je.reference, jl.debit_amount, jl.credit_amount, je.currency
		FROM journal_lines jl
		JOIN journal_entries je ON je.id = jl.entry_id
		WHERE jl.account_id = ?
		AND je.status = 'posted'
		AND (? = '' OR je.entry_date <= ?)
		ORDER BY je.entry_date ASC
	`
	rows, err := r.db.Query(query, accountID, cutoffDate, cutoffDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []PostedAccountLine
	for rows.Next() {
		var l PostedAccountLine
		err := rows.Scan(
			&l.EntryID,
			&l.EntryDate,
			&l.Reference,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.Currency,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
