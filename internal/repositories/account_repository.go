package repositories

import (
	"database/sql"

	"ledger-service/internal/models"
)

type AccountRepository interface {
	InsertAccount(tx *sql.Tx, account *models.LedgerAccount) error
	GetAccountByID(id int64) (*models.LedgerAccount, error)
	GetAccountByCode(code string) (*models.LedgerAccount, error)
	ListAccounts() ([]models.LedgerAccount, error)
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) InsertAccount(tx *sql.Tx, account *models.LedgerAccount) error {
	query := `
		INSERT INTO accounts (
			code, name, account_type, normal_balance, parent_id, is_active
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		account.Code,
		account.Name,
		account.Type,
		account.NormalBalance,
		account.ParentID,
		account.IsActive,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

func (r *accountRepository) GetAccountByID(id int64) (*models.LedgerAccount, error) {
	query := `
		SELECT id, code, name, account_type, normal_balance, parent_id, is_active,
		       created_at, updated_at
		FROM accounts
		WHERE id = ?
	`
	return r.scanAccount(r.db.QueryRow(query, id))
}

func (r *accountRepository) GetAccountByCode(code string) (*models.LedgerAccount, error) {
	query := `
		SELECT id, code, name, account_type, normal_balance, parent_id, is_active,
		       created_at, updated_at
		FROM accounts
		WHERE code = ?
	`
	return r.scanAccount(r.db.QueryRow(query, code))
}

func (r *accountRepository) scanAccount(row *sql.Row) (*models.LedgerAccount, error) {
	account := &models.LedgerAccount{}
	var parentID sql.NullInt64
	err := row.Scan(
		&account.ID,
		&account.Code,
		&account.Name,
		&account.Type,
		&account.NormalBalance,
		&parentID,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		account.ParentID = &parentID.Int64
	}
	return account, nil
}

func (r *accountRepository) ListAccounts() ([]models.LedgerAccount, error) {
	query := `
		SELECT id, code, name, account_type, normal_balance, parent_id, is_active,
		       created_at, updated_at
		FROM accounts
		ORDER BY code ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.LedgerAccount
	for rows.Next() {
		account := models.LedgerAccount{}
		var parentID sql.NullInt64
		err := rows.Scan(
			&account.ID,
			&account.Code,
			&account.Name,
			&account.Type,
			&account.NormalBalance,
			&parentID,
			&account.IsActive,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if parentID.Valid {
			account.ParentID = &parentID.Int64
		}
		accounts = append(accounts, account)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}
