package repositories

import (
	"database/sql"

	"ledger-service/internal/models"
	"ledger-service/internal/money"
)

type StatementRepository interface {
	InsertStatement(tx *sql.Tx, statement *models.BankStatement, lines []models.BankStatementLine) error
	GetLatestStatement(bankAccountID int64) (*models.BankStatement, error)
	GetStatementLines(statementID int64) ([]models.BankStatementLine, error)
}

type statementRepository struct {
	db *sql.DB
}

func NewStatementRepository(db *sql.DB) StatementRepository {
	return &statementRepository{db: db}
}

func (r *statementRepository) InsertStatement(tx *sql.Tx, statement *models.BankStatement, lines []models.BankStatementLine) error {
	query := `
		INSERT INTO bank_statements (
			bank_account_id, statement_date, balance, currency
		) VALUES (?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		statement.BankAccountID,
		statement.StatementDate,
		statement.Balance.StringFixed(),
		statement.Balance.Currency,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	statement.ID = id

	lineQuery := `
		INSERT INTO bank_statement_lines (
			statement_id, line_date, description, reference, amount
		) VALUES (?, ?, ?, ?, ?)
	`
	for i := range lines {
		res, err := tx.Exec(lineQuery,
			statement.ID,
			lines[i].Date,
			lines[i].Description,
			lines[i].Reference,
			lines[i].Amount.StringFixed(),
		)
		if err != nil {
			return err
		}
		lineID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		lines[i].ID = lineID
		lines[i].StatementID = statement.ID
	}
	return nil
}

func (r *statementRepository) GetLatestStatement(bankAccountID int64) (*models.BankStatement, error) {
	query := `
		SELECT id, bank_account_id, statement_date, balance, currency, created_at
		FROM bank_statements
		WHERE bank_account_id = ?
		ORDER BY statement_date DESC, id DESC
		LIMIT 1
	`
	statement := &models.BankStatement{}
	var balance, currency string
	err := r.db.QueryRow(query, bankAccountID).Scan(
		&statement.ID,
		&statement.BankAccountID,
		&statement.StatementDate,
		&balance,
		&currency,
		&statement.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if statement.Balance, err = money.FromString(balance, currency); err != nil {
		return nil, err
	}
	return statement, nil
}

func (r *statementRepository) GetStatementLines(statementID int64) ([]models.BankStatementLine, error) {
	query := `
		SELECT sl.id, sl.statement_id, sl.line_date, sl.description, sl.reference, sl.amount, bs.currency
		FROM bank_statement_lines sl
		JOIN bank_statements bs ON bs.id = sl.statement_id
		WHERE sl.statement_id = ?
		ORDER BY sl.line_date ASC, sl.id ASC
	`
	rows, err := r.db.Query(query, statementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.BankStatementLine
	for rows.Next() {
		var line models.BankStatementLine
		var amount, currency string
		err := rows.Scan(
			&line.ID,
			&line.StatementID,
			&line.Date,
			&line.Description,
			&line.Reference,
			&amount,
			&currency,
		)
		if err != nil {
			return nil, err
		}
		if line.Amount, err = money.FromString(amount, currency); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
