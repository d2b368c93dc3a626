package repositories

import (
	"database/sql"

	"ledger-service/internal/models"
)

type AuditRepository interface {
	InsertAuditEvent(tx *sql.Tx, event *models.AuditEvent) error
	ListAuditEvents(entryID string) ([]models.AuditEvent, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) InsertAuditEvent(tx *sql.Tx, event *models.AuditEvent) error {
	query := `
		INSERT INTO audit_events (entry_id, action, details, user_id)
		VALUES (?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		event.EntryID,
		event.Action,
		event.Details,
		event.UserID,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

func (r *auditRepository) ListAuditEvents(entryID string) ([]models.AuditEvent, error) {
	query := `
		SELECT id, entry_id, action, details, user_id, created_at
		FROM audit_events
		WHERE entry_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		err := rows.Scan(
			&e.ID,
			&e.EntryID,
			&e.Action,
			&e.Details,
			&e.UserID,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
