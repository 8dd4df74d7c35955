package store

import (
	"context"
	"fmt"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/models"
)

const projectSQL = `
	UPDATE contacts
	SET last_contacted_at = (SELECT MAX(created_at) FROM interactions WHERE contact_id = contacts.id)
	WHERE id = ?
`

// AppendInteraction appends it to the ledger and recomputes the contact's
// lastContactedAt in the same transaction. It returns the updated contact,
// or a NotFound error with no effect when the contact does not exist.
func (db *DB) AppendInteraction(ctx context.Context, it models.Interaction) (*models.Contact, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM contacts WHERE id = ?`, it.ContactID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("store: check contact: %w", err)
	}
	if exists == 0 {
		return nil, apperr.NotFound("contact", it.ContactID)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (id, contact_id, type, message_preview, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, it.ID, it.ContactID, string(it.Type), it.MessagePreview, it.Notes, toNanos(it.CreatedAt)); err != nil {
		return nil, fmt.Errorf("store: insert interaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, projectSQL, it.ContactID); err != nil {
		return nil, fmt.Errorf("store: update projection: %w", err)
	}

	c, err := scanContact(tx.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, it.ContactID))
	if err != nil {
		return nil, fmt.Errorf("store: reload contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit interaction: %w", err)
	}
	return &c, nil
}

// ListInteractions returns ledger entries newest first. Entries recorded in
// the same instant keep reverse insertion order.
func (db *DB) ListInteractions(ctx context.Context, f models.InteractionFilter) ([]models.Interaction, error) {
	query := `SELECT id, contact_id, type, message_preview, notes, created_at FROM interactions`
	var args []any
	if f.ContactID != "" {
		query += ` WHERE contact_id = ?`
		args = append(args, f.ContactID)
	}
	query += ` ORDER BY created_at DESC, seq DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list interactions: %w", err)
	}
	defer rows.Close()

	out := []models.Interaction{}
	for rows.Next() {
		var (
			it      models.Interaction
			created int64
		)
		if err := rows.Scan(&it.ID, &it.ContactID, &it.Type, &it.MessagePreview, &it.Notes, &created); err != nil {
			return nil, fmt.Errorf("store: scan interaction: %w", err)
		}
		it.CreatedAt = fromNanos(created)
		out = append(out, it)
	}
	return out, rows.Err()
}

// RebuildProjection recomputes lastContactedAt for every contact from the
// ledger and returns how many contacts changed.
func (db *DB) RebuildProjection(ctx context.Context) (int, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE contacts
		SET last_contacted_at = (SELECT MAX(created_at) FROM interactions WHERE contact_id = contacts.id)
		WHERE last_contacted_at IS NOT (SELECT MAX(created_at) FROM interactions WHERE contact_id = contacts.id)
	`)
	if err != nil {
		return 0, fmt.Errorf("store: rebuild projection: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
