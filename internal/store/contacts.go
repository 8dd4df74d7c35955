package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/models"
)

const contactColumns = `id, full_name, relationship, phone_number, email, frequency_days, priority, last_contacted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(s rowScanner) (models.Contact, error) {
	var (
		c                models.Contact
		last             sql.NullInt64
		created, updated int64
	)
	err := s.Scan(&c.ID, &c.FullName, &c.Relationship, &c.PhoneNumber, &c.Email,
		&c.FrequencyDays, &c.Priority, &last, &created, &updated)
	if err != nil {
		return c, err
	}
	c.LastContactedAt = fromNullNanos(last)
	c.CreatedAt = fromNanos(created)
	c.UpdatedAt = fromNanos(updated)
	return c, nil
}

// ListContacts returns every contact ordered by name.
func (db *DB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY full_name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list contacts: %w", err)
	}
	defer rows.Close()

	out := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetContact returns a contact by id or an apperr NotFound error.
func (db *DB) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	c, err := scanContact(db.conn.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("contact", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get contact: %w", err)
	}
	return &c, nil
}

// InsertContact stores a new contact. Its lastContactedAt is ignored: a new
// contact has no interactions yet.
func (db *DB) InsertContact(ctx context.Context, c models.Contact) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO contacts (id, full_name, relationship, phone_number, email, frequency_days, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.FullName, string(c.Relationship), c.PhoneNumber, c.Email, c.FrequencyDays, c.Priority,
		toNanos(c.CreatedAt), toNanos(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert contact: %w", err)
	}
	return nil
}

// UpdateContact overwrites the writable fields of an existing contact. The
// lastContactedAt projection is left untouched.
func (db *DB) UpdateContact(ctx context.Context, c models.Contact) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE contacts SET
			full_name      = ?,
			relationship   = ?,
			phone_number   = ?,
			email          = ?,
			frequency_days = ?,
			priority       = ?,
			updated_at     = ?
		WHERE id = ?
	`, c.FullName, string(c.Relationship), c.PhoneNumber, c.Email, c.FrequencyDays, c.Priority,
		toNanos(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("store: update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("contact", c.ID)
	}
	return nil
}

// DeleteContact removes a contact. Its interactions stay in the ledger.
func (db *DB) DeleteContact(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("contact", id)
	}
	return nil
}

// CountContacts returns the number of stored contacts.
func (db *DB) CountContacts(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM contacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count contacts: %w", err)
	}
	return n, nil
}
