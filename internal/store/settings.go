package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/reconnect/internal/models"
)

// LoadSettings returns the stored settings, or nil when none were saved yet.
func (db *DB) LoadSettings(ctx context.Context) (*models.Settings, error) {
	var (
		s     models.Settings
		freqs string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT mode, count_daily, count_weekly, default_frequencies FROM settings WHERE id = 1`,
	).Scan(&s.Mode, &s.CountDaily, &s.CountWeekly, &freqs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load settings: %w", err)
	}
	if err := json.Unmarshal([]byte(freqs), &s.DefaultFrequencies); err != nil {
		return nil, fmt.Errorf("store: decode default frequencies: %w", err)
	}
	s = s.Clone()
	return &s, nil
}

// SaveSettings replaces the stored settings row.
func (db *DB) SaveSettings(ctx context.Context, s models.Settings) error {
	freqs, err := json.Marshal(s.Clone().DefaultFrequencies)
	if err != nil {
		return fmt.Errorf("store: encode default frequencies: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO settings (id, mode, count_daily, count_weekly, default_frequencies, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode                = excluded.mode,
			count_daily         = excluded.count_daily,
			count_weekly        = excluded.count_weekly,
			default_frequencies = excluded.default_frequencies,
			updated_at          = excluded.updated_at
	`, string(s.Mode), s.CountDaily, s.CountWeekly, string(freqs), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	return nil
}
