// Package testutil provides shared test helpers for databases and services.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/reconnect/internal/models"
	"github.com/starford/reconnect/internal/settings"
	"github.com/starford/reconnect/internal/store"
	"github.com/starford/reconnect/internal/templates"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "reconnect-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSettings creates a settings manager over db with the default settings.
func TestSettings(t *testing.T, db *store.DB) *settings.Manager {
	t.Helper()
	m, err := settings.NewManager(context.Background(), db, models.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// TestTemplates returns a provider serving the built-in templates.
func TestTemplates(t *testing.T) *templates.Provider {
	t.Helper()
	p, err := templates.New("", QuietLogger())
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// QuietLogger returns a logger that only prints errors.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Clock is a settable time source, safe for concurrent use.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock returns a clock frozen at t.
func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
