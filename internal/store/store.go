package store

import (
	"context"

	"github.com/starford/reconnect/internal/models"
)

// ContactStore is durable keyed storage of contacts.
type ContactStore interface {
	ListContacts(ctx context.Context) ([]models.Contact, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	InsertContact(ctx context.Context, c models.Contact) error
	UpdateContact(ctx context.Context, c models.Contact) error
	DeleteContact(ctx context.Context, id string) error
	CountContacts(ctx context.Context) (int, error)
}

// Ledger is the append-only interaction log and the only writer of each
// contact's lastContactedAt projection.
type Ledger interface {
	AppendInteraction(ctx context.Context, it models.Interaction) (*models.Contact, error)
	ListInteractions(ctx context.Context, f models.InteractionFilter) ([]models.Interaction, error)
	RebuildProjection(ctx context.Context) (int, error)
}

// SettingsStore persists the single settings row.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error
}

// Store is everything the application persists.
// Consumers should depend on the narrow interfaces where they can.
type Store interface {
	ContactStore
	Ledger
	SettingsStore
	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
