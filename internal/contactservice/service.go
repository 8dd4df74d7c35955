// Package contactservice coordinates contacts, the interaction ledger,
// settings and templates. Both the HTTP API and the MCP server go through it.
package contactservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/reconnect/internal/settings"
	"github.com/starford/reconnect/internal/store"
	"github.com/starford/reconnect/internal/templates"
)

// Repository is the persistence the service needs.
type Repository interface {
	store.ContactStore
	store.Ledger
}

// Notifier receives change hints after successful writes.
type Notifier interface {
	PublishChange(kind, id string)
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithClock overrides the time source used for interaction timestamps and
// ranking.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// Service is the application layer over the store.
type Service struct {
	repo      Repository
	settings  *settings.Manager
	templates *templates.Provider
	notifier  Notifier
	now       func() time.Time
	logger    *slog.Logger
	locks     *keyedMutex
}

// New creates a Service.
func New(repo Repository, sm *settings.Manager, tp *templates.Provider, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		settings:  sm,
		templates: tp,
		now:       time.Now,
		logger:    slog.Default(),
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) publish(kind, id string) {
	if s.notifier == nil {
		return
	}
	s.notifier.PublishChange(kind, id)
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := s.repo.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
