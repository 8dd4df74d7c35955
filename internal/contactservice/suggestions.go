package contactservice

import (
	"context"
	"strings"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/models"
	"github.com/starford/reconnect/internal/recommend"
	"github.com/starford/reconnect/internal/settings"
	"github.com/starford/reconnect/internal/sse"
)

// Suggestions returns the contacts most overdue for outreach.
//
// An empty mode uses the configured mode; a nil count uses the configured
// count for the mode. The ranking is computed from a fresh read of the store
// on every call.
func (s *Service) Suggestions(ctx context.Context, mode string, count *int) ([]models.Contact, error) {
	cfg := s.settings.Get()

	m := cfg.Mode
	if mode = strings.ToLower(strings.TrimSpace(mode)); mode != "" {
		m = models.Mode(mode)
		if m != models.ModeDaily && m != models.ModeWeekly {
			return nil, apperr.Invalid("mode: must be %q or %q", models.ModeDaily, models.ModeWeekly)
		}
	}

	n := cfg.CountFor(m)
	if count != nil {
		n = *count
	}
	if n <= 0 {
		return nil, apperr.Invalid("count: must be a positive number")
	}

	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return recommend.Recommend(contacts, s.clock(), n), nil
}

// Ranking scores every contact, most overdue first.
func (s *Service) Ranking(ctx context.Context) ([]recommend.Scored, error) {
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	return recommend.Rank(contacts, s.clock()), nil
}

// Settings returns the current settings and their version.
func (s *Service) Settings() (models.Settings, string) {
	cur := s.settings.Get()
	return cur, settings.Version(cur)
}

// UpdateSettings applies patch. See settings.Manager.Update.
func (s *Service) UpdateSettings(ctx context.Context, patch models.SettingsPatch, ifMatch string) (models.Settings, string, error) {
	next, err := s.settings.Update(ctx, patch, ifMatch)
	if err != nil {
		return models.Settings{}, "", err
	}
	s.publish(sse.SettingsUpdated, "")
	return next, settings.Version(next), nil
}

// Templates renders the message templates for a first name.
func (s *Service) Templates(name string) []string {
	return s.templates.Render(strings.TrimSpace(name))
}
