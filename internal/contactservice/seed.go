package contactservice

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/starford/reconnect/internal/models"
	"github.com/starford/reconnect/internal/sse"
)

//go:embed seed.yaml
var seedFile []byte

var seedMu sync.Mutex

type seedSet struct {
	Contacts []models.ContactInput `yaml:"contacts"`
}

// Seed inserts the demo contacts when the store has none. It returns the
// contacts it created, which is empty when contacts already exist.
func (s *Service) Seed(ctx context.Context) ([]models.Contact, error) {
	var set seedSet
	if err := yaml.Unmarshal(seedFile, &set); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}

	seedMu.Lock()
	defer seedMu.Unlock()

	n, err := s.repo.CountContacts(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.logger.Info("seed skipped, contacts exist", slog.Int("contacts", n))
		return []models.Contact{}, nil
	}

	created := make([]models.Contact, 0, len(set.Contacts))
	for _, in := range set.Contacts {
		c, err := s.newContact(in)
		if err != nil {
			return created, fmt.Errorf("seed: %s: %w", in.FullName, err)
		}
		if err := s.repo.InsertContact(ctx, c); err != nil {
			return created, err
		}
		created = append(created, c)
		s.publish(sse.ContactCreated, c.ID)
	}
	s.logger.Info("seeded demo contacts", slog.Int("count", len(created)))
	return created, nil
}
