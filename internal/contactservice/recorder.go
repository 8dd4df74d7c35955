package contactservice

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/models"
	"github.com/starford/reconnect/internal/sse"
)

// RecordInteraction appends an outreach event for contactID and advances the
// contact's lastContactedAt.
//
// Records for the same contact are serialized; records for different contacts
// proceed independently. On any error nothing is written.
func (s *Service) RecordInteraction(ctx context.Context, contactID string, in models.InteractionInput) (*models.Interaction, error) {
	in.Type = models.InteractionType(strings.ToLower(strings.TrimSpace(string(in.Type))))
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return nil, apperr.Invalid("contactId: cannot be blank")
	}

	unlock := s.locks.Lock(contactID)
	defer unlock()

	it := models.Interaction{
		ID:             uuid.New().String(),
		ContactID:      contactID,
		Type:           in.Type,
		MessagePreview: in.Preview(),
		Notes:          strings.TrimSpace(in.Notes),
		CreatedAt:      s.clock(),
	}
	c, err := s.repo.AppendInteraction(ctx, it)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("interaction recorded",
		slog.String("contact_id", contactID),
		slog.String("type", string(it.Type)),
		slog.Time("last_contacted_at", *c.LastContactedAt),
	)
	s.publish(sse.InteractionRecorded, contactID)
	return &it, nil
}

// ListInteractions returns ledger entries, newest first.
func (s *Service) ListInteractions(ctx context.Context, f models.InteractionFilter) ([]models.Interaction, error) {
	if f.Limit < 0 {
		return nil, apperr.Invalid("limit: must be no less than 0")
	}
	f.ContactID = strings.TrimSpace(f.ContactID)
	return s.repo.ListInteractions(ctx, f)
}
