package contactservice

import (
	"context"

	"github.com/google/uuid"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/models"
	"github.com/starford/reconnect/internal/sse"
)

// ListContacts returns all contacts ordered by name.
func (s *Service) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return s.repo.ListContacts(ctx)
}

// GetContact returns one contact.
func (s *Service) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return s.repo.GetContact(ctx, id)
}

// CreateContact validates in and stores a new contact. The new contact has
// never been contacted.
func (s *Service) CreateContact(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	c, err := s.newContact(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.InsertContact(ctx, c); err != nil {
		return nil, err
	}
	s.publish(sse.ContactCreated, c.ID)
	return &c, nil
}

func (s *Service) newContact(in models.ContactInput) (models.Contact, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return models.Contact{}, apperr.Validation(err)
	}
	now := s.clock()
	c := models.Contact{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(&c)
	return c, nil
}

// UpdateContact replaces the writable fields of contact id. The
// lastContactedAt projection is kept.
func (s *Service) UpdateContact(ctx context.Context, id string, in models.ContactInput) (*models.Contact, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, apperr.Validation(err)
	}

	// Hold the contact's lock so the read-modify-write does not interleave
	// with a concurrent record on the same contact.
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.repo.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(c)
	c.UpdatedAt = s.clock()
	if err := s.repo.UpdateContact(ctx, *c); err != nil {
		return nil, err
	}
	s.publish(sse.ContactUpdated, id)
	return c, nil
}

// DeleteContact removes contact id. Its interactions stay in the ledger.
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.repo.DeleteContact(ctx, id); err != nil {
		return err
	}
	s.publish(sse.ContactDeleted, id)
	return nil
}
