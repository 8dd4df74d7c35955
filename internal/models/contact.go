// Package models defines the domain types for Reconnect.
package models

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Relationship classifies a contact.
type Relationship string

const (
	RelationshipFriend   Relationship = "friend"
	RelationshipFamily   Relationship = "family"
	RelationshipBusiness Relationship = "business"
	RelationshipOther    Relationship = "other"
)

// Priority bounds. 5 is the most urgent.
const (
	MinPriority = 1
	MaxPriority = 5
)

var phoneRe = regexp.MustCompile(`^[0-9+()\-.\s]{3,32}$`)

// Contact is a person to keep in touch with.
//
// LastContactedAt is a projection of the interaction ledger and is never
// accepted from callers.
type Contact struct {
	ID              string       `json:"id"`
	FullName        string       `json:"fullName"`
	Relationship    Relationship `json:"relationship"`
	PhoneNumber     string       `json:"phoneNumber"`
	Email           string       `json:"email,omitempty"`
	FrequencyDays   int          `json:"frequencyDays"`
	Priority        int          `json:"priority"`
	LastContactedAt *time.Time   `json:"lastContactedAt"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// ContactInput is the writable part of a Contact, used by create and update.
type ContactInput struct {
	FullName      string       `json:"fullName" yaml:"fullName"`
	Relationship  Relationship `json:"relationship" yaml:"relationship"`
	PhoneNumber   string       `json:"phoneNumber" yaml:"phoneNumber"`
	Email         string       `json:"email" yaml:"email"`
	FrequencyDays int          `json:"frequencyDays" yaml:"frequencyDays"`
	Priority      int          `json:"priority" yaml:"priority"`
}

// Normalize trims free-text fields in place.
func (in *ContactInput) Normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Relationship = Relationship(strings.ToLower(strings.TrimSpace(string(in.Relationship))))
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = strings.TrimSpace(in.Email)
}

// Validate validates the contact input.
func (in ContactInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&in.Relationship, validation.Required,
			validation.In(RelationshipFriend, RelationshipFamily, RelationshipBusiness, RelationshipOther)),
		validation.Field(&in.PhoneNumber, validation.Match(phoneRe).Error("must be a phone number")),
		validation.Field(&in.Email, is.EmailFormat),
		validation.Field(&in.FrequencyDays, validation.Required.Error("must be a positive number of days"), validation.Min(1)),
		validation.Field(&in.Priority, validation.Required.Error("must be between 1 and 5"), validation.Min(MinPriority), validation.Max(MaxPriority)),
	)
}

// Apply copies the input onto c, leaving identity and derived fields alone.
func (in ContactInput) Apply(c *Contact) {
	c.FullName = in.FullName
	c.Relationship = in.Relationship
	c.PhoneNumber = in.PhoneNumber
	c.Email = in.Email
	c.FrequencyDays = in.FrequencyDays
	c.Priority = in.Priority
}
