package models

import (
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// InteractionType is the kind of outreach.
type InteractionType string

const (
	InteractionCall InteractionType = "call"
	InteractionText InteractionType = "text"
)

// MaxPreviewLen is the maximum length of a text message preview, in characters.
const MaxPreviewLen = 140

// Interaction is an immutable record of an outreach event.
type Interaction struct {
	ID             string          `json:"id"`
	ContactID      string          `json:"contactId"`
	Type           InteractionType `json:"type"`
	MessagePreview string          `json:"messagePreview,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// InteractionInput is the request payload for recording an interaction.
type InteractionInput struct {
	Type           InteractionType `json:"type"`
	MessagePreview string          `json:"messagePreview"`
	Notes          string          `json:"notes"`
}

// Validate validates the interaction input.
func (in InteractionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, validation.Required, validation.In(InteractionCall, InteractionText)),
	)
}

// Preview returns the message preview to store for this input: the text
// truncated to MaxPreviewLen characters, or empty for calls.
func (in InteractionInput) Preview() string {
	if in.Type != InteractionText {
		return ""
	}
	return TruncateRunes(in.MessagePreview, MaxPreviewLen)
}

// TruncateRunes cuts s to at most n characters without splitting a rune.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for _, r := range s {
		if i == n {
			break
		}
		b.WriteRune(r)
		i++
	}
	return b.String()
}

// InteractionFilter narrows a ledger listing.
type InteractionFilter struct {
	ContactID string
	Limit     int
}
