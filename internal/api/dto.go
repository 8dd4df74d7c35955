package api

import "github.com/starford/reconnect/internal/models"

// Contact is a contact as returned by the API.
type Contact = models.Contact

// ContactRequest is the request body for creating or updating a contact.
// lastContactedAt is derived from recorded interactions and cannot be set.
type ContactRequest = models.ContactInput

// Interaction is a ledger entry as returned by the API.
type Interaction = models.Interaction

// InteractionRequest is the request body for recording an interaction.
type InteractionRequest = models.InteractionInput

// Settings is the settings document.
type Settings = models.Settings

// SettingsRequest is a partial settings update. Omitted fields keep their
// current value.
type SettingsRequest = models.SettingsPatch

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status" example:"ok" validate:"required"`
}
