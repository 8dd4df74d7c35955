package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/reconnect/internal/apperr"
	"github.com/starford/reconnect/internal/contactservice"
	"github.com/starford/reconnect/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *contactservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contactservice.Service) *Handler {
	return &Handler{svc: svc}
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Invalid("%s: must be an integer", name)
	}
	return &n, nil
}

// ListContacts handles GET /api/contacts.
//
//	@Summary		List contacts ordered by name
//	@Tags			contacts
//	@Produce		json
//	@Success		200	{array}	Contact
//	@Security		BearerAuth
//	@Router			/contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.ListContacts(r.Context())
	if err != nil {
		writeError(w, r, "list contacts", err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// GetContact handles GET /api/contacts/{id}.
//
//	@Summary		Get a single contact
//	@Tags			contacts
//	@Produce		json
//	@Param			id	path		string	true	"Contact ID"
//	@Success		200	{object}	Contact
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [get]
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateContact handles POST /api/contacts.
//
//	@Summary		Create a contact
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContactRequest	true	"Contact to create"
//	@Success		201		{object}	Contact
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts [post]
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "create contact", err)
		return
	}
	c, err := h.svc.CreateContact(r.Context(), req)
	if err != nil {
		writeError(w, r, "create contact", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateContact handles PUT /api/contacts/{id}.
//
//	@Summary		Replace a contact's editable fields
//	@Description	lastContactedAt is derived from interactions and is ignored if sent.
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Contact ID"
//	@Param			body	body		ContactRequest	true	"Contact fields"
//	@Success		200		{object}	Contact
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [put]
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "update contact", err)
		return
	}
	c, err := h.svc.UpdateContact(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, "update contact", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteContact handles DELETE /api/contacts/{id}.
//
//	@Summary		Delete a contact
//	@Tags			contacts
//	@Param			id	path	string	true	"Contact ID"
//	@Success		204	"Contact deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [delete]
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, "delete contact", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suggestions handles GET /api/suggestions.
//
//	@Summary		Contacts most overdue for outreach
//	@Tags			suggestions
//	@Produce		json
//	@Param			mode	query		string	false	"Suggestion mode"	Enums(daily, weekly)
//	@Param			count	query		int		false	"Batch size (defaults to the mode's count)"
//	@Success		200		{array}		Contact
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/suggestions [get]
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count")
	if err != nil {
		writeError(w, r, "suggestions", err)
		return
	}
	contacts, err := h.svc.Suggestions(r.Context(), r.URL.Query().Get("mode"), count)
	if err != nil {
		writeError(w, r, "suggestions", err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

// RecordInteraction handles POST /api/contacts/{id}/interactions.
//
//	@Summary		Record a call or text with a contact
//	@Tags			interactions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Contact ID"
//	@Param			body	body		InteractionRequest	true	"Interaction"
//	@Success		201		{object}	Interaction
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id}/interactions [post]
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "record interaction", err)
		return
	}
	it, err := h.svc.RecordInteraction(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, "record interaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// ListInteractions handles GET /api/interactions.
//
//	@Summary		List recorded interactions, newest first
//	@Tags			interactions
//	@Produce		json
//	@Param			contactId	query		string	false	"Only this contact"
//	@Param			limit		query		int		false	"Max results"
//	@Success		200			{array}		Interaction
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/interactions [get]
func (h *Handler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, "list interactions", err)
		return
	}
	f := models.InteractionFilter{ContactID: r.URL.Query().Get("contactId")}
	if limit != nil {
		f.Limit = *limit
	}
	items, err := h.svc.ListInteractions(r.Context(), f)
	if err != nil {
		writeError(w, r, "list interactions", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Get settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	Settings
//	@Header			200	{string}	ETag	"Settings version"
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, version := h.svc.Settings()
	w.Header().Set("ETag", `"`+version+`"`)
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings handles PUT /api/settings.
//
//	@Summary		Update settings
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header		string			false	"ETag from GET /settings"
//	@Param			body		body		SettingsRequest	true	"Fields to change"
//	@Success		200			{object}	Settings
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "update settings", err)
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	s, version, err := h.svc.UpdateSettings(r.Context(), req, ifMatch)
	if err != nil {
		writeError(w, r, "update settings", err)
		return
	}
	w.Header().Set("ETag", `"`+version+`"`)
	writeJSON(w, http.StatusOK, s)
}

// Templates handles GET /api/templates.
//
//	@Summary		Suggested opening messages
//	@Tags			templates
//	@Produce		json
//	@Param			name	query	string	false	"First name to address"
//	@Success		200		{array}	string
//	@Security		BearerAuth
//	@Router			/templates [get]
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Templates(r.URL.Query().Get("name")))
}

// Seed handles POST /api/seed.
//
//	@Summary		Insert demo contacts into an empty database
//	@Tags			contacts
//	@Produce		json
//	@Success		200	{array}	Contact
//	@Security		BearerAuth
//	@Router			/seed [post]
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.Seed(r.Context())
	if err != nil {
		writeError(w, r, "seed", err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}
