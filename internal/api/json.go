package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/reconnect/internal/apperr"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Kind    apperr.Kind `json:"kind" example:"NotFound" validate:"required"`
	Message string      `json:"message" example:"contact \"42\" not found" validate:"required"`
}

func errorBody(kind apperr.Kind, msg string) errResponse {
	return errResponse{Kind: kind, Message: msg}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status and structured body. Internal errors are
// logged and their details withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.Error(op+" failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	writeJSON(w, statusFor(kind), errorBody(kind, apperr.Message(err)))
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return apperr.Invalid("request body too large")
		case errors.Is(err, io.EOF):
			return apperr.Invalid("request body is required")
		}
		return apperr.Invalid("invalid JSON body")
	}
	return nil
}
