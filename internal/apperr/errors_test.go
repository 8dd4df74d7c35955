package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Invalid("count: must be positive"), KindValidation},
		{"not found", NotFound("contact", "42"), KindNotFound},
		{"conflict", Conflict("stale"), KindConflict},
		{"wrapped", fmt.Errorf("store: %w", NotFound("contact", "1")), KindNotFound},
		{"sentinel", fmt.Errorf("x: %w", ErrConflict), KindConflict},
		{"plain", errors.New("disk on fire"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorsIsSentinels(t *testing.T) {
	if !errors.Is(NotFound("contact", "1"), ErrNotFound) {
		t.Error("NotFound should match ErrNotFound")
	}
	if !errors.Is(Validation(errors.New("bad")), ErrValidation) {
		t.Error("Validation should match ErrValidation")
	}
	if errors.Is(Conflict("x"), ErrNotFound) {
		t.Error("Conflict should not match ErrNotFound")
	}
}

func TestMessage(t *testing.T) {
	if got := Message(NotFound("contact", "7")); got != `contact "7" not found` {
		t.Errorf("got %q", got)
	}
	if got := Message(errors.New("sql: connection refused")); got != "internal error" {
		t.Errorf("internal details leaked: %q", got)
	}
}
