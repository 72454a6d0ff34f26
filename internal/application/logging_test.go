package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/example/hr-dashboard/internal/logging"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&base, nil))
	ctxLogger := slog.New(slog.NewJSONHandler(&scoped, nil)).With("request_id", "req-1")
	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)

	serviceLogger(ctx, baseLogger, "RosterService", "Load", "generation", 2).Info("hello")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %s", base.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(scoped.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	for key, want := range map[string]any{
		"request_id": "req-1",
		"service":    "RosterService",
		"operation":  "Load",
		"generation": float64(2),
	} {
		if entry[key] != want {
			t.Fatalf("expected %s=%v, got %v", key, want, entry[key])
		}
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unauthorized", ErrUnauthorized, "unauthorized"},
		{"not found wrapped", fmt.Errorf("lookup: %w", ErrNotFound), "not_found"},
		{"invalid credentials", ErrInvalidCredentials, "invalid_credentials"},
		{"expired", ErrSessionExpired, "session_expired"},
		{"fetch failed", fmt.Errorf("%w: %w", ErrFetchFailed, errors.New("dial")), "fetch_failed"},
		{"stale", ErrStaleLoad, "stale_load"},
		{"canceled", context.Canceled, "canceled"},
		{"validation", &ValidationError{FieldErrors: map[string]string{"a": "b"}}, "validation"},
		{"other", errors.New("boom"), "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tt.err); got != tt.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
