package task

import (
	"errors"
	"testing"

	domain "github.com/example/todo-graphql-demo/domain/task"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name    string
		serr    *ServiceError
		wantIs  error
		wantMsg string
	}{
		{
			name:    "validation",
			serr:    &ServiceError{Code: ErrorCodeValidation, Field: "title", Message: "title is required"},
			wantIs:  domain.ErrInvalid,
			wantMsg: "title is required",
		},
		{
			name:    "not found",
			serr:    &ServiceError{Code: ErrorCodeNotFound, ID: 5, Message: "Task with ID 5 not found."},
			wantIs:  domain.ErrNotFound,
			wantMsg: "Task with ID 5 not found.",
		},
		{
			name:    "unavailable",
			serr:    &ServiceError{Code: ErrorCodeUnavailable, Message: "disk full"},
			wantIs:  domain.ErrStoreUnavailable,
			wantMsg: "task store unavailable: disk full",
		},
		{
			name:    "unknown code",
			serr:    &ServiceError{Code: "boom", Message: "bad"},
			wantMsg: "task service error [boom]: bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapServiceError(tt.serr)
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected errors.Is(%v, %v)", err, tt.wantIs)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestToServiceError_RoundTrip(t *testing.T) {
	in := &domain.ValidationError{Field: "description", Message: "description must be at most 1000 characters"}

	serr, err := toServiceError(in)
	if err != nil {
		t.Fatalf("toServiceError() error = %v", err)
	}

	var out *domain.ValidationError
	if !errors.As(mapServiceError(serr), &out) {
		t.Fatal("expected *ValidationError after mapping back")
	}
	if *out != *in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestToServiceError_PassesThroughInfraErrors(t *testing.T) {
	infra := errors.New("disk I/O error")

	serr, err := toServiceError(infra)
	if serr != nil {
		t.Errorf("expected nil payload, got %+v", serr)
	}
	if !errors.Is(err, infra) {
		t.Errorf("expected infra error passed through, got %v", err)
	}
}
