package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "produit introuvable",
			},
			want: "produit introuvable",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeUnavailable,
				Message: "backend unreachable",
				Cause:   errors.New("dial tcp: refused"),
			},
			want: "backend unreachable: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestWrap_NilError(t *testing.T) {
	if got := Wrap(nil, ErrCodeInternal, "ignored"); got != nil {
		t.Errorf("Wrap(nil) = %v, want nil", got)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("x"), IsNotFound},
		{"conflict", Conflict("x"), IsConflict},
		{"validation", ValidationField("phone", "x"), IsValidation},
		{"unauthorized", Unauthorized("x"), IsUnauthorized},
		{"forbidden", Forbidden("x"), IsForbidden},
		{"unavailable", Unavailable("x"), IsUnavailable},
		{"internal", Internalf("x %d", 1), IsInternal},
		{"wrapped chain", fmt.Errorf("outer: %w", NotFoundf("order %d", 7)), IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("predicate returned false for %v", tt.err)
			}
			if tt.check(errors.New("plain")) {
				t.Errorf("predicate returned true for plain error")
			}
		})
	}
}

func TestGetCodeAndField(t *testing.T) {
	err := fmt.Errorf("save: %w", ValidationField("email", "adresse invalide"))
	if got := GetCode(err); got != ErrCodeValidation {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeValidation)
	}
	if got := GetField(err); got != "email" {
		t.Errorf("GetField() = %q, want %q", got, "email")
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestMapContextError(t *testing.T) {
	if MapContextError(nil) != nil {
		t.Fatal("MapContextError(nil) should be nil")
	}
	if !IsTimeout(MapContextError(fmt.Errorf("call: %w", context.DeadlineExceeded))) {
		t.Error("deadline should map to timeout")
	}
	if !IsCanceled(MapContextError(context.Canceled)) {
		t.Error("cancel should map to canceled")
	}
	plain := errors.New("boom")
	if got := MapContextError(plain); !errors.Is(got, plain) || GetCode(got) != "" {
		t.Errorf("plain error should pass through, got %v", got)
	}
	nf := NotFound("x")
	if got := MapContextError(nf); got != error(nf) {
		t.Errorf("AppError should pass through unchanged")
	}
}
