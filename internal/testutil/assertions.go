package testutil

import (
	"errors"
	"testing"

	apperrors "kvitto/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertFieldError checks that err is a *ValidationError carrying the
// expected message for the given field.
func AssertFieldError(t *testing.T, err error, field, expectedMessage string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected validation error on field %q, got nil", field)
	}

	var vErr *apperrors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}

	msg, ok := vErr.Fields[field]
	if !ok {
		t.Fatalf("expected message on field %q, got fields %v", field, vErr.Fields)
	}
	if msg != expectedMessage {
		t.Errorf("field %q: expected message %q, got %q", field, expectedMessage, msg)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
