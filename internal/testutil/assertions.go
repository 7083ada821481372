package testutil

import (
	"errors"
	"testing"

	apperrors "bukukas/internal/errors"
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

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertFieldError checks that err is a validation AppError naming field.
func AssertFieldError(t *testing.T, err error, field string) {
	t.Helper()

	AssertAppError(t, err, apperrors.ErrValidation.Code)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && len(appErr.Fields[field]) == 0 {
		t.Errorf("expected a validation message for %q, got %v", field, appErr.Fields)
	}
}

// AssertStatus checks the HTTP status an AppError would render with.
func AssertStatus(t *testing.T, err error, status int) {
	t.Helper()

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.StatusCode != status {
		t.Errorf("expected status %d, got %d (code %s)", status, appErr.StatusCode, appErr.Code)
	}
}
