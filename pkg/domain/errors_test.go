package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestConnectivityErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewConnectivityError("create tasks", cause)

	if !IsConnectivity(err) {
		t.Error("connectivity error not recognized")
	}
	if !errors.Is(err, cause) {
		t.Error("connectivity error does not unwrap to its cause")
	}

	wrapped := fmt.Errorf("submit: %w", err)
	if !IsConnectivity(wrapped) {
		t.Error("wrapped connectivity error not recognized")
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	err := NewValidationError("org", "must not be empty")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatal("validation error not recognized")
	}
	if verr.Field != "org" {
		t.Errorf("field = %q, want %q", verr.Field, "org")
	}
	if IsConnectivity(err) {
		t.Error("validation error misclassified as connectivity")
	}
}

func TestErrorClassesAreDisjoint(t *testing.T) {
	if IsValidation(NewConnectivityError("queue task", errors.New("timeout"))) {
		t.Error("connectivity error misclassified as validation")
	}
	if IsConnectivity(ErrHandleNotFound) {
		t.Error("sentinel misclassified as connectivity")
	}
}
