package apierror

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInternal_KeepsCauseReachable(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is cannot reach the wrapped cause")
	}
	if err.Code != 500 || err.Type != TypeInternal {
		t.Errorf("envelope = %d %s, want 500 INTERNAL", err.Code, err.Type)
	}
	if strings.Contains(err.Message, "connection reset") {
		t.Error("cause detail leaked into the client message")
	}
}

func TestInternal_CauseNeverRenders(t *testing.T) {
	raw, err := json.Marshal(Internal(errors.New("password for db was wrong")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "password") {
		t.Errorf("rendered envelope %s carries the internal cause", raw)
	}
}

func TestValidation(t *testing.T) {
	err := Validation([]string{"email must be a valid email address", "handle must not be empty"})

	if err.Code != 400 || err.Type != TypeValidation {
		t.Errorf("envelope = %d %s, want 400 VALIDATION", err.Code, err.Type)
	}
	if err.Message != "email must be a valid email address" {
		t.Errorf("message = %q, want the first field error", err.Message)
	}
	if len(err.Errors) != 2 {
		t.Errorf("carried %d field errors, want 2", len(err.Errors))
	}
}
