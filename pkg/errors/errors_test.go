package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(ErrCodeGraphUnavailable, "connection refused")
	if got := err.Error(); got != "[GRAPH_001] connection refused" {
		t.Errorf("unexpected Error(): %s", got)
	}

	withDetail := err.WithDetail("bolt://localhost:7687")
	if !strings.Contains(withDetail.Error(), "bolt://localhost:7687") {
		t.Errorf("detail missing from Error(): %s", withDetail.Error())
	}
	// Original must be untouched.
	if err.Detail != "" {
		t.Errorf("WithDetail mutated the receiver")
	}
}

func TestWrapPreservesChain(t *testing.T) {
	base := stderrors.New("socket closed")
	wrapped := Wrap(base, ErrCodeGraphUnavailable, "query failed")

	if !stderrors.Is(wrapped, base) {
		t.Errorf("errors.Is should find the base error through the chain")
	}
	if !IsCode(wrapped, ErrCodeGraphUnavailable) {
		t.Errorf("IsCode should match the wrapping code")
	}
	if IsCode(wrapped, ErrCodeMissingLengthEntry) {
		t.Errorf("IsCode matched an unrelated code")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ErrCodeStorageError, "ignored") != nil {
		t.Errorf("Wrap(nil, ...) must return nil")
	}
}

func TestWrapPreservesCodeForUnknown(t *testing.T) {
	inner := New(ErrCodeMissingLengthEntry, "no entry for a42")
	outer := Wrap(inner, CodeUnknown, "resolve failed")
	if outer.Code != ErrCodeMissingLengthEntry {
		t.Errorf("expected preserved code %s, got %s", ErrCodeMissingLengthEntry, outer.Code)
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != CodeOK {
		t.Errorf("nil error should map to CodeOK")
	}
	if GetCode(stderrors.New("plain")) != CodeUnknown {
		t.Errorf("plain error should map to CodeUnknown")
	}
	if GetCode(New(ErrCodeArtifactNotFound, "missing")) != ErrCodeArtifactNotFound {
		t.Errorf("AppError code not extracted")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("artifact missing")) {
		t.Errorf("NotFound should satisfy IsNotFound")
	}
	if !IsNotFound(New(ErrCodeArtifactNotFound, "no such key")) {
		t.Errorf("ErrCodeArtifactNotFound should satisfy IsNotFound")
	}
	if IsNotFound(New(ErrCodeGraphUnavailable, "down")) {
		t.Errorf("graph errors are not not-found")
	}
}
