package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldConstructors(t *testing.T) {
	if f := String("stage", "select"); f.Key != "stage" || f.Value != "select" {
		t.Errorf("String field mismatch: %+v", f)
	}
	if f := Int("batch", 3); f.Value != 3 {
		t.Errorf("Int field mismatch: %+v", f)
	}
	if f := Err(nil); f.Value != "<nil>" {
		t.Errorf("Err(nil) should carry \"<nil>\", got %+v", f)
	}
}

func TestZapLoggerEmitsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	log.Info("batch complete", Int("batch", 7), String("kind", "assignee"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "batch complete" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["batch"] != int64(7) {
		t.Errorf("expected batch=7, got %v", fields["batch"])
	}
	if fields["kind"] != "assignee" {
		t.Errorf("expected kind=assignee, got %v", fields["kind"])
	}
}

func TestWithDoesNotMutateParent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	parent := NewLoggerFromCore(core)
	child := parent.With(String("run_id", "r1"))

	parent.Info("from parent")
	child.Info("from child")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["run_id"]; ok {
		t.Errorf("parent entry must not carry the child's field")
	}
	if entries[1].ContextMap()["run_id"] != "r1" {
		t.Errorf("child entry missing run_id")
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if parseLevel("nonsense") != zapcore.InfoLevel {
		t.Errorf("unknown levels must default to info")
	}
	if parseLevel("debug") != zapcore.DebugLevel {
		t.Errorf("debug not parsed")
	}
}

func TestDefaultLoggerIsNopUntilSet(t *testing.T) {
	// Must not panic even before SetDefault.
	Default().Info("ignored")

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	Default().Info("visible")
	if logs.Len() != 1 {
		t.Errorf("expected the default logger to be replaced")
	}
	SetDefault(NewNopLogger())
}
