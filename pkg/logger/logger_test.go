package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitConfiguresGlobalLogger(t *testing.T) {
	t.Cleanup(func() {
		Replace(nil)
	})

	for _, format := range []string{"console", "json", ""} {
		if err := Init(Config{Level: "debug", Format: format}); err != nil {
			t.Fatalf("Init(%q) returned error: %v", format, err)
		}

		logger := Logger()
		if logger == nil {
			t.Fatal("expected Logger to return non-nil logger")
		}
		if !logger.Core().Enabled(zap.DebugLevel) {
			t.Fatalf("expected %q logger to enable debug level", format)
		}
	}
}

func TestInitFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() {
		Replace(nil)
	})

	if err := Init(Config{Level: "chatty"}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if Logger().Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug to be disabled for unknown level")
	}
	if !Logger().Core().Enabled(zap.InfoLevel) {
		t.Fatal("expected info to be enabled for unknown level")
	}
}

func TestWithModuleAttachesModuleField(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	t.Cleanup(func() {
		Replace(nil)
	})
	Replace(zap.New(core))

	logger := WithModule("session")
	logger.Info("module test")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if module := entries[0].ContextMap()["module"]; module != "session" {
		t.Fatalf("expected module field to be \"session\", got %v", module)
	}
}
