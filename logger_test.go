package respcache

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
)

func TestGetLoggerDefaultsToSlogDefault(t *testing.T) {
	logger = nil
	loggerOnce = sync.Once{}

	got := GetLogger()
	if got == nil {
		t.Fatal("GetLogger should never return nil")
	}
}

func TestSetLoggerOverridesDefault(t *testing.T) {
	logger = nil
	loggerOnce = sync.Once{}

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	got := GetLogger()
	if got != custom {
		t.Error("GetLogger should return the logger set via SetLogger")
	}

	got.Debug("hello")
	if buf.Len() == 0 {
		t.Error("expected log output to be written through the custom logger")
	}
}
