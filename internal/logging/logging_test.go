package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Leveler
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNewDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	for _, format := range []string{"text", "json", ""} {
		log := New(Config{Level: "debug", Format: format})
		log.Debug(ctx, "debug", String("k", "v"))
		log.Info(ctx, "info", Int("n", 1))
		log.Warn(ctx, "warn", Any("x", []int{1, 2}))
		log.Error(ctx, "error")
		log.With(String("component", "test")).Info(ctx, "with fields")
	}
}

func TestNoop(t *testing.T) {
	log := Noop()
	log.Info(context.Background(), "dropped")
	if log.With(String("k", "v")) == nil {
		t.Fatal("Noop With returned nil")
	}
}

func TestContextRoundTrip(t *testing.T) {
	base := New(Config{})
	ctx := ContextWithLogger(context.Background(), base)
	if got := LoggerFromContext(ctx); got != base {
		t.Fatal("context did not return the stored logger")
	}

	// A bare context yields a usable fallback.
	if got := LoggerFromContext(context.Background()); got == nil {
		t.Fatal("fallback logger is nil")
	}
}
