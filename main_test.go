package main

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func TestPollUntil(t *testing.T) {
	t.Run("Returns once the condition holds", func(t *testing.T) {
		calls := 0
		ok := pollUntil(context.Background(), func() bool {
			calls++
			return calls == 3
		}, time.Second, time.Millisecond)

		if !ok || calls != 3 {
			t.Errorf("expected success after 3 calls, got %v after %d", ok, calls)
		}
	})

	t.Run("Gives up after the timeout", func(t *testing.T) {
		ok := pollUntil(context.Background(), func() bool { return false }, 20*time.Millisecond, time.Millisecond)
		if ok {
			t.Error("expected timeout")
		}
	})

	t.Run("Stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ok := pollUntil(ctx, func() bool { return false }, time.Minute, time.Millisecond)
		if ok {
			t.Error("expected cancellation")
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for input, expected := range tests {
		if got := parseLevel(input); got != expected {
			t.Errorf("parseLevel(%q): expected %v, got %v", input, expected, got)
		}
	}
}
