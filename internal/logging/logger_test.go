package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core), "order-service")

	logger.Info("Order created", Fields{"order_id": "ord_1", "total": int64(44400)})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["component"] != "order-service" {
		t.Errorf("Expected component 'order-service', got %v", ctx["component"])
	}
	if ctx["order_id"] != "ord_1" {
		t.Errorf("Expected order_id 'ord_1', got %v", ctx["order_id"])
	}
	if ctx["total"] != int64(44400) {
		t.Errorf("Expected total 44400, got %v", ctx["total"])
	}
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core), "handlers").With(Fields{"request_id": "req_9"})

	logger.Debug("dropped")
	logger.Warn("Slow request")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry above info level, got %d", len(entries))
	}
	if entries[0].ContextMap()["request_id"] != "req_9" {
		t.Errorf("Expected request_id to be carried, got %v", entries[0].ContextMap())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
