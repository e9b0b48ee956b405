package otel_test

import (
	"context"
	"testing"

	"github.com/Womp-Womp/AdventureBot/internal/platform/otel"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		enabled  string
	}{
		{name: "empty endpoint", endpoint: "", enabled: ""},
		{name: "explicitly disabled", endpoint: "http://localhost:4318", enabled: "FALSE"},
		// Non-routable so nothing is exported.
		{name: "endpoint set", endpoint: "http://192.0.2.1:4318", enabled: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(otel.EnvEndpoint, tt.endpoint)
			t.Setenv(otel.EnvEnabled, tt.enabled)

			shutdown, err := otel.Setup(context.Background(), "adventure-test")
			if err != nil {
				t.Fatalf("setup: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}

func TestSetupNoopShutdownIgnoresCancelledContext(t *testing.T) {
	t.Setenv(otel.EnvEndpoint, "")

	shutdown, err := otel.Setup(context.Background(), "adventure-test")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}
