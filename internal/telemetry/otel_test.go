package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInitTracer_AcceptsHostAndURL(t *testing.T) {
	for _, endpoint := range []string{"", "localhost:4318", "http://localhost:4318"} {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		tp, err := InitTracer(ctx, ServiceName, endpoint)
		if err != nil {
			cancel()
			t.Fatalf("InitTracer(%q): %v", endpoint, err)
		}
		if err := Shutdown(ctx, tp); err != nil {
			cancel()
			t.Fatalf("Shutdown(%q): %v", endpoint, err)
		}
		cancel()
	}
}

func TestShutdown_Nil(t *testing.T) {
	t.Parallel()

	if err := Shutdown(context.Background(), nil); err != nil {
		t.Fatalf("Shutdown(nil): %v", err)
	}
	if Tracer("x") == nil {
		t.Fatalf("Tracer returned nil")
	}
}
