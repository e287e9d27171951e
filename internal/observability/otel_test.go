package observability

import (
	"context"
	stderrors "errors"
	"testing"

	"resumizer/internal/config"
)

func TestDisabledManagerIsInert(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewObservabilityManager() error: %v", err)
	}

	metrics := om.GetMetrics()
	if metrics == nil {
		t.Fatal("GetMetrics() returned nil")
	}

	ctx := context.Background()

	// None of these should panic with uninitialized instruments.
	metrics.RecordBusinessMetric(ctx, "resume_optimized", true, om)
	metrics.RecordBusinessMetric(ctx, "job_analyzed", true, om)
	metrics.RecordBusinessMetric(ctx, "watch_reload", true, om)
	metrics.RecordBusinessMetric(ctx, "rate_limit_wait", true, om)
	metrics.RecordGapScore(ctx, 72, om)
	metrics.RecordRecommendationCount(ctx, 4, om)
	metrics.RecordEditsApplied(ctx, 3, om)

	if tracer := om.Tracer("resumizer.test"); tracer == nil {
		t.Error("Tracer() returned nil for disabled manager")
	}

	if err := om.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error: %v", err)
	}
}

func TestTrackAIOperationWithTokensUninitializedMetrics(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewObservabilityManager() error: %v", err)
	}
	metrics := om.GetMetrics()

	t.Run("runs the function and returns its error", func(t *testing.T) {
		wantErr := stderrors.New("model unavailable")
		called := false

		err := metrics.TrackAIOperationWithTokens(context.Background(), "requirements", func(ctx context.Context) *AIOperationResult {
			called = true
			return &AIOperationResult{Error: wantErr}
		}, om)

		if !called {
			t.Error("operation function was not called")
		}
		if !stderrors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
	})

	t.Run("nil result means success", func(t *testing.T) {
		err := metrics.TrackAIOperationWithTokens(context.Background(), "recommend", func(ctx context.Context) *AIOperationResult {
			return nil
		}, om)
		if err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})
}

func TestGetObservabilityConfig(t *testing.T) {
	t.Run("nil config falls back to defaults", func(t *testing.T) {
		obsConfig := GetObservabilityConfig(nil, "1.2.3")

		if obsConfig.ServiceName != "resumizer" {
			t.Errorf("ServiceName = %q, want %q", obsConfig.ServiceName, "resumizer")
		}
		if obsConfig.ServiceVersion != "1.2.3" {
			t.Errorf("ServiceVersion = %q, want %q", obsConfig.ServiceVersion, "1.2.3")
		}
		if !obsConfig.Enabled {
			t.Error("Enabled = false, want true")
		}
	})

	t.Run("app version fills empty service version", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Observability.ServiceName = "resumizer"
		cfg.Observability.Enabled = true

		obsConfig := GetObservabilityConfig(cfg, "2.0.0")
		if obsConfig.ServiceVersion != "2.0.0" {
			t.Errorf("ServiceVersion = %q, want %q", obsConfig.ServiceVersion, "2.0.0")
		}
	})

	t.Run("configured service version wins", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Observability.ServiceVersion = "pinned"

		obsConfig := GetObservabilityConfig(cfg, "2.0.0")
		if obsConfig.ServiceVersion != "pinned" {
			t.Errorf("ServiceVersion = %q, want %q", obsConfig.ServiceVersion, "pinned")
		}
	})
}
