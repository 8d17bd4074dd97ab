package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/wikicorpus/internal/model"
)

const testSeed = "https://en.wikipedia.org/wiki/Pablo_Picasso"

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, result *model.CrawlResult) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, result *model.CrawlResult) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, result)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "test-step"})

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "step-1"}, &mockStep{name: "step-2"}, &mockStep{name: "step-3"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)

		p := New()
		p.AddStep(&mockStep{
			name: "step-1",
			doFunc: func(_ context.Context, _ *model.CrawlResult) error {
				executionOrder = append(executionOrder, "step-1")
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: "step-2",
			doFunc: func(_ context.Context, _ *model.CrawlResult) error {
				executionOrder = append(executionOrder, "step-2")
				return nil
			},
		})

		result := model.NewCrawlResult(testSeed)
		if err := p.Execute(context.Background(), result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 {
			t.Fatalf("expected 2 executions, got %d", len(executionOrder))
		}
		if executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
	})

	t.Run("steps share the result", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{
			name: "producer",
			doFunc: func(_ context.Context, r *model.CrawlResult) error {
				r.Pages = append(r.Pages, model.RestorePage(testSeed, "Pablo Picasso", "Picasso was a painter.\n"))
				return nil
			},
		})
		var seen int
		p.AddStep(&mockStep{
			name: "consumer",
			doFunc: func(_ context.Context, r *model.CrawlResult) error {
				seen = len(r.Pages)
				return nil
			},
		})

		if err := p.Execute(context.Background(), model.NewCrawlResult(testSeed)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen != 1 {
			t.Errorf("consumer saw %d pages, want 1", seen)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.CrawlResult) error {
				return expectedErr
			},
		})
		p.AddStep(second)

		result := model.NewCrawlResult(testSeed)
		err := p.Execute(context.Background(), result)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
		if len(result.PerformedSteps) != 0 {
			t.Errorf("expected no performed steps, got %v", result.PerformedSteps)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "should-run"}

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.CrawlResult) error {
				return errors.New("step failed")
			},
		})
		p.AddStep(second)

		result := model.NewCrawlResult(testSeed)
		if err := p.Execute(context.Background(), result); err != nil {
			t.Errorf("expected nil error with continueOnError, got %v", err)
		}
		if second.callCount != 1 {
			t.Error("second step should have been called")
		}
		if result.Error == nil {
			t.Error("expected error to be kept in result")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "should-not-run"}
		p := New()
		p.AddStep(step)

		result := model.NewCrawlResult(testSeed)
		err := p.Execute(ctx, result)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have been called")
		}
		if !errors.Is(result.Error, context.Canceled) {
			t.Errorf("result.Error = %v, want context.Canceled", result.Error)
		}
	})

	t.Run("records performed steps and finish time", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "crawl"}, &mockStep{name: "output"})

		result := model.NewCrawlResult(testSeed)
		if err := p.Execute(context.Background(), result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %d", len(result.PerformedSteps))
		}
		if result.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
		if result.FinishedAt.Before(result.StartedAt) {
			t.Error("FinishedAt is before StartedAt")
		}
	})

	t.Run("records error in result", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("test error")

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.CrawlResult) error {
				return expectedErr
			},
		})

		result := model.NewCrawlResult(testSeed)
		_ = p.Execute(context.Background(), result) //nolint:errcheck // checked via result.Error

		if result.Error == nil {
			t.Error("expected error to be recorded in result")
		}
		if result.ErrorMessage != expectedErr.Error() {
			t.Errorf("expected error message %q, got %q", expectedErr.Error(), result.ErrorMessage)
		}
	})
}

// TestPipelineStepNames tests the StepNames method.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	t.Run("returns empty slice for empty pipeline", func(t *testing.T) {
		t.Parallel()

		if names := New().StepNames(); len(names) != 0 {
			t.Errorf("expected empty slice, got %v", names)
		}
	})

	t.Run("returns names in order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "alpha"},
			&mockStep{name: "beta"},
			&mockStep{name: "gamma"},
		)

		names := p.StepNames()
		if len(names) != 3 {
			t.Fatalf("expected 3 names, got %d", len(names))
		}
		if names[0] != "alpha" || names[1] != "beta" || names[2] != "gamma" {
			t.Errorf("unexpected names: %v", names)
		}
	})
}
