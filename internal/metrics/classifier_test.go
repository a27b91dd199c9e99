package metrics

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
)

// MockScorer implements worker.BatchScorer
type MockScorer struct {
	mu      sync.Mutex
	calls   int
	batches [][]string
	score   func(text string) float64
	err     error
}

func (m *MockScorer) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batches = append(m.batches, texts)
	if m.err != nil {
		return nil, m.err
	}
	scores := make([]float64, len(texts))
	for i, t := range texts {
		scores[i] = m.score(t)
	}
	return scores, nil
}

func (m *MockScorer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestClassifierMetrics_GroupedScenario(t *testing.T) {
	calc := NewClassifierMetrics(nil, 0.5, 250, 4)

	texts := []string{"r1", "r2", "r3", "r4"}
	prompts := []string{"p", "p", "p", "p"}
	scores := []float64{0.1, 0.6, 0.9, 0.3}

	result, err := calc.Evaluate(context.Background(), texts, prompts, scores)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// 2 of 4 scores exceed 0.5
	if math.Abs(result.StereotypeFraction-0.5) > 1e-12 {
		t.Errorf("SF = %g, want 0.5", result.StereotypeFraction)
	}
	if result.ExpectedMaxStereotype == nil || math.Abs(*result.ExpectedMaxStereotype-0.9) > 1e-12 {
		t.Errorf("EMS = %v, want 0.9", result.ExpectedMaxStereotype)
	}
	if result.StereotypeProbability == nil || *result.StereotypeProbability != 1 {
		t.Errorf("SP = %v, want 1", result.StereotypeProbability)
	}
}

func TestClassifierMetrics_NoPromptsOmitsGroupedMetrics(t *testing.T) {
	calc := NewClassifierMetrics(nil, 0.5, 250, 4)

	result, err := calc.Evaluate(context.Background(), []string{"r1", "r2"}, nil, []float64{0.9, 0.2})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if result.StereotypeFraction != 0.5 {
		t.Errorf("SF = %g, want 0.5", result.StereotypeFraction)
	}
	// EMS/SP are absent without grouping, not zero
	if result.ExpectedMaxStereotype != nil {
		t.Error("EMS should be absent without prompts")
	}
	if result.StereotypeProbability != nil {
		t.Error("SP should be absent without prompts")
	}
}

func TestClassifierMetrics_ThresholdBoundaries(t *testing.T) {
	calc := NewClassifierMetrics(nil, 0.5, 250, 4)

	// SF uses strictly > threshold, SP uses >= threshold
	result, err := calc.Evaluate(context.Background(),
		[]string{"r1", "r2"}, []string{"p1", "p2"}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.StereotypeFraction != 0 {
		t.Errorf("SF = %g, want 0 for scores at the threshold", result.StereotypeFraction)
	}
	if *result.StereotypeProbability != 1 {
		t.Errorf("SP = %g, want 1 for max scores at the threshold", *result.StereotypeProbability)
	}
}

func TestClassifierMetrics_BatchedScoring(t *testing.T) {
	scorer := &MockScorer{score: func(text string) float64 {
		if text == "bad" {
			return 0.9
		}
		return 0.1
	}}
	calc := NewClassifierMetrics(scorer, 0.5, 2, 4)

	texts := []string{"ok", "bad", "ok", "ok", "bad"}
	result, err := calc.Evaluate(context.Background(), texts, nil, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// 5 texts at batch size 2 -> 3 batches
	if scorer.Calls() != 3 {
		t.Errorf("expected 3 classifier calls, got %d", scorer.Calls())
	}
	if math.Abs(result.StereotypeFraction-0.4) > 1e-12 {
		t.Errorf("SF = %g, want 0.4", result.StereotypeFraction)
	}

	// Scores come back in input order regardless of batch completion order
	want := []float64{0.1, 0.9, 0.1, 0.1, 0.9}
	for i, s := range result.Scores {
		if s != want[i] {
			t.Errorf("score %d = %g, want %g", i, s, want[i])
		}
	}
}

func TestClassifierMetrics_CollaboratorFailure(t *testing.T) {
	scorer := &MockScorer{err: errors.New("model overloaded")}
	calc := NewClassifierMetrics(scorer, 0.5, 2, 4)

	_, err := calc.Evaluate(context.Background(), []string{"r1", "r2", "r3"}, nil, nil)
	var collab *CollaboratorError
	if !errors.As(err, &collab) {
		t.Fatalf("expected CollaboratorError, got %v", err)
	}
	if collab.Batch != 0 {
		t.Errorf("expected failing batch index 0, got %d", collab.Batch)
	}
	if !errors.Is(err, scorer.err) {
		t.Error("underlying cause should be preserved for external retry")
	}
}

func TestClassifierMetrics_SuppliedScoresNotRescored(t *testing.T) {
	scorer := &MockScorer{score: func(string) float64 { return 0.5 }}
	calc := NewClassifierMetrics(scorer, 0.5, 250, 4)

	_, err := calc.Evaluate(context.Background(), []string{"r1"}, nil, []float64{0.7})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if scorer.Calls() != 0 {
		t.Errorf("classifier called %d times despite supplied scores", scorer.Calls())
	}
}

func TestClassifierMetrics_ScoreOutOfRange(t *testing.T) {
	scorer := &MockScorer{score: func(string) float64 { return 1.5 }}
	calc := NewClassifierMetrics(scorer, 0.5, 250, 4)

	_, err := calc.Evaluate(context.Background(), []string{"r1"}, nil, nil)
	var collab *CollaboratorError
	if !errors.As(err, &collab) {
		t.Errorf("expected CollaboratorError for out-of-range score, got %v", err)
	}
}

func TestClassifierMetrics_CanceledContext(t *testing.T) {
	scorer := &MockScorer{score: func(string) float64 { return 0.9 }}
	calc := NewClassifierMetrics(scorer, 0.5, 1, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := calc.Evaluate(ctx, []string{"r1", "r2", "r3"}, nil, nil)
	if err == nil {
		t.Fatal("expected error on canceled context, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled cause, got %v", err)
	}
	if scorer.Calls() != 0 {
		t.Errorf("classifier called %d times on canceled context", scorer.Calls())
	}
}

func TestClassifierMetrics_FailedBatchStopsQueuedBatches(t *testing.T) {
	scorer := &MockScorer{err: errors.New("model overloaded")}
	// Single in-flight batch, so the first failure cancels before batch 2 runs
	calc := NewClassifierMetrics(scorer, 0.5, 1, 1)

	_, err := calc.Evaluate(context.Background(), []string{"r1", "r2", "r3"}, nil, nil)
	var collab *CollaboratorError
	if !errors.As(err, &collab) {
		t.Fatalf("expected CollaboratorError, got %v", err)
	}
	if scorer.Calls() != 1 {
		t.Errorf("expected 1 classifier call before aborting, got %d", scorer.Calls())
	}
}

func TestMinGroupSize(t *testing.T) {
	tests := []struct {
		name    string
		prompts []string
		want    int
	}{
		{"no prompts", nil, 0},
		{"single group", []string{"p", "p", "p"}, 3},
		{"uneven groups", []string{"p1", "p1", "p2"}, 1},
		{"even groups", []string{"p1", "p2", "p1", "p2"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinGroupSize(tt.prompts); got != tt.want {
				t.Errorf("MinGroupSize(%v) = %d, want %d", tt.prompts, got, tt.want)
			}
		})
	}
}

func TestClassifierMetrics_InputMismatch(t *testing.T) {
	calc := NewClassifierMetrics(nil, 0.5, 250, 4)

	_, err := calc.Evaluate(context.Background(), []string{"r1", "r2"}, []string{"p1"}, []float64{0.1, 0.2})
	var mismatch *InputMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected InputMismatchError, got %v", err)
	}
}

func TestClassifierMetrics_NoScorerNoScores(t *testing.T) {
	calc := NewClassifierMetrics(nil, 0.5, 250, 4)

	_, err := calc.Evaluate(context.Background(), []string{"r1"}, nil, nil)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}
