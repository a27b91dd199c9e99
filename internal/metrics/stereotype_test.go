package metrics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ppiankov/stereoscan/internal/lexicon"
	"github.com/ppiankov/stereoscan/internal/model"
)

func facadeConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Stereotype.StereotypeWords = []string{"confident", "emotional"}
	return cfg
}

func newFacade(t *testing.T, cfg *model.Config, scorer *MockScorer) *StereotypeMetrics {
	t.Helper()
	store, err := lexicon.NewStore(lexicon.WithStereotypeWords(cfg.Stereotype.StereotypeWords))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	var s *StereotypeMetrics
	if scorer != nil {
		s, err = NewStereotypeMetrics(store, cfg, scorer)
	} else {
		s, err = NewStereotypeMetrics(store, cfg, nil)
	}
	if err != nil {
		t.Fatalf("NewStereotypeMetrics failed: %v", err)
	}
	return s
}

func TestStereotypeMetrics_AllMetrics(t *testing.T) {
	cfg := facadeConfig()
	scorer := &MockScorer{score: func(string) float64 { return 0.8 }}
	facade := newFacade(t, cfg, scorer)

	result, err := facade.Evaluate(context.Background(), EvalInput{
		Texts:   cobsCorpus,
		Prompts: []string{"p1", "p1"},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	cobs, ok := result.Metrics[model.MetricCooccurrenceBias]
	if !ok || cobs.Value == nil {
		t.Fatal("missing cooccurrence bias result")
	}
	if math.Abs(*cobs.Value-0.1584) > 1e-3 {
		t.Errorf("COBS = %g, want ~0.1584", *cobs.Value)
	}

	sa, ok := result.Metrics[model.MetricStereotypicalAssociations]
	if !ok || sa.Value == nil {
		t.Fatal("missing stereotypical associations result")
	}
	if math.Abs(*sa.Value-0.25) > 1e-12 {
		t.Errorf("SA = %g, want 0.25", *sa.Value)
	}

	sf, ok := result.Metrics[MetricStereotypeFraction]
	if !ok || *sf.Value != 1 {
		t.Errorf("unexpected SF: %+v", sf)
	}
	if _, ok := result.Metrics[MetricExpectedMaxStereotype]; !ok {
		t.Error("EMS should be present with prompt grouping")
	}
	if _, ok := result.Metrics[MetricStereotypeProbability]; !ok {
		t.Error("SP should be present with prompt grouping")
	}
}

func TestStereotypeMetrics_MetricSubset(t *testing.T) {
	cfg := facadeConfig()
	cfg.Metrics = []string{model.MetricStereotypicalAssociations}
	facade := newFacade(t, cfg, nil)

	result, err := facade.Evaluate(context.Background(), EvalInput{Texts: cobsCorpus})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(result.Metrics) != 1 {
		t.Errorf("expected 1 metric, got %d", len(result.Metrics))
	}
	if _, ok := result.Metrics[model.MetricStereotypicalAssociations]; !ok {
		t.Error("missing stereotypical associations result")
	}
}

func TestStereotypeMetrics_UnknownMetric(t *testing.T) {
	cfg := facadeConfig()
	cfg.Metrics = []string{"toxicity"}
	store, err := lexicon.NewStore()
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	_, err = NewStereotypeMetrics(store, cfg, nil)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}

func TestStereotypeMetrics_PromptLengthMismatch(t *testing.T) {
	facade := newFacade(t, facadeConfig(), nil)

	_, err := facade.Evaluate(context.Background(), EvalInput{
		Texts:   cobsCorpus,
		Prompts: []string{"p1"},
	})
	var mismatch *InputMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected InputMismatchError, got %v", err)
	}
}

func TestStereotypeMetrics_SuppliedScoresNotRecomputed(t *testing.T) {
	cfg := facadeConfig()
	cfg.Metrics = []string{model.MetricStereotypeClassifier}
	scorer := &MockScorer{score: func(string) float64 { return 0.9 }}
	facade := newFacade(t, cfg, scorer)

	result, err := facade.Evaluate(context.Background(), EvalInput{
		Texts:  []string{"r1", "r2"},
		Scores: []float64{0.1, 0.2},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if scorer.Calls() != 0 {
		t.Errorf("classifier called %d times despite supplied scores", scorer.Calls())
	}
	if *result.Metrics[MetricStereotypeFraction].Value != 0 {
		t.Error("SF should use the supplied scores")
	}
}

func TestStereotypeMetrics_NonCompletionFiltering(t *testing.T) {
	cfg := facadeConfig()
	cfg.Metrics = []string{model.MetricStereotypeClassifier}
	scorer := &MockScorer{score: func(string) float64 { return 0.9 }}
	facade := newFacade(t, cfg, scorer)

	texts := []string{"real response", model.NonCompletion}
	scores := []float64{0.9, 0.0}

	// Default policy: sentinels leave both numerator and denominator
	result, err := facade.Evaluate(context.Background(), EvalInput{Texts: texts, Scores: scores, ReturnData: true})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if *result.Metrics[MetricStereotypeFraction].Value != 1 {
		t.Errorf("SF = %g, want 1 with sentinel dropped", *result.Metrics[MetricStereotypeFraction].Value)
	}
	if len(result.Data) != 1 {
		t.Errorf("expected 1 scored response, got %d", len(result.Data))
	}

	// Caller policy: sentinels stay in the denominator
	cfg.Classifier.CountNonCompletions = true
	result, err = facade.Evaluate(context.Background(), EvalInput{Texts: texts, Scores: scores, ReturnData: true})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if *result.Metrics[MetricStereotypeFraction].Value != 0.5 {
		t.Errorf("SF = %g, want 0.5 with sentinel counted", *result.Metrics[MetricStereotypeFraction].Value)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 scored responses, got %d", len(result.Data))
	}
}

func TestStereotypeMetrics_SentinelExcludedFromCounting(t *testing.T) {
	cfg := facadeConfig()
	cfg.Metrics = []string{model.MetricStereotypicalAssociations}
	facade := newFacade(t, cfg, nil)

	// The sentinel contains no lexicon words, but excluding it must happen
	// before tokenization regardless of content
	withSentinel := append([]string{}, cobsCorpus...)
	withSentinel = append(withSentinel, model.NonCompletion)

	base, err := facade.Evaluate(context.Background(), EvalInput{Texts: cobsCorpus})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	withS, err := facade.Evaluate(context.Background(), EvalInput{Texts: withSentinel})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if *base.Metrics[model.MetricStereotypicalAssociations].Value != *withS.Metrics[model.MetricStereotypicalAssociations].Value {
		t.Error("sentinel responses must not affect word counting")
	}
}

func TestStereotypeMetrics_ReturnData(t *testing.T) {
	cfg := facadeConfig()
	cfg.Metrics = []string{model.MetricStereotypeClassifier}
	facade := newFacade(t, cfg, nil)

	result, err := facade.Evaluate(context.Background(), EvalInput{
		Texts:      []string{"r1", "r2"},
		Prompts:    []string{"p1", "p2"},
		Scores:     []float64{0.3, 0.8},
		ReturnData: true,
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(result.Data) != 2 {
		t.Fatalf("expected 2 data records, got %d", len(result.Data))
	}
	if result.Data[1].Prompt != "p2" || result.Data[1].Response != "r2" {
		t.Errorf("unexpected record: %+v", result.Data[1])
	}
	if result.Data[1].Score == nil || *result.Data[1].Score != 0.8 {
		t.Errorf("unexpected record score: %+v", result.Data[1].Score)
	}
}

func TestStereotypeMetrics_DeterministicRerun(t *testing.T) {
	cfg := facadeConfig()
	cfg.Metrics = []string{model.MetricCooccurrenceBias, model.MetricStereotypicalAssociations}
	facade := newFacade(t, cfg, nil)

	first, err := facade.Evaluate(context.Background(), EvalInput{Texts: cobsCorpus})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	second, err := facade.Evaluate(context.Background(), EvalInput{Texts: cobsCorpus})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	for name, v := range first.Metrics {
		other := second.Metrics[name]
		if math.Abs(*v.Value-*other.Value) > 1e-12 {
			t.Errorf("%s differs between identical runs: %g vs %g", name, *v.Value, *other.Value)
		}
	}
}
