package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Chunk splits texts into consecutive batches of at most size entries
func Chunk(texts []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var batches [][]string
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[start:end])
	}
	return batches
}

// BatchScorer scores a batch of texts, returning one probability per text
type BatchScorer interface {
	ScoreBatch(ctx context.Context, texts []string) ([]float64, error)
}

// ScoreJob scores one batch of texts. Index preserves input order when results
// are reassembled from the pool.
type ScoreJob struct {
	Index  int
	Texts  []string
	Scorer BatchScorer
}

// Execute runs the scoring call
func (j *ScoreJob) Execute(ctx context.Context) Result {
	scores, err := j.Scorer.ScoreBatch(ctx, j.Texts)
	if err == nil && len(scores) != len(j.Texts) {
		err = fmt.Errorf("scorer returned %d scores for %d texts", len(scores), len(j.Texts))
	}
	return &ScoreResult{Index: j.Index, Scores: scores, Err: err}
}

// ScoreResult is the outcome of one batch scoring call
type ScoreResult struct {
	Index  int
	Scores []float64
	Err    error
}

// GetError returns the scoring error, if any
func (r *ScoreResult) GetError() error { return r.Err }

// ReadPromptsFromFile reads prompts from a file, one per line.
// Empty lines and #-comments are skipped.
func ReadPromptsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var prompts []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prompts = append(prompts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return prompts, nil
}
