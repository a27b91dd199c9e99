package metrics

import "fmt"

// ConfigurationError reports an invalid metric configuration
type ConfigurationError struct {
	Metric string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: configuration error: %s", e.Metric, e.Reason)
}

// InputMismatchError reports length mismatches between parallel input slices
type InputMismatchError struct {
	Field string
	Want  int
	Got   int
}

func (e *InputMismatchError) Error() string {
	return fmt.Sprintf("input mismatch: %s has %d entries, want %d", e.Field, e.Got, e.Want)
}

// UndefinedRatioError reports a zero-denominator ratio in a metric calculation
type UndefinedRatioError struct {
	Metric string
	Word   string
	Group  string
}

func (e *UndefinedRatioError) Error() string {
	msg := fmt.Sprintf("%s: undefined ratio", e.Metric)
	if e.Word != "" {
		msg += fmt.Sprintf(" for word %q", e.Word)
	}
	if e.Group != "" {
		msg += fmt.Sprintf(" (group %s)", e.Group)
	}
	return msg
}

// CollaboratorError reports a failed classifier batch call. Not retried here;
// the batch index lets the caller retry externally.
type CollaboratorError struct {
	Batch int
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("classifier batch %d failed: %v", e.Batch, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
