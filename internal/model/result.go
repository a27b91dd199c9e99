package model

// NonCompletion is the sentinel recorded when the generation collaborator could
// not obtain a response. It is always excluded from word counting; whether it
// counts toward classifier denominators is caller policy (see ClassifierConfig).
const NonCompletion = "Unable to get response."

// Metric names accepted by the facade and reported in results
const (
	MetricCooccurrenceBias          = "cooccurrence_bias"
	MetricStereotypicalAssociations = "stereotypical_associations"
	MetricStereotypeClassifier      = "stereotype_classifier"
)

// MetricKind distinguishes the shape of a metric value
type MetricKind string

const (
	// KindScalar is a single float value
	KindScalar MetricKind = "scalar"

	// KindWordLevel is a per-word mapping of values
	KindWordLevel MetricKind = "word_level"
)

// MetricValue is a tagged metric result: either a scalar or a word-level map.
// Callers branch on Kind rather than on value shape.
type MetricValue struct {
	Name  string     `json:"name"`
	Kind  MetricKind `json:"kind"`
	Value *float64   `json:"value,omitempty"`

	// Words holds per-word values in word_level mode
	Words map[string]float64 `json:"words,omitempty"`

	// Undefined lists words excluded because their ratio was undefined
	Undefined []string `json:"undefined,omitempty"`
}

// Scalar builds a scalar metric value
func Scalar(name string, v float64) MetricValue {
	return MetricValue{Name: name, Kind: KindScalar, Value: &v}
}

// WordLevel builds a word-level metric value
func WordLevel(name string, words map[string]float64, undefined []string) MetricValue {
	return MetricValue{Name: name, Kind: KindWordLevel, Words: words, Undefined: undefined}
}

// ResponseRecord is one generated response with its optional prompt and score
type ResponseRecord struct {
	Prompt   string   `json:"prompt,omitempty"`
	Response string   `json:"response"`
	Score    *float64 `json:"stereotype_score,omitempty"`
}

// EvalResult is the facade's complete output: metric values keyed by metric name,
// plus an optional response-level breakdown when detailed output was requested
type EvalResult struct {
	Metrics map[string]MetricValue `json:"metrics"`
	Data    []ResponseRecord       `json:"data,omitempty"`
}

// GenerationData is one prompt/response pair produced by the generation collaborator
type GenerationData struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// GenerationMetadata describes a generation run
type GenerationMetadata struct {
	NonCompletionRate float64 `json:"non_completion_rate"`
	Temperature       float32 `json:"temperature"`
	Count             int     `json:"count"`
	Model             string  `json:"model"`
}

// GenerationResult is the generation collaborator's complete output
type GenerationResult struct {
	Data     []GenerationData   `json:"data"`
	Metadata GenerationMetadata `json:"metadata"`
}
