package model

// Config holds the complete stereoscan configuration
type Config struct {
	Metrics    []string         `yaml:"metrics" json:"metrics"`
	Stereotype StereotypeConfig `yaml:"stereotype" json:"stereotype"`
	Classifier ClassifierConfig `yaml:"classifier" json:"classifier"`
	Generation GenerationConfig `yaml:"generation" json:"generation"`
	Output     OutputConfig     `yaml:"output" json:"output"`
}

// StereotypeConfig controls the co-occurrence based metrics
type StereotypeConfig struct {
	// TargetCategory selects the default stereotype word list: "adjective" or "profession"
	TargetCategory string `yaml:"target_category" json:"target_category"`

	// StereotypeWords overrides the category default when non-empty
	StereotypeWords []string `yaml:"stereotype_words,omitempty" json:"stereotype_words,omitempty"`

	// Groups maps protected attribute group names to their word lists.
	// Empty means the default male/female gender lexicons.
	Groups map[string][]string `yaml:"groups,omitempty" json:"groups,omitempty"`

	// DecayBase is the exponential distance decay base for weighted co-occurrence
	DecayBase float64 `yaml:"decay_base" json:"decay_base"`

	// COBSMode is "mean" or "word_level"
	COBSMode string `yaml:"cobs_mode" json:"cobs_mode"`
}

// ClassifierConfig controls the classifier-based metrics and their collaborator
type ClassifierConfig struct {
	// Threshold maps stereotype probabilities to {0,1}
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// BatchSize bounds how many texts go to the classifier per call
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// Concurrency bounds in-flight classifier batch calls
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// TopK is the expected number of generations per prompt for EMS/SP
	TopK int `yaml:"top_k" json:"top_k"`

	// CountNonCompletions keeps non-completion sentinels in SF's denominator
	CountNonCompletions bool `yaml:"count_non_completions" json:"count_non_completions"`

	// Model is the classifier deployment name (OpenAI-compatible endpoint)
	Model string `yaml:"model" json:"model"`

	// BaseURL for custom endpoints; empty uses the default OpenAI endpoint
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// Timeout for a single classifier call, in seconds
	Timeout int `yaml:"timeout" json:"timeout"`

	// RequestsPerSecond rate-limits classifier calls (0 disables limiting)
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`

	// CacheTTL is the score cache lifetime in seconds (0 disables caching)
	CacheTTL int `yaml:"cache_ttl" json:"cache_ttl"`
}

// GenerationConfig controls the response-generation collaborator
type GenerationConfig struct {
	// Model is the generation model name
	Model string `yaml:"model" json:"model"`

	// BaseURL for custom endpoints; empty uses the default OpenAI endpoint
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`

	// SystemPrompt used for every generation
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`

	// Count is the number of responses generated per prompt
	Count int `yaml:"count" json:"count"`

	// Temperature for generation
	Temperature float32 `yaml:"temperature" json:"temperature"`

	// MaxTokens limits response length
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Timeout for a single generation call, in seconds
	Timeout int `yaml:"timeout" json:"timeout"`

	// Concurrency bounds in-flight generation calls
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// RequestsPerSecond rate-limits generation calls (0 disables limiting)
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	// ReturnData includes response-level scores in evaluation results
	ReturnData bool `yaml:"return_data" json:"return_data"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Metrics: []string{
			MetricCooccurrenceBias,
			MetricStereotypicalAssociations,
			MetricStereotypeClassifier,
		},
		Stereotype: StereotypeConfig{
			TargetCategory: "adjective",
			DecayBase:      0.95,
			COBSMode:       "mean",
		},
		Classifier: ClassifierConfig{
			Threshold:         0.5,
			BatchSize:         250,
			Concurrency:       4,
			TopK:              25,
			Model:             "stereotype-classifier",
			Timeout:           30,
			RequestsPerSecond: 10,
			CacheTTL:          3600,
		},
		Generation: GenerationConfig{
			Model:             "gpt-4o-mini",
			SystemPrompt:      "You are a helpful assistant.",
			Count:             25,
			Temperature:       1,
			MaxTokens:         1000,
			Timeout:           30,
			Concurrency:       8,
			RequestsPerSecond: 10,
		},
	}
}
