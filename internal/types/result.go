package types

import "fmt"

// ValidationResult is the outcome of structural validation
type ValidationResult struct {
	// Valid is true when Errors is empty
	Valid bool `json:"valid" yaml:"valid"`
	// Errors blocks the result
	Errors []string `json:"errors" yaml:"errors"`
	// Warnings are informative unless strict mode promotes them
	Warnings []string `json:"warnings" yaml:"warnings"`
	// Metadata carries format specific facts about the document
	Metadata map[string]interface{} `json:"metadata" yaml:"metadata"`
}

// NewValidationResult returns an empty, valid result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
		Metadata: map[string]interface{}{},
	}
}

// AddError records an error and marks the result invalid
func (r *ValidationResult) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

// AddWarning records a warning
func (r *ValidationResult) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// PromoteWarnings copies every warning into the errors, as strict mode
// requires. Warnings are kept so callers still see where errors came from.
func (r *ValidationResult) PromoteWarnings() {
	if len(r.Warnings) == 0 {
		return
	}
	r.Errors = append(r.Errors, r.Warnings...)
	r.Valid = false
}

// TransformResult is the outcome of a transform call. It is always
// returned, failures included.
type TransformResult struct {
	// Formatted is the serialized document, empty when the transform failed
	Formatted string `json:"formatted" yaml:"formatted"`
	// Valid is true only when validation passed and Errors is empty
	Valid    bool                   `json:"valid" yaml:"valid"`
	Warnings []string               `json:"warnings" yaml:"warnings"`
	Errors   []string               `json:"errors" yaml:"errors"`
	Metadata map[string]interface{} `json:"metadata" yaml:"metadata"`
	// SourceFormat is the requested or detected input format
	SourceFormat string `json:"source_format" yaml:"source_format"`
	// TargetFormat is the requested output format
	TargetFormat string `json:"target_format" yaml:"target_format"`
}

// NewTransformResult returns an empty result for the given formats
func NewTransformResult(source, target string) *TransformResult {
	return &TransformResult{
		Valid:        true,
		Warnings:     []string{},
		Errors:       []string{},
		Metadata:     map[string]interface{}{},
		SourceFormat: source,
		TargetFormat: target,
	}
}

// AddError records an error and marks the result invalid
func (r *TransformResult) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

// AddWarning records a warning
func (r *TransformResult) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds a validation result into the transform result
func (r *TransformResult) Merge(v *ValidationResult) {
	if v == nil {
		return
	}
	r.Errors = append(r.Errors, v.Errors...)
	r.Warnings = append(r.Warnings, v.Warnings...)
	for k, val := range v.Metadata {
		r.Metadata[k] = val
	}
	if !v.Valid || len(r.Errors) > 0 {
		r.Valid = false
	}
}

// PromoteWarnings copies every warning into the errors
func (r *TransformResult) PromoteWarnings() {
	if len(r.Warnings) == 0 {
		return
	}
	r.Errors = append(r.Errors, r.Warnings...)
	r.Valid = false
}

// DetectResult is the outcome of format detection
type DetectResult struct {
	// Format is the detected format name
	Format string `json:"format" yaml:"format"`
	// Confidence is the score rendered as a percentage, e.g. "100%"
	Confidence string `json:"confidence" yaml:"confidence"`
	// Message is a human readable summary
	Message string `json:"message" yaml:"message"`
	// Score is the raw confidence in [0, 1]
	Score float64 `json:"-" yaml:"-"`
}

// FormatConfidence renders a score in [0, 1] as a whole percentage
func FormatConfidence(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// BatchFile is one file of a batch transform
type BatchFile struct {
	Path string `json:"path" yaml:"path"`
	// Output is where the converted document was written, if anywhere
	Output string           `json:"output,omitempty" yaml:"output,omitempty"`
	Result *TransformResult `json:"result" yaml:"result"`
}

// BatchResult summarises a transform over many files. It is valid when
// every file is.
type BatchResult struct {
	Valid bool        `json:"valid" yaml:"valid"`
	Files []BatchFile `json:"files" yaml:"files"`
}

// NewBatchResult returns an empty, valid batch
func NewBatchResult() *BatchResult {
	return &BatchResult{Valid: true, Files: []BatchFile{}}
}

// Add appends a file's outcome
func (b *BatchResult) Add(path, output string, res *TransformResult) {
	b.Files = append(b.Files, BatchFile{Path: path, Output: output, Result: res})
	if res == nil || !res.Valid {
		b.Valid = false
	}
}

// Failed lists the paths of invalid files
func (b *BatchResult) Failed() []string {
	var failed []string
	for _, f := range b.Files {
		if f.Result == nil || !f.Result.Valid {
			failed = append(failed, f.Path)
		}
	}
	return failed
}
