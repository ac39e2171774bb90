// Package orchestrator composes detection, parsing, validation, secret
// scanning and serialization into the three public operations.
package orchestrator

import (
	"fmt"
	"strings"

	"github.com/alevsk/shapeshift/internal/codec"
	"github.com/alevsk/shapeshift/internal/detector"
	"github.com/alevsk/shapeshift/internal/logger"
	"github.com/alevsk/shapeshift/internal/scanner"
	"github.com/alevsk/shapeshift/internal/types"
	"github.com/alevsk/shapeshift/internal/validator"
	"github.com/cespare/xxhash/v2"
)

// LowConfidence is the detection score below which a transform warns
const LowConfidence = 0.8

// Options configures an Orchestrator
type Options struct {
	// StrictMode promotes warnings to errors unless a call overrides it
	StrictMode bool
}

// DefaultOptions returns non-strict options
func DefaultOptions() *Options {
	return &Options{StrictMode: false}
}

// TransformOptions are the per-call transform parameters
type TransformOptions struct {
	// Source is the input format name; empty means detect
	Source string
	// Target is the output format name; empty means json
	Target   string
	Validate bool
	Pretty   bool
	Indent   int
	// Strict overrides the orchestrator's strict mode when set
	Strict *bool
}

// DefaultTransformOptions converts to pretty JSON with validation
func DefaultTransformOptions() TransformOptions {
	return TransformOptions{
		Target:   string(codec.FormatJSON),
		Validate: true,
		Pretty:   true,
		Indent:   2,
	}
}

// Orchestrator is immutable after construction and safe for concurrent use
type Orchestrator struct {
	strict    bool
	registry  *codec.Registry
	detector  *detector.Detector
	validator *validator.Validator
}

// New creates an Orchestrator
func New(opts *Options) *Orchestrator {
	if opts == nil {
		opts = DefaultOptions()
	}
	registry := codec.NewRegistry()
	return &Orchestrator{
		strict:    opts.StrictMode,
		registry:  registry,
		detector:  detector.New(registry),
		validator: validator.New(),
	}
}

// StrictMode reports the orchestrator-level strict setting
func (o *Orchestrator) StrictMode() bool {
	return o.strict
}

func (o *Orchestrator) isStrict(override *bool) bool {
	if override != nil {
		return *override
	}
	return o.strict
}

// Formats lists the supported format names
func (o *Orchestrator) Formats() []string {
	formats := codec.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

// Digest returns the hex xxhash64 of the input text
func Digest(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// Transform converts text to the target format. It never fails: every
// problem is reported in the result's errors.
func (o *Orchestrator) Transform(text string, opts TransformOptions) *types.TransformResult {
	target := opts.Target
	if strings.TrimSpace(target) == "" {
		target = string(codec.FormatJSON)
	}

	res := types.NewTransformResult(opts.Source, target)
	res.Metadata["digest"] = Digest(text)
	defer func() {
		if o.isStrict(opts.Strict) {
			res.PromoteWarnings()
		}
	}()

	var src codec.Format
	if strings.TrimSpace(opts.Source) == "" {
		f, score, err := o.detector.Detect(text)
		if err != nil {
			res.SourceFormat = "unknown"
			res.AddError("%v", err)
			return res
		}
		src = f
		res.SourceFormat = string(f)
		res.Metadata["detected_confidence"] = types.FormatConfidence(score)
		if score < LowConfidence {
			res.AddWarning("format detection confidence low (%s), detected: %s", types.FormatConfidence(score), f)
		}
	} else {
		f, err := codec.ParseFormat(opts.Source)
		if err != nil {
			res.AddError("unknown source format: %s", opts.Source)
			return res
		}
		src = f
		res.SourceFormat = string(f)
	}

	tgt, err := codec.ParseFormat(target)
	if err != nil {
		res.AddError("unknown target format: %s", target)
		return res
	}
	res.TargetFormat = string(tgt)

	srcCodec, err := o.registry.Get(src)
	if err != nil {
		res.AddError("transform error: %v", err)
		return res
	}
	tgtCodec, err := o.registry.Get(tgt)
	if err != nil {
		res.AddError("transform error: %v", err)
		return res
	}

	doc, err := srcCodec.Parse(text)
	if err != nil {
		res.AddError("transform error: %v", err)
		return res
	}

	if opts.Validate {
		res.Merge(o.validator.Validate(doc, src))
	}
	res.Warnings = append(res.Warnings, scanner.Scan(doc)...)
	if warning := lossWarning(src, tgt); warning != "" {
		res.AddWarning("%s", warning)
	}

	formatted, err := tgtCodec.Serialize(doc, &codec.Options{Pretty: opts.Pretty, Indent: opts.Indent})
	if err != nil {
		res.AddError("transform error: %v", err)
		return res
	}
	res.Formatted = formatted

	logger.Debug().
		Str("source", res.SourceFormat).
		Str("target", res.TargetFormat).
		Bool("valid", res.Valid).
		Int("warnings", len(res.Warnings)).
		Msg("transform finished")
	return res
}

// ValidateOnly parses text with the named format and validates it. Any
// failure becomes a single "validation error" entry.
func (o *Orchestrator) ValidateOnly(text, format string, strict *bool) *types.ValidationResult {
	c, err := o.registry.Lookup(format)
	if err != nil {
		return validationFailure(err)
	}
	doc, err := c.Parse(text)
	if err != nil {
		return validationFailure(err)
	}

	res := o.validator.Validate(doc, c.Format())
	if o.isStrict(strict) {
		res.PromoteWarnings()
	}
	return res
}

func validationFailure(err error) *types.ValidationResult {
	res := types.NewValidationResult()
	res.AddError("validation error: %v", err)
	return res
}

// Detect reports the most likely format of text. It fails with
// detector.ErrDetection when no format accepts the input.
func (o *Orchestrator) Detect(text string) (*types.DetectResult, error) {
	f, score, err := o.detector.Detect(text)
	if err != nil {
		return nil, err
	}
	confidence := types.FormatConfidence(score)
	return &types.DetectResult{
		Format:     string(f),
		Confidence: confidence,
		Message:    fmt.Sprintf("detected format: %s (%s confidence)", f, confidence),
		Score:      score,
	}, nil
}
