// Package detector guesses the format of a text by parsing it with every
// candidate codec and scoring the outcomes.
package detector

import (
	"errors"
	"fmt"

	"github.com/alevsk/shapeshift/internal/codec"
	"github.com/alevsk/shapeshift/internal/logger"
)

// ErrDetection is returned when no candidate format accepts the input
var ErrDetection = fmt.Errorf("format detection failed")

// Signature classifies the outcome of a parse attempt
type Signature int

const (
	// SignatureOK means the codec parsed the text
	SignatureOK Signature = iota
	// SignatureEmpty means the text was blank
	SignatureEmpty
	// SignatureSyntax means the text violates the format grammar
	SignatureSyntax
	// SignatureStructure means the text parsed but cannot be mapped to a document
	SignatureStructure
)

// String returns the signature name
func (s Signature) String() string {
	switch s {
	case SignatureOK:
		return "ok"
	case SignatureEmpty:
		return "empty"
	case SignatureSyntax:
		return "syntax"
	case SignatureStructure:
		return "structure"
	default:
		return fmt.Sprintf("signature(%d)", int(s))
	}
}

// Classify maps a parse error to its signature
func Classify(err error) Signature {
	switch {
	case err == nil:
		return SignatureOK
	case errors.Is(err, codec.ErrEmptyInput):
		return SignatureEmpty
	case errors.Is(err, codec.ErrUnsupportedStructure):
		return SignatureStructure
	default:
		return SignatureSyntax
	}
}

// Priority is the trial order; ties go to the earlier format. Stricter
// grammars come first, so JSON wins over YAML for JSON text.
var Priority = []codec.Format{
	codec.FormatJSON,
	codec.FormatXML,
	codec.FormatTOML,
	codec.FormatYAML,
	codec.FormatOpenAPI,
}

// residual scores for failed attempts; a successful parse always scores 1.0
var scores = map[codec.Format]map[Signature]float64{
	codec.FormatJSON:    {SignatureSyntax: 0.1, SignatureStructure: 0.1},
	codec.FormatYAML:    {SignatureSyntax: 0.2, SignatureStructure: 0.2},
	codec.FormatOpenAPI: {SignatureSyntax: 0.1, SignatureStructure: 0.1},
}

// Score returns the confidence for a parse outcome
func Score(f codec.Format, sig Signature) float64 {
	if sig == SignatureOK {
		return 1.0
	}
	return scores[f][sig]
}

// Detector probes candidate formats in priority order. It holds no mutable
// state and is safe for concurrent use.
type Detector struct {
	registry *codec.Registry
	formats  []codec.Format
}

// New returns a detector over the given formats, or over every supported
// format when none are given. Candidates are always tried in Priority order.
func New(registry *codec.Registry, formats ...codec.Format) *Detector {
	if registry == nil {
		registry = codec.NewRegistry()
	}

	candidates := Priority
	if len(formats) > 0 {
		wanted := make(map[codec.Format]bool, len(formats))
		for _, f := range formats {
			wanted[f] = true
		}
		candidates = nil
		for _, f := range Priority {
			if wanted[f] {
				candidates = append(candidates, f)
			}
		}
	}
	return &Detector{registry: registry, formats: candidates}
}

// Formats returns the candidate formats in trial order
func (d *Detector) Formats() []codec.Format {
	return append([]codec.Format(nil), d.formats...)
}

// Detect returns the best scoring format and its confidence
func (d *Detector) Detect(text string) (codec.Format, float64, error) {
	var (
		best      codec.Format
		bestScore float64
	)

	for _, f := range d.formats {
		c, err := d.registry.Get(f)
		if err != nil {
			continue
		}
		_, parseErr := c.Parse(text)
		sig := Classify(parseErr)
		score := Score(f, sig)

		logger.Debug().
			Str("format", string(f)).
			Str("signature", sig.String()).
			Float64("score", score).
			Msg("detection attempt")

		// strictly greater keeps the earlier format on ties
		if score > bestScore {
			best, bestScore = f, score
		}
	}

	if bestScore == 0 {
		return "", 0, fmt.Errorf("%w: no candidate format accepts the input", ErrDetection)
	}
	return best, bestScore, nil
}
