// Package pipeline runs the full analysis of gaze recordings: telemetry
// decoding, fixation detection, saccades, dwell summary and the optional
// join against the tokens of the viewed source file.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Sumatoshi-tech/codegaze/pkg/fixation"
	"github.com/Sumatoshi-tech/codegaze/pkg/report"
)

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid pipeline options")

// optionsValidate is shared by all Options values; validator caches struct
// metadata per instance.
var optionsValidate = validator.New()

// Options are the per-recording knobs of a run.
type Options struct {
	// Recording is the gaze telemetry XML file.
	Recording string `validate:"required"`

	// Source is the viewed source file. It binds token ids to a file and,
	// unless TokensFile is set, is tokenized for the token join.
	Source string

	// Language is the tree-sitter grammar of Source. Empty means detect.
	Language string

	// TokensFile is an externally produced token list used instead of
	// tokenizing Source.
	TokensFile string

	// IDETracking is the IDE plugin XML holding environment metadata.
	IDETracking string

	// SkipTokens disables the token join; Source then only binds token ids.
	SkipTokens bool

	MaxGapMS          int64   `validate:"gte=0"`
	DisplayGapMS      int64   `validate:"gte=0"`
	VelocityThreshold float64 `validate:"gt=0"`
	MinDurationMS     int64   `validate:"gte=0"`
}

// DefaultOptions returns options for recording with the default detector
// parameters.
func DefaultOptions(recording string) Options {
	return Options{
		Recording:         recording,
		MaxGapMS:          fixation.DefaultMaxGapMS,
		DisplayGapMS:      fixation.DefaultDisplayGapMS,
		VelocityThreshold: fixation.DefaultVelocityThreshold,
		MinDurationMS:     fixation.DefaultMinDurationMS,
	}
}

// Validate checks the struct tags of o.
func (o *Options) Validate() error {
	err := optionsValidate.Struct(o)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	return nil
}

// Parameters returns the detector settings as recorded in a report.
func (o *Options) Parameters() report.Parameters {
	return report.Parameters{
		MaxGapMS:          o.MaxGapMS,
		DisplayGapMS:      o.DisplayGapMS,
		VelocityThreshold: o.VelocityThreshold,
		MinDurationMS:     o.MinDurationMS,
	}
}

// tokenSource reports whether o asks for a token join.
func (o *Options) tokenSource() bool {
	return !o.SkipTokens && (o.TokensFile != "" || o.Source != "")
}
