package harness

import (
	"github.com/calvinalkan/rexfuzz/internal/entropy"
	"github.com/calvinalkan/rexfuzz/pkg/rexgen"
)

// EngineConfig is the flat-record configuration shape: every toggle is
// present and explicit.
type EngineConfig struct {
	Features               FeatureSet `json:"features"`
	MinimumRepetitions     uint32     `json:"minimum_repetitions"`
	MinimumSubstringLength uint32     `json:"minimum_substring_length"`
}

// DecodeConfig decodes one bool per feature in [Features] order, then both
// thresholds. Features in disabled still consume their byte but are forced
// off, so corpus layout does not depend on campaign settings.
func DecodeConfig(c *entropy.Cursor, disabled FeatureSet) EngineConfig {
	var cfg EngineConfig

	for _, f := range Features() {
		if c.TakeBool() {
			cfg.Features = cfg.Features.With(f)
		}
	}

	cfg.Features = cfg.Features.Without(disabled)
	cfg.MinimumRepetitions = c.TakeUint32()
	cfg.MinimumSubstringLength = c.TakeUint32()

	return cfg
}

// EncodeConfig appends cfg to enc in the order DecodeConfig reads it.
func EncodeConfig(enc *entropy.Encoder, cfg EngineConfig) {
	for _, f := range Features() {
		enc.AppendBool(cfg.Features.Has(f))
	}

	enc.AppendUint32(cfg.MinimumRepetitions)
	enc.AppendUint32(cfg.MinimumSubstringLength)
}

// Rexgen converts the configuration to the engine's flat record.
func (c EngineConfig) Rexgen() rexgen.Config {
	f := c.Features

	return rexgen.Config{
		MinimumRepetitions:     c.MinimumRepetitions,
		MinimumSubstringLength: c.MinimumSubstringLength,
		ConvertDigits:          f.Has(FeatureDigits),
		ConvertNonDigits:       f.Has(FeatureNonDigits),
		ConvertSpaces:          f.Has(FeatureSpaces),
		ConvertNonSpaces:       f.Has(FeatureNonSpaces),
		ConvertWords:           f.Has(FeatureWords),
		ConvertNonWords:        f.Has(FeatureNonWords),
		ConvertRepetitions:     f.Has(FeatureRepetitions),
		CaseInsensitive:        f.Has(FeatureCaseInsensitive),
		CapturingGroups:        f.Has(FeatureCapturingGroups),
		EscapeNonASCII:         f.Has(FeatureEscapeNonASCII),
		SurrogatePairs:         f.Has(FeatureSurrogatePairs),
		DisableStartAnchor:     f.Has(FeatureNoStartAnchor),
		DisableEndAnchor:       f.Has(FeatureNoEndAnchor),
		Verbose:                f.Has(FeatureVerbose),
		Colorize:               f.Has(FeatureColorize),
	}
}
