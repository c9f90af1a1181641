package harness

import (
	"fmt"
	"math"

	"github.com/calvinalkan/rexfuzz/internal/entropy"
)

// SeedBuilder encodes a test case into the bytes a variant decodes back into
// that case.
//
// Misuse panics: an example longer than the variant allows, a wrong slot
// count for fixed layouts, or a shape the policy cannot express.
//
//	seed := harness.NewSeedBuilder(v).
//		Examples("abc", "abd").
//		Features(harness.FeatureDigits).
//		Bytes()
type SeedBuilder struct {
	variant  Variant
	examples ExampleSet
	config   EngineConfig
	calls    BuilderCalls
}

// NewSeedBuilder returns a builder for v with no examples, no features and
// both thresholds set to 1.
func NewSeedBuilder(v Variant) *SeedBuilder {
	return &SeedBuilder{
		variant: v,
		config:  EngineConfig{MinimumRepetitions: 1, MinimumSubstringLength: 1},
	}
}

// Examples appends text examples.
func (b *SeedBuilder) Examples(texts ...string) *SeedBuilder {
	for _, t := range texts {
		b.examples = append(b.examples, []byte(t))
	}

	return b
}

// RawExamples appends byte examples.
func (b *SeedBuilder) RawExamples(raw ...[]byte) *SeedBuilder {
	for _, r := range raw {
		b.examples = append(b.examples, append([]byte(nil), r...))
	}

	return b
}

// Features enables features in the flat record.
func (b *SeedBuilder) Features(fs ...Feature) *SeedBuilder {
	for _, f := range fs {
		b.config.Features = b.config.Features.With(f)
	}

	return b
}

// Thresholds sets both flat-record thresholds.
func (b *SeedBuilder) Thresholds(minRepetitions, minSubstringLength uint32) *SeedBuilder {
	b.config.MinimumRepetitions = minRepetitions
	b.config.MinimumSubstringLength = minSubstringLength

	return b
}

// Config replaces the flat record.
func (b *SeedBuilder) Config(cfg EngineConfig) *SeedBuilder {
	b.config = cfg

	return b
}

// Calls appends builder calls.
func (b *SeedBuilder) Calls(calls ...BuilderCall) *SeedBuilder {
	b.calls = append(b.calls, calls...)

	return b
}

// Bytes encodes the seed.
func (b *SeedBuilder) Bytes() []byte {
	enc := entropy.NewEncoder()

	switch b.variant.Layout {
	case LayoutFlatRecord:
		EncodeConfig(enc, b.config)
		encodeExamples(enc, b.examples, b.variant.Policy, b.variant.Limits, 0)
	case LayoutBuilderCalls:
		tail := entropy.NewEncoder()

		if b.fillsRemainder() {
			if len(b.calls) > 0 {
				panic("seed builder: calls cannot follow a filled remainder slot")
			}
		} else {
			EncodeBuilderCalls(tail, b.calls)
		}

		encodeExamples(enc, b.examples, b.variant.Policy, b.variant.Limits, tail.Len())
		enc.AppendBytes(tail.Bytes())
	}

	return enc.Bytes()
}

// fillsRemainder reports whether the last example takes every remaining byte.
func (b *SeedBuilder) fillsRemainder() bool {
	return b.variant.Policy == PolicyBudgetedRemainder &&
		b.variant.Limits.Count > 0 &&
		len(b.examples) == b.variant.Limits.Count
}

// encodeExamples appends set so that GenerateExamples reads it back, given
// that tail more bytes follow it.
func encodeExamples(enc *entropy.Encoder, set ExampleSet, p Policy, limits Limits, tail int) {
	switch p {
	case PolicyFixed:
		if len(set) != limits.Count {
			panic(fmt.Sprintf("seed builder: fixed policy needs %d examples, got %d", limits.Count, len(set)))
		}

		for _, ex := range set {
			if len(ex) != limits.Length {
				panic(fmt.Sprintf("seed builder: fixed policy needs %d-byte examples, got %q", limits.Length, ex))
			}

			enc.AppendBytes(ex)
		}

	case PolicyBudgeted, PolicyBudgetedRemainder:
		if limits.Length <= 0 {
			panic("seed builder: budgeted policy needs a positive length")
		}

		if len(set) > limits.Count {
			panic(fmt.Sprintf("seed builder: at most %d examples, got %d", limits.Count, len(set)))
		}

		if tail > 0 && len(set) < limits.Count {
			panic("seed builder: every slot must be filled when more data follows the examples")
		}

		sized := set
		last := []byte(nil)

		if p == PolicyBudgetedRemainder && len(set) == limits.Count {
			if tail > 0 {
				panic("seed builder: remainder slot would swallow the data that follows it")
			}

			last = set[len(set)-1]
			if len(last) == 0 {
				panic("seed builder: remainder slot must not be empty")
			}

			sized = set[:len(set)-1]
		}

		widths := prefixWidths(sized, 0, len(last)+tail, limits.Length)
		for i, ex := range sized {
			bound := min(limits.Length, widths[i].remaining)
			if len(ex) > bound {
				panic(fmt.Sprintf("seed builder: example %q exceeds %d bytes", ex, limits.Length))
			}

			enc.AppendBoundedInt(uint64(len(ex)), uint64(bound))
			enc.AppendBytes(ex)
		}

		enc.AppendBytes(last)

	case PolicyNative:
		after := tail
		if tail > 0 {
			after++ // terminating continuation flag
		}

		widths := prefixWidths(set, 1, after, math.MaxInt)
		for i, ex := range set {
			enc.AppendBool(true)
			enc.AppendBoundedInt(uint64(len(ex)), uint64(widths[i].remaining))
			enc.AppendBytes(ex)
		}

		if tail > 0 {
			enc.AppendBool(false)
		}

	default:
		panic(fmt.Sprintf("seed builder: unknown policy %v", p))
	}
}

type prefixWidth struct {
	width     int
	remaining int // bytes left when the size prefix is read
}

// prefixWidths computes, back to front, the size-prefix width of every
// element. Each element is preceded by lead bytes (the native continuation
// flag), and after bytes follow the last one. The decoder bounds each size by
// min(limit, remaining), so the width depends on everything after it.
func prefixWidths(set ExampleSet, lead, after, limit int) []prefixWidth {
	out := make([]prefixWidth, len(set))
	suffix := after

	for i := len(set) - 1; i >= 0; i-- {
		found := false

		for w := 1; w <= 8; w++ {
			remaining := w + len(set[i]) + suffix
			if entropy.Width(uint64(min(limit, remaining))) == w {
				out[i] = prefixWidth{width: w, remaining: remaining}
				found = true

				break
			}
		}

		if !found {
			panic("seed builder: no stable size prefix")
		}

		suffix = lead + out[i].remaining
	}

	return out
}

// Seed bundles a human-readable name with seed bytes.
type Seed struct {
	Name string
	Data []byte
}

type scenario struct {
	name     string
	examples []string
	features []Feature
	minRep   uint32
	minLen   uint32
}

var scenarios = []scenario{
	{name: "empty"},
	{name: "common_prefix", examples: []string{"abc", "abd", "a"}},
	{name: "empty_and_duplicate", examples: []string{"", "x", "x"}},
	{
		name:     "classes",
		examples: []string{"a1 b2", "x9_y", "\t "},
		features: []Feature{FeatureDigits, FeatureSpaces, FeatureWords},
	},
	{
		name:     "negated_classes",
		examples: []string{"a-1", "b+2"},
		features: []Feature{FeatureNonDigits, FeatureNonSpaces, FeatureNonWords},
	},
	{
		name:     "repetitions",
		examples: []string{"aaaa", "abab", "ab"},
		features: []Feature{FeatureRepetitions},
		minRep:   1,
		minLen:   1,
	},
	{
		name:     "case_insensitive",
		examples: []string{"Ab", "aB", "ſK"},
		features: []Feature{FeatureCaseInsensitive, FeatureWords},
	},
	{
		name:     "non_ascii",
		examples: []string{"é", "\U0001F600", "\xff\xfe"},
		features: []Feature{FeatureEscapeNonASCII, FeatureSurrogatePairs},
	},
	{
		name:     "anchors_and_groups",
		examples: []string{"x", "y", "xy"},
		features: []Feature{FeatureCapturingGroups, FeatureNoStartAnchor, FeatureNoEndAnchor},
	},
	{
		name:     "verbose_colorized",
		examples: []string{"a b", "#c"},
		features: []Feature{FeatureVerbose, FeatureColorize},
	},
	{
		name:     "max_thresholds",
		examples: []string{"aaaaaaaa"},
		features: []Feature{FeatureRepetitions},
		minRep:   math.MaxUint32,
		minLen:   math.MaxUint32,
	},
	{
		name:     "zero_thresholds",
		examples: []string{"abab"},
		features: []Feature{FeatureRepetitions},
		minRep:   0,
		minLen:   0,
	},
}

// CuratedSeeds returns hand-crafted seeds for v, each reaching a distinct
// engine path. Examples are fitted to the variant's limits.
func CuratedSeeds(v Variant) []Seed {
	seeds := make([]Seed, 0, len(scenarios))

	for _, s := range scenarios {
		seeds = append(seeds, Seed{Name: s.name, Data: s.seed(v)})
	}

	return seeds
}

func (s scenario) seed(v Variant) []byte {
	b := NewSeedBuilder(v).RawExamples(fitExamples(s.examples, v)...)

	switch v.Layout {
	case LayoutFlatRecord:
		b.Features(s.features...)

		if s.usesThresholds() {
			b.Thresholds(s.minRep, s.minLen)
		}
	case LayoutBuilderCalls:
		if v.Policy != PolicyBudgetedRemainder {
			b.Calls(s.calls()...)
		}
	}

	return b.Bytes()
}

func (s scenario) usesThresholds() bool {
	for _, f := range s.features {
		if f == FeatureRepetitions {
			return true
		}
	}

	return false
}

var featureMethods = map[Feature]Method{
	FeatureDigits:          MethodWithConversionOfDigits,
	FeatureNonDigits:       MethodWithConversionOfNonDigits,
	FeatureSpaces:          MethodWithConversionOfWhitespace,
	FeatureNonSpaces:       MethodWithConversionOfNonWhitespace,
	FeatureWords:           MethodWithConversionOfWords,
	FeatureNonWords:        MethodWithConversionOfNonWords,
	FeatureRepetitions:     MethodWithConversionOfRepetitions,
	FeatureCaseInsensitive: MethodWithCaseInsensitiveMatching,
	FeatureCapturingGroups: MethodWithCapturingGroups,
	FeatureNoStartAnchor:   MethodWithoutStartAnchor,
	FeatureNoEndAnchor:     MethodWithoutEndAnchor,
	FeatureVerbose:         MethodWithVerboseMode,
	FeatureColorize:        MethodWithSyntaxHighlighting,
}

// calls translates the scenario into the fluent shape. Both anchor features
// together become a single WithoutAnchors call.
func (s scenario) calls() BuilderCalls {
	set := NewFeatureSet(s.features...)

	var calls BuilderCalls

	for _, f := range set.List() {
		switch f {
		case FeatureEscapeNonASCII:
			var surrogates uint32
			if set.Has(FeatureSurrogatePairs) {
				surrogates = 1
			}

			calls = append(calls, CallWith(MethodWithEscapingOfNonASCIIChars, surrogates))
		case FeatureNoStartAnchor, FeatureNoEndAnchor:
			if !set.Has(FeatureNoStartAnchor) || !set.Has(FeatureNoEndAnchor) {
				calls = append(calls, Call(featureMethods[f]))
			} else if f == FeatureNoEndAnchor {
				calls = append(calls, Call(MethodWithoutAnchors))
			}
		case FeatureSurrogatePairs:
		default:
			calls = append(calls, Call(featureMethods[f]))
		}
	}

	if s.usesThresholds() {
		calls = append(calls,
			CallWith(MethodWithMinimumRepetitions, s.minRep),
			CallWith(MethodWithMinimumSubstringLength, s.minLen),
		)
	}

	return calls
}

// fitExamples adapts texts to the variant's limits: truncated to Length,
// cut to Count, and for fixed policies padded to exactly Count slots of
// Length bytes.
func fitExamples(texts []string, v Variant) ExampleSet {
	set := make(ExampleSet, 0, len(texts))
	for _, t := range texts {
		set = append(set, []byte(t))
	}

	if !v.Policy.Bounded() {
		return set
	}

	count, length := max(v.Limits.Count, 0), max(v.Limits.Length, 0)

	if len(set) > count {
		set = set[:count]
	}

	for i, ex := range set {
		if len(ex) > length {
			set[i] = ex[:length]
		}
	}

	switch v.Policy {
	case PolicyFixed:
		for len(set) < count {
			set = append(set, nil)
		}

		for i, ex := range set {
			set[i] = padCyclic(ex, length)
		}
	case PolicyBudgeted, PolicyBudgetedRemainder:
		// Examples followed by calls must fill every slot.
		if v.Layout == LayoutBuilderCalls {
			for len(set) < count {
				set = append(set, []byte{})
			}
		}

		if v.Policy == PolicyBudgetedRemainder && len(set) == count && count > 0 && len(set[count-1]) == 0 {
			if v.Layout == LayoutBuilderCalls {
				set[count-1] = []byte{0}
			} else {
				set = set[:count-1]
			}
		}
	case PolicyNative:
	}

	return set
}

// padCyclic repeats ex until it is exactly n bytes. An empty ex pads with
// zero bytes.
func padCyclic(ex []byte, n int) []byte {
	out := make([]byte, n)
	if len(ex) == 0 {
		return out
	}

	for i := range out {
		out[i] = ex[i%len(ex)]
	}

	return out
}
