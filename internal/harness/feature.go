package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFeature is returned by ParseFeature for unrecognized names.
var ErrUnknownFeature = errors.New("unknown feature")

// Feature is one boolean toggle of the engine configuration.
type Feature uint8

// Features in flat-record decode order.
const (
	FeatureDigits Feature = iota
	FeatureNonDigits
	FeatureSpaces
	FeatureNonSpaces
	FeatureWords
	FeatureNonWords
	FeatureRepetitions
	FeatureCaseInsensitive
	FeatureCapturingGroups
	FeatureEscapeNonASCII
	FeatureSurrogatePairs
	FeatureNoStartAnchor
	FeatureNoEndAnchor
	FeatureVerbose
	FeatureColorize

	featureCount
)

var featureNames = [featureCount]string{
	FeatureDigits:          "digits",
	FeatureNonDigits:       "non-digits",
	FeatureSpaces:          "whitespace",
	FeatureNonSpaces:       "non-whitespace",
	FeatureWords:           "words",
	FeatureNonWords:        "non-words",
	FeatureRepetitions:     "repetitions",
	FeatureCaseInsensitive: "case-insensitive",
	FeatureCapturingGroups: "capturing-groups",
	FeatureEscapeNonASCII:  "escape-non-ascii",
	FeatureSurrogatePairs:  "surrogate-pairs",
	FeatureNoStartAnchor:   "no-start-anchor",
	FeatureNoEndAnchor:     "no-end-anchor",
	FeatureVerbose:         "verbose",
	FeatureColorize:        "colorize",
}

// Features returns every feature in decode order.
func Features() []Feature {
	out := make([]Feature, 0, featureCount)
	for f := range featureCount {
		out = append(out, f)
	}

	return out
}

func (f Feature) String() string {
	if f < featureCount {
		return featureNames[f]
	}

	return fmt.Sprintf("feature(%d)", uint8(f))
}

// ParseFeature returns the feature with the given name.
func ParseFeature(name string) (Feature, error) {
	for f, n := range featureNames {
		if n == name {
			return Feature(f), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
}

// FeatureSet is a set of features.
type FeatureSet uint16

// AllFeatures contains every feature.
const AllFeatures = FeatureSet(1<<featureCount - 1)

// NewFeatureSet returns a set containing fs.
func NewFeatureSet(fs ...Feature) FeatureSet {
	var s FeatureSet
	for _, f := range fs {
		s = s.With(f)
	}

	return s
}

// Has reports whether f is in the set.
func (s FeatureSet) Has(f Feature) bool {
	return s&(1<<f) != 0
}

// With returns the set plus f.
func (s FeatureSet) With(f Feature) FeatureSet {
	return s | 1<<f
}

// Without returns the set minus every feature in other.
func (s FeatureSet) Without(other FeatureSet) FeatureSet {
	return s &^ other
}

// Intersects reports whether the sets share a feature.
func (s FeatureSet) Intersects(other FeatureSet) bool {
	return s&other != 0
}

// List returns the features in decode order.
func (s FeatureSet) List() []Feature {
	var out []Feature

	for _, f := range Features() {
		if s.Has(f) {
			out = append(out, f)
		}
	}

	return out
}

func (s FeatureSet) String() string {
	names := make([]string, 0, featureCount)
	for _, f := range s.List() {
		names = append(names, f.String())
	}

	return "[" + strings.Join(names, " ") + "]"
}

// MarshalJSON encodes the set as a list of feature names.
func (s FeatureSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, featureCount)
	for _, f := range s.List() {
		names = append(names, f.String())
	}

	return json.Marshal(names)
}

// ParseFeatureSet parses a list of feature names.
func ParseFeatureSet(names []string) (FeatureSet, error) {
	var s FeatureSet

	for _, name := range names {
		f, err := ParseFeature(name)
		if err != nil {
			return 0, err
		}

		s = s.With(f)
	}

	return s, nil
}
