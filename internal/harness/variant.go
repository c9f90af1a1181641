package harness

import "fmt"

// Layout is the order and shape in which a variant decodes a test case.
type Layout uint8

const (
	// LayoutBuilderCalls decodes the example set first, then a fluent call
	// sequence.
	LayoutBuilderCalls Layout = iota

	// LayoutFlatRecord decodes a flat EngineConfig first, then the example set.
	LayoutFlatRecord
)

func (l Layout) String() string {
	switch l {
	case LayoutBuilderCalls:
		return "builder-calls"
	case LayoutFlatRecord:
		return "flat-record"
	}

	return fmt.Sprintf("layout(%d)", uint8(l))
}

// MarshalText encodes the layout name.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Variant is one fuzzing strategy: how bytes become a test case, and which
// Go fuzz target runs it.
type Variant struct {
	Name       string     `json:"name"`
	Layout     Layout     `json:"layout"`
	Policy     Policy     `json:"policy"`
	Limits     Limits     `json:"limits"`
	Disabled   FeatureSet `json:"disabled"`
	FuzzTarget string     `json:"fuzz_target"`
}

// Names of the built-in variants.
const (
	VariantBuilder       = "builder"
	VariantFlat          = "flat"
	VariantFlatFixed     = "flat-fixed"
	VariantFlatRemainder = "flat-remainder"
)

// ExpensiveFeatures are disabled by default in flat-record variants so the
// fuzzer spends its time on the cheap paths.
var ExpensiveFeatures = NewFeatureSet(FeatureRepetitions, FeatureCaseInsensitive, FeatureVerbose)

var flatLimits = Limits{Count: 4, Length: 8}

// Variants returns the built-in variants. The slice is fresh on every call.
func Variants() []Variant {
	return []Variant{
		{
			Name:       VariantBuilder,
			Layout:     LayoutBuilderCalls,
			Policy:     PolicyNative,
			FuzzTarget: "FuzzDriver_BuilderCalls",
		},
		{
			Name:       VariantFlat,
			Layout:     LayoutFlatRecord,
			Policy:     PolicyBudgeted,
			Limits:     flatLimits,
			Disabled:   ExpensiveFeatures,
			FuzzTarget: "FuzzDriver_FlatRecord",
		},
		{
			Name:       VariantFlatFixed,
			Layout:     LayoutFlatRecord,
			Policy:     PolicyFixed,
			Limits:     flatLimits,
			Disabled:   ExpensiveFeatures,
			FuzzTarget: "FuzzDriver_FlatRecord_Fixed",
		},
		{
			Name:       VariantFlatRemainder,
			Layout:     LayoutFlatRecord,
			Policy:     PolicyBudgetedRemainder,
			Limits:     flatLimits,
			Disabled:   ExpensiveFeatures,
			FuzzTarget: "FuzzDriver_FlatRecord_Remainder",
		},
	}
}

// LookupVariant returns the variant called name.
func LookupVariant(variants []Variant, name string) (Variant, bool) {
	for _, v := range variants {
		if v.Name == name {
			return v, true
		}
	}

	return Variant{}, false
}

// MustVariant returns the built-in variant called name. It panics if there
// is none.
func MustVariant(name string) Variant {
	v, ok := LookupVariant(Variants(), name)
	if !ok {
		panic(fmt.Sprintf("harness: unknown variant %q", name))
	}

	return v
}
