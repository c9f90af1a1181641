package harness_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/rexfuzz/internal/entropy"
	"github.com/calvinalkan/rexfuzz/internal/harness"
	"github.com/calvinalkan/rexfuzz/pkg/rexgen"
)

// callsRecordSize is 17 presence bytes, two 4-byte thresholds and one bool.
const callsRecordSize = 17 + 4 + 4 + 1

func Test_DecodeBuilderCalls_Returns_Every_Call_When_Input_All_Ones(t *testing.T) {
	t.Parallel()

	c := entropy.New(bytes.Repeat([]byte{0xff}, 64))
	calls := harness.DecodeBuilderCalls(c, 0)

	require.Len(t, calls, len(harness.Methods()))
	assert.Equal(t, callsRecordSize, c.Used())

	for i, m := range harness.Methods() {
		assert.Equal(t, m, calls[i].Method)
		assert.Equal(t, m.TakesArg(), calls[i].Arg != nil, "method %s", m)
	}

	minRep, ok := calls.Lookup(harness.MethodWithMinimumRepetitions)
	require.True(t, ok)
	assert.Equal(t, uint32(math.MaxUint32), *minRep.Arg)

	escaping, ok := calls.Lookup(harness.MethodWithEscapingOfNonASCIIChars)
	require.True(t, ok)
	assert.Equal(t, uint32(1), *escaping.Arg)
}

func Test_DecodeBuilderCalls_Returns_Nothing_When_Input_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, harness.DecodeBuilderCalls(entropy.New(nil), 0))
}

func Test_DecodeBuilderCalls_Drops_Calls_When_Feature_Disabled(t *testing.T) {
	t.Parallel()

	disabled := harness.NewFeatureSet(harness.FeatureVerbose, harness.FeatureNoStartAnchor, harness.FeatureSurrogatePairs)

	c := entropy.New(bytes.Repeat([]byte{0xff}, 64))
	calls := harness.DecodeBuilderCalls(c, disabled)

	assert.Equal(t, callsRecordSize, c.Used())
	assert.Len(t, calls, len(harness.Methods())-3)

	for _, m := range []harness.Method{
		harness.MethodWithVerboseMode, harness.MethodWithoutStartAnchor, harness.MethodWithoutAnchors,
	} {
		_, ok := calls.Lookup(m)
		assert.False(t, ok, "method %s should be dropped", m)
	}

	escaping, ok := calls.Lookup(harness.MethodWithEscapingOfNonASCIIChars)
	require.True(t, ok)
	assert.Equal(t, uint32(0), *escaping.Arg)
}

func Test_DecodeBuilderCalls_Skips_Argument_When_Call_Absent(t *testing.T) {
	t.Parallel()

	// 14 absent bool calls, WithMinimumRepetitions absent, then
	// WithMinimumSubstringLength(5).
	data := make([]byte, 15)
	data = append(data, 1, 0, 0, 0, 5)

	calls := harness.DecodeBuilderCalls(entropy.New(data), 0)

	assert.Equal(t, harness.BuilderCalls{harness.CallWith(harness.MethodWithMinimumSubstringLength, 5)}, calls)
}

func Test_EncodeBuilderCalls_Decodes_To_Same_Calls(t *testing.T) {
	t.Parallel()

	want := harness.BuilderCalls{
		harness.Call(harness.MethodWithConversionOfWords),
		harness.Call(harness.MethodWithoutAnchors),
		harness.CallWith(harness.MethodWithMinimumRepetitions, 300),
		harness.CallWith(harness.MethodWithEscapingOfNonASCIIChars, 1),
	}

	enc := entropy.NewEncoder()
	harness.EncodeBuilderCalls(enc, want)

	assert.Equal(t, want, harness.DecodeBuilderCalls(entropy.New(enc.Bytes()), 0))
}

func Test_BuilderCalls_Apply_Matches_Fluent_Calls(t *testing.T) {
	t.Parallel()

	examples := []string{"a1", "b22", "\U0001F600"}

	calls := harness.BuilderCalls{
		harness.Call(harness.MethodWithConversionOfDigits),
		harness.Call(harness.MethodWithConversionOfRepetitions),
		harness.CallWith(harness.MethodWithMinimumRepetitions, 1),
		harness.CallWith(harness.MethodWithEscapingOfNonASCIIChars, 1),
		harness.Call(harness.MethodWithoutEndAnchor),
	}

	b := rexgen.NewBuilder(examples)
	calls.Apply(b)

	got, err := b.Build()
	require.NoError(t, err)

	want, err := rexgen.NewBuilder(examples).
		WithConversionOfDigits().
		WithConversionOfRepetitions().
		WithMinimumRepetitions(1).
		WithEscapingOfNonASCIIChars(true).
		WithoutEndAnchor().
		Build()
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func Test_BuilderCall_String_Renders_Argument(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "WithoutAnchors()", harness.Call(harness.MethodWithoutAnchors).String())
	assert.Equal(t, "WithMinimumRepetitions(3)", harness.CallWith(harness.MethodWithMinimumRepetitions, 3).String())
	assert.Equal(t, "WithEscapingOfNonASCIIChars(true)", harness.CallWith(harness.MethodWithEscapingOfNonASCIIChars, 1).String())
}
