// Package harness turns fuzzer-supplied bytes into bounded, well-formed
// inputs for the pattern engine and invokes it once per buffer.
//
// A [Driver] decodes a [TestCase] from a shared [entropy.Cursor] in the
// order its [Variant] prescribes, normalizes it, and hands the resulting
// [Invocation] to a [Target]. Results are discarded; only panics and hangs
// inside the target are findings.
package harness

import (
	"github.com/calvinalkan/rexfuzz/internal/entropy"
	"github.com/calvinalkan/rexfuzz/pkg/rexgen"
)

// TestCase is one decoded and normalized input. Exactly one of Config and
// Calls is meaningful, depending on the variant layout.
type TestCase struct {
	Variant  string        `json:"variant"`
	Examples ExampleSet    `json:"examples"`
	Config   *EngineConfig `json:"config,omitempty"`
	Calls    BuilderCalls  `json:"calls,omitempty"`

	// Consumed is the number of input bytes the decoders read.
	Consumed int `json:"consumed"`
}

// Invocation is what the target receives: text examples plus either a flat
// configuration or a call sequence.
type Invocation struct {
	Examples []string       `json:"examples"`
	Config   *rexgen.Config `json:"config,omitempty"`
	Calls    BuilderCalls   `json:"calls,omitempty"`
}

// Invocation converts the test case into target arguments. Examples are
// converted lossily.
func (tc TestCase) Invocation() Invocation {
	inv := Invocation{
		Examples: tc.Examples.Texts(),
		Calls:    tc.Calls,
	}

	if tc.Config != nil {
		cfg := tc.Config.Rexgen()
		inv.Config = &cfg
	}

	return inv
}

// Target is the engine under test.
type Target interface {
	Invoke(inv Invocation) (string, error)
}

// RexgenTarget invokes [rexgen.Builder].
type RexgenTarget struct{}

// Invoke builds a pattern from inv.
func (RexgenTarget) Invoke(inv Invocation) (string, error) {
	b := rexgen.NewBuilder(inv.Examples)

	if inv.Config != nil {
		b.Config = *inv.Config
	}

	inv.Calls.Apply(b)

	return b.Build()
}

// TargetFunc adapts a function to [Target].
type TargetFunc func(inv Invocation) (string, error)

// Invoke calls f(inv).
func (f TargetFunc) Invoke(inv Invocation) (string, error) {
	return f(inv)
}

// Driver decodes and runs test cases for one variant.
type Driver struct {
	variant Variant
	target  Target
}

// NewDriver returns a driver for v that invokes target.
func NewDriver(v Variant, target Target) *Driver {
	if target == nil {
		panic("harness: target is nil")
	}

	return &Driver{variant: v, target: target}
}

// Variant returns the driver's variant.
func (d *Driver) Variant() Variant {
	return d.variant
}

// Decode turns data into a normalized test case. It never fails; missing
// bytes decode as minimal values.
func (d *Driver) Decode(data []byte) TestCase {
	c := entropy.New(data)
	tc := TestCase{Variant: d.variant.Name}

	switch d.variant.Layout {
	case LayoutFlatRecord:
		cfg := NormalizeConfig(DecodeConfig(c, d.variant.Disabled))
		tc.Config = &cfg
		tc.Examples = GenerateExamples(c, d.variant.Policy, d.variant.Limits)
	case LayoutBuilderCalls:
		tc.Examples = GenerateExamples(c, d.variant.Policy, d.variant.Limits)
		tc.Calls = NormalizeBuilderCalls(DecodeBuilderCalls(c, d.variant.Disabled))
	}

	tc.Examples = NormalizeExamples(tc.Examples)
	tc.Consumed = c.Used()

	return tc
}

// Run decodes data and invokes the target once. The pattern and any engine
// error are discarded; panics propagate.
func (d *Driver) Run(data []byte) {
	_, _ = d.Invoke(data)
}

// Invoke decodes data and returns the target's result.
func (d *Driver) Invoke(data []byte) (string, error) {
	return d.target.Invoke(d.Decode(data).Invocation())
}
