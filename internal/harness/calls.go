package harness

import (
	"fmt"

	"github.com/calvinalkan/rexfuzz/internal/entropy"
	"github.com/calvinalkan/rexfuzz/pkg/rexgen"
)

// Method names one fluent builder call.
type Method uint8

// Methods in builder-call decode order. The boolean enable-calls come first,
// then the three calls that take an argument.
const (
	MethodWithConversionOfDigits Method = iota
	MethodWithConversionOfNonDigits
	MethodWithConversionOfWhitespace
	MethodWithConversionOfNonWhitespace
	MethodWithConversionOfWords
	MethodWithConversionOfNonWords
	MethodWithConversionOfRepetitions
	MethodWithCaseInsensitiveMatching
	MethodWithCapturingGroups
	MethodWithVerboseMode
	MethodWithoutStartAnchor
	MethodWithoutEndAnchor
	MethodWithoutAnchors
	MethodWithSyntaxHighlighting

	MethodWithMinimumRepetitions
	MethodWithMinimumSubstringLength
	MethodWithEscapingOfNonASCIIChars

	methodCount
)

type methodInfo struct {
	name     string
	features FeatureSet // a call is dropped when any of these is disabled
	arg      argKind
}

type argKind uint8

const (
	argNone argKind = iota
	argUint32
	argBool
)

var methodTable = [methodCount]methodInfo{
	MethodWithConversionOfDigits:        {"WithConversionOfDigits", NewFeatureSet(FeatureDigits), argNone},
	MethodWithConversionOfNonDigits:     {"WithConversionOfNonDigits", NewFeatureSet(FeatureNonDigits), argNone},
	MethodWithConversionOfWhitespace:    {"WithConversionOfWhitespace", NewFeatureSet(FeatureSpaces), argNone},
	MethodWithConversionOfNonWhitespace: {"WithConversionOfNonWhitespace", NewFeatureSet(FeatureNonSpaces), argNone},
	MethodWithConversionOfWords:         {"WithConversionOfWords", NewFeatureSet(FeatureWords), argNone},
	MethodWithConversionOfNonWords:      {"WithConversionOfNonWords", NewFeatureSet(FeatureNonWords), argNone},
	MethodWithConversionOfRepetitions:   {"WithConversionOfRepetitions", NewFeatureSet(FeatureRepetitions), argNone},
	MethodWithCaseInsensitiveMatching:   {"WithCaseInsensitiveMatching", NewFeatureSet(FeatureCaseInsensitive), argNone},
	MethodWithCapturingGroups:           {"WithCapturingGroups", NewFeatureSet(FeatureCapturingGroups), argNone},
	MethodWithVerboseMode:               {"WithVerboseMode", NewFeatureSet(FeatureVerbose), argNone},
	MethodWithoutStartAnchor:            {"WithoutStartAnchor", NewFeatureSet(FeatureNoStartAnchor), argNone},
	MethodWithoutEndAnchor:              {"WithoutEndAnchor", NewFeatureSet(FeatureNoEndAnchor), argNone},
	MethodWithoutAnchors:                {"WithoutAnchors", NewFeatureSet(FeatureNoStartAnchor, FeatureNoEndAnchor), argNone},
	MethodWithSyntaxHighlighting:        {"WithSyntaxHighlighting", NewFeatureSet(FeatureColorize), argNone},
	MethodWithMinimumRepetitions:        {"WithMinimumRepetitions", 0, argUint32},
	MethodWithMinimumSubstringLength:    {"WithMinimumSubstringLength", 0, argUint32},
	MethodWithEscapingOfNonASCIIChars:   {"WithEscapingOfNonASCIIChars", NewFeatureSet(FeatureEscapeNonASCII), argBool},
}

// Methods returns every method in decode order.
func Methods() []Method {
	out := make([]Method, 0, methodCount)
	for m := range methodCount {
		out = append(out, m)
	}

	return out
}

func (m Method) String() string {
	if m < methodCount {
		return methodTable[m].name
	}

	return fmt.Sprintf("method(%d)", uint8(m))
}

// MarshalText encodes the method name.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// TakesArg reports whether the method is called with an argument.
func (m Method) TakesArg() bool {
	return m < methodCount && methodTable[m].arg != argNone
}

// BuilderCall is one fluent call. Arg is set only for methods that take an
// argument; for WithEscapingOfNonASCIIChars it is 0 or 1.
type BuilderCall struct {
	Method Method  `json:"method"`
	Arg    *uint32 `json:"arg,omitempty"`
}

// Call returns a call without argument.
func Call(m Method) BuilderCall {
	return BuilderCall{Method: m}
}

// CallWith returns a call with argument v.
func CallWith(m Method, v uint32) BuilderCall {
	return BuilderCall{Method: m, Arg: &v}
}

func (c BuilderCall) String() string {
	if c.Arg == nil {
		return c.Method.String() + "()"
	}

	if methodTable[c.Method].arg == argBool {
		return fmt.Sprintf("%s(%t)", c.Method, *c.Arg != 0)
	}

	return fmt.Sprintf("%s(%d)", c.Method, *c.Arg)
}

// BuilderCalls is an ordered fluent call sequence. An absent call leaves the
// engine default alone, which is distinct from calling with false or zero.
type BuilderCalls []BuilderCall

// Lookup returns the call for m, if present.
func (cs BuilderCalls) Lookup(m Method) (BuilderCall, bool) {
	for _, c := range cs {
		if c.Method == m {
			return c, true
		}
	}

	return BuilderCall{}, false
}

// DecodeBuilderCalls decodes one presence bool per method in [Methods] order,
// followed by the argument for present calls that take one. Calls touching a
// disabled feature consume their bytes but are dropped. A disabled
// surrogate-pair feature forces the escaping argument to false.
func DecodeBuilderCalls(c *entropy.Cursor, disabled FeatureSet) BuilderCalls {
	var calls BuilderCalls

	for _, m := range Methods() {
		info := methodTable[m]

		if !c.TakeBool() {
			continue
		}

		call := BuilderCall{Method: m}

		switch info.arg {
		case argUint32:
			v := c.TakeUint32()
			call.Arg = &v
		case argBool:
			var v uint32
			if c.TakeBool() && !disabled.Has(FeatureSurrogatePairs) {
				v = 1
			}

			call.Arg = &v
		case argNone:
		}

		if info.features.Intersects(disabled) {
			continue
		}

		calls = append(calls, call)
	}

	return calls
}

// EncodeBuilderCalls appends calls to enc in the order DecodeBuilderCalls
// reads them. Calls are encoded by method; their order in calls is ignored
// and a repeated method keeps its last argument.
func EncodeBuilderCalls(enc *entropy.Encoder, calls BuilderCalls) {
	present := make(map[Method]BuilderCall, len(calls))
	for _, c := range calls {
		present[c.Method] = c
	}

	for _, m := range Methods() {
		call, ok := present[m]
		enc.AppendBool(ok)

		if !ok {
			continue
		}

		var arg uint32
		if call.Arg != nil {
			arg = *call.Arg
		}

		switch methodTable[m].arg {
		case argUint32:
			enc.AppendUint32(arg)
		case argBool:
			enc.AppendBool(arg != 0)
		case argNone:
		}
	}
}

// Apply replays the calls onto b in order.
func (cs BuilderCalls) Apply(b *rexgen.Builder) {
	for _, c := range cs {
		c.apply(b)
	}
}

func (c BuilderCall) apply(b *rexgen.Builder) {
	var arg uint32
	if c.Arg != nil {
		arg = *c.Arg
	}

	switch c.Method {
	case MethodWithConversionOfDigits:
		b.WithConversionOfDigits()
	case MethodWithConversionOfNonDigits:
		b.WithConversionOfNonDigits()
	case MethodWithConversionOfWhitespace:
		b.WithConversionOfWhitespace()
	case MethodWithConversionOfNonWhitespace:
		b.WithConversionOfNonWhitespace()
	case MethodWithConversionOfWords:
		b.WithConversionOfWords()
	case MethodWithConversionOfNonWords:
		b.WithConversionOfNonWords()
	case MethodWithConversionOfRepetitions:
		b.WithConversionOfRepetitions()
	case MethodWithCaseInsensitiveMatching:
		b.WithCaseInsensitiveMatching()
	case MethodWithCapturingGroups:
		b.WithCapturingGroups()
	case MethodWithVerboseMode:
		b.WithVerboseMode()
	case MethodWithoutStartAnchor:
		b.WithoutStartAnchor()
	case MethodWithoutEndAnchor:
		b.WithoutEndAnchor()
	case MethodWithoutAnchors:
		b.WithoutAnchors()
	case MethodWithSyntaxHighlighting:
		b.WithSyntaxHighlighting()
	case MethodWithMinimumRepetitions:
		b.WithMinimumRepetitions(arg)
	case MethodWithMinimumSubstringLength:
		b.WithMinimumSubstringLength(arg)
	case MethodWithEscapingOfNonASCIIChars:
		b.WithEscapingOfNonASCIIChars(arg != 0)
	case methodCount:
	}
}
