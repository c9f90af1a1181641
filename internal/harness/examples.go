package harness

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/calvinalkan/rexfuzz/internal/entropy"
)

// ErrUnknownPolicy is returned by ParsePolicy for unrecognized names.
var ErrUnknownPolicy = errors.New("unknown policy")

// Policy selects how an example set is carved out of the entropy buffer.
//
// Policies are distinct fuzzing strategies, each reaching different corners
// of the engine's input space.
type Policy uint8

const (
	// PolicyFixed decodes exactly Count slots of Length raw bytes each.
	PolicyFixed Policy = iota

	// PolicyBudgeted decodes up to Count elements, each with a size in
	// [0, min(Length, remaining)].
	PolicyBudgeted

	// PolicyBudgetedRemainder is PolicyBudgeted, except the Count-th element
	// takes every remaining byte.
	PolicyBudgetedRemainder

	// PolicyNative decodes an unbounded sequence: a continuation flag, then
	// a size bounded only by the remaining bytes.
	PolicyNative
)

var policyNames = map[Policy]string{
	PolicyFixed:             "fixed",
	PolicyBudgeted:          "budgeted",
	PolicyBudgetedRemainder: "remainder",
	PolicyNative:            "native",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}

	return fmt.Sprintf("policy(%d)", uint8(p))
}

// Bounded reports whether the policy uses Limits.
func (p Policy) Bounded() bool {
	return p != PolicyNative
}

// MarshalText encodes the policy name.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePolicy returns the policy with the given name.
func ParsePolicy(name string) (Policy, error) {
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Limits bounds bounded policies. Non-positive values produce no elements
// (Count) or empty elements (Length).
type Limits struct {
	Count  int `json:"count"`
	Length int `json:"length"`
}

// ExampleSet is an ordered list of opaque example byte strings.
type ExampleSet [][]byte

// Texts converts each example to text. Every maximal invalid subpart of a
// UTF-8 sequence becomes one U+FFFD, so "\xff\xfe" yields two.
func (s ExampleSet) Texts() []string {
	out := make([]string, len(s))
	for i, b := range s {
		out[i] = lossyText(b)
	}

	return out
}

func lossyText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder

	sb.Grow(len(b) + 2)

	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError || size > 1 {
			sb.Write(b[:size])
			b = b[size:]

			continue
		}

		sb.WriteRune(utf8.RuneError)
		b = b[invalidSubpart(b):]
	}

	return sb.String()
}

// invalidSubpart returns the length of the longest prefix of b that starts a
// well-formed sequence but is not one. It is at least 1.
func invalidSubpart(b []byte) int {
	lead := b[0]

	var want int

	lo, hi := byte(0x80), byte(0xBF)

	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		want = 2
	case lead == 0xE0:
		want, lo = 3, 0xA0
	case lead == 0xED:
		want, hi = 3, 0x9F
	case lead >= 0xE1 && lead <= 0xEF:
		want = 3
	case lead == 0xF0:
		want, lo = 4, 0x90
	case lead == 0xF4:
		want, hi = 4, 0x8F
	case lead >= 0xF1 && lead <= 0xF3:
		want = 4
	default:
		return 1
	}

	n := 1
	for n < want && n < len(b) && b[n] >= lo && b[n] <= hi {
		n++
		lo, hi = 0x80, 0xBF
	}

	return n
}

// GenerateExamples decodes an example set from c using policy p.
// An exhausted cursor yields zero elements (PolicyFixed: Count empty ones).
func GenerateExamples(c *entropy.Cursor, p Policy, limits Limits) ExampleSet {
	count := max(limits.Count, 0)
	length := max(limits.Length, 0)

	switch p {
	case PolicyFixed:
		set := make(ExampleSet, 0, count)
		for range count {
			set = append(set, c.TakeBytes(length))
		}

		return set

	case PolicyBudgeted, PolicyBudgetedRemainder:
		set := make(ExampleSet, 0, count)

		for i := 0; i < count && !c.IsEmpty(); i++ {
			if p == PolicyBudgetedRemainder && i == count-1 {
				set = append(set, c.Rest())

				break
			}

			size, _ := c.TakeBoundedInt(uint64(min(length, c.Remaining())))
			set = append(set, c.TakeBytes(int(size)))
		}

		return set

	case PolicyNative:
		var set ExampleSet

		for !c.IsEmpty() {
			if !c.TakeBool() {
				break
			}

			size, _ := c.TakeBoundedInt(uint64(c.Remaining()))
			set = append(set, c.TakeBytes(int(size)))
		}

		return set
	}

	return nil
}
