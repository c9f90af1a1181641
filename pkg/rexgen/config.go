package rexgen

import "errors"

var (
	// ErrNoExamples is returned when Build is called without examples.
	ErrNoExamples = errors.New("no examples given")

	// ErrInvalidMinimumRepetitions is returned when MinimumRepetitions is 0.
	ErrInvalidMinimumRepetitions = errors.New("minimum repetitions must be greater than zero")

	// ErrInvalidMinimumSubstringLength is returned when MinimumSubstringLength is 0.
	ErrInvalidMinimumSubstringLength = errors.New("minimum substring length must be greater than zero")
)

// Config controls how examples are turned into an expression.
type Config struct {
	// MinimumRepetitions is the number of repetitions a substring needs
	// beyond its first occurrence to be folded into a quantifier.
	// Only used when ConvertRepetitions is set. Must be > 0.
	MinimumRepetitions uint32

	// MinimumSubstringLength is the minimum unit length (in characters) of a
	// repeated substring. Only used when ConvertRepetitions is set. Must be > 0.
	MinimumSubstringLength uint32

	ConvertDigits      bool // 0-9 to \d
	ConvertNonDigits   bool // anything but 0-9 to \D
	ConvertSpaces      bool // \t \n \f \r and space to \s
	ConvertNonSpaces   bool // anything else to \S
	ConvertWords       bool // [0-9A-Za-z_] to \w
	ConvertNonWords    bool // anything else to \W
	ConvertRepetitions bool

	CaseInsensitive bool
	CapturingGroups bool

	// EscapeNonASCII renders characters above U+007F as \x{...}.
	EscapeNonASCII bool

	// SurrogatePairs renders astral characters as two escaped UTF-16
	// surrogate halves. Only used with EscapeNonASCII.
	SurrogatePairs bool

	DisableStartAnchor bool
	DisableEndAnchor   bool

	Verbose  bool
	Colorize bool
}

// DefaultConfig returns the configuration used by NewBuilder.
func DefaultConfig() Config {
	return Config{
		MinimumRepetitions:     1,
		MinimumSubstringLength: 1,
	}
}

func (c *Config) validate() error {
	if c.MinimumRepetitions == 0 {
		return ErrInvalidMinimumRepetitions
	}

	if c.MinimumSubstringLength == 0 {
		return ErrInvalidMinimumSubstringLength
	}

	return nil
}
