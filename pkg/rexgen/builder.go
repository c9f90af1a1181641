package rexgen

import (
	"fmt"
	"strings"
)

// Builder collects examples and configuration for one expression.
type Builder struct {
	// Config is applied by Build. The With* methods modify it; it can also
	// be replaced wholesale.
	Config Config

	examples []string
}

// NewBuilder creates a builder over a copy of examples with DefaultConfig.
func NewBuilder(examples []string) *Builder {
	return &Builder{
		Config:   DefaultConfig(),
		examples: append([]string(nil), examples...),
	}
}

// WithConversionOfDigits converts 0-9 to \d.
func (b *Builder) WithConversionOfDigits() *Builder {
	b.Config.ConvertDigits = true

	return b
}

// WithConversionOfNonDigits converts characters other than 0-9 to \D.
func (b *Builder) WithConversionOfNonDigits() *Builder {
	b.Config.ConvertNonDigits = true

	return b
}

// WithConversionOfWhitespace converts whitespace to \s.
func (b *Builder) WithConversionOfWhitespace() *Builder {
	b.Config.ConvertSpaces = true

	return b
}

// WithConversionOfNonWhitespace converts non-whitespace to \S.
func (b *Builder) WithConversionOfNonWhitespace() *Builder {
	b.Config.ConvertNonSpaces = true

	return b
}

// WithConversionOfWords converts word characters to \w.
func (b *Builder) WithConversionOfWords() *Builder {
	b.Config.ConvertWords = true

	return b
}

// WithConversionOfNonWords converts non-word characters to \W.
func (b *Builder) WithConversionOfNonWords() *Builder {
	b.Config.ConvertNonWords = true

	return b
}

// WithConversionOfRepetitions folds repeated substrings into quantifiers.
func (b *Builder) WithConversionOfRepetitions() *Builder {
	b.Config.ConvertRepetitions = true

	return b
}

// WithCaseInsensitiveMatching prefixes the expression with (?i).
func (b *Builder) WithCaseInsensitiveMatching() *Builder {
	b.Config.CaseInsensitive = true

	return b
}

// WithCapturingGroups uses (...) instead of (?:...).
func (b *Builder) WithCapturingGroups() *Builder {
	b.Config.CapturingGroups = true

	return b
}

// WithVerboseMode renders a multi-line (?x) expression.
func (b *Builder) WithVerboseMode() *Builder {
	b.Config.Verbose = true

	return b
}

// WithoutStartAnchor omits the leading ^.
func (b *Builder) WithoutStartAnchor() *Builder {
	b.Config.DisableStartAnchor = true

	return b
}

// WithoutEndAnchor omits the trailing $.
func (b *Builder) WithoutEndAnchor() *Builder {
	b.Config.DisableEndAnchor = true

	return b
}

// WithoutAnchors omits both anchors.
func (b *Builder) WithoutAnchors() *Builder {
	b.Config.DisableStartAnchor = true
	b.Config.DisableEndAnchor = true

	return b
}

// WithSyntaxHighlighting colorizes the output with ANSI escape sequences.
func (b *Builder) WithSyntaxHighlighting() *Builder {
	b.Config.Colorize = true

	return b
}

// WithMinimumRepetitions sets Config.MinimumRepetitions.
// Zero is accepted here and rejected by Build.
func (b *Builder) WithMinimumRepetitions(n uint32) *Builder {
	b.Config.MinimumRepetitions = n

	return b
}

// WithMinimumSubstringLength sets Config.MinimumSubstringLength.
// Zero is accepted here and rejected by Build.
func (b *Builder) WithMinimumSubstringLength(n uint32) *Builder {
	b.Config.MinimumSubstringLength = n

	return b
}

// WithEscapingOfNonASCIIChars escapes characters above U+007F, optionally as
// UTF-16 surrogate pairs for astral characters.
func (b *Builder) WithEscapingOfNonASCIIChars(useSurrogatePairs bool) *Builder {
	b.Config.EscapeNonASCII = true
	b.Config.SurrogatePairs = useSurrogatePairs

	return b
}

// Build returns an expression matching every example.
func (b *Builder) Build() (string, error) {
	if len(b.examples) == 0 {
		return "", ErrNoExamples
	}

	cfg := b.Config

	err := cfg.validate()
	if err != nil {
		return "", fmt.Errorf("invalid config: %w", err)
	}

	root := newNode()

	for _, example := range dedupe(b.examples, cfg.CaseInsensitive) {
		tokens := tokenize(example, &cfg)
		if cfg.ConvertRepetitions {
			tokens = foldRepetitions(tokens, cfg.MinimumRepetitions, cfg.MinimumSubstringLength)
		}

		root.insert(tokens)
	}

	r := renderer{cfg: &cfg}

	return r.pattern(root), nil
}

// dedupe drops repeated examples, keeping the first occurrence. With
// caseInsensitive, examples that fold to the same key are duplicates.
func dedupe(examples []string, caseInsensitive bool) []string {
	seen := make(map[string]struct{}, len(examples))
	out := make([]string, 0, len(examples))

	for _, example := range examples {
		key := example
		if caseInsensitive {
			key = strings.Map(foldRune, example)
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, example)
	}

	return out
}
