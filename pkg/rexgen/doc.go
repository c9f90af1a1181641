// Package rexgen synthesizes a regular expression from a list of example
// strings.
//
// The generated expression matches every example. Examples are tokenized
// (optionally converting characters to shorthand classes such as \d and
// folding repeated substrings into counted quantifiers), merged into a prefix
// trie and rendered as nested alternations:
//
//	b := rexgen.NewBuilder([]string{"abc", "abd", "a"})
//	pattern, err := b.Build() // ^a(?:b(?:c|d))?$
//
// Configuration is available two ways: the fluent With* methods, or by
// assigning Builder.Config directly. Build never panics for any Config; it
// reports contract violations (no examples, zero thresholds) as errors.
//
// Shorthand classes follow Go's regexp (RE2) ASCII semantics, so with
// escaping, verbose mode, colorization and repetition conversion disabled
// the output compiles with package regexp and matches every example.
package rexgen
