package rexgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// ANSI SGR parameters used by Colorize.
const (
	colorFlag       = "1;36"
	colorAnchor     = "1;31"
	colorGroup      = "32"
	colorQuantifier = "35"
	colorClass      = "33"
	colorEscape     = "36"
)

const verboseIndent = "  "

var verboseEscapes = map[rune]string{
	' ':  `\ `,
	'#':  `\#`,
	'\t': `\t`,
	'\n': `\n`,
	'\v': `\v`,
	'\f': `\f`,
	'\r': `\r`,
}

type renderer struct {
	cfg *Config
	sb  strings.Builder
}

func (r *renderer) pattern(root *node) string {
	if r.cfg.CaseInsensitive {
		r.paint(colorFlag, "(?i)")
	}

	if r.cfg.Verbose {
		r.paint(colorFlag, "(?x)")
		r.sb.WriteString("\n")
	}

	if !r.cfg.DisableStartAnchor {
		r.paint(colorAnchor, "^")

		if r.cfg.Verbose {
			r.sb.WriteString("\n")
		}
	}

	r.node(root, 0)

	if !r.cfg.DisableEndAnchor {
		if r.cfg.Verbose {
			r.sb.WriteString("\n")
		}

		r.paint(colorAnchor, "$")
	}

	return r.sb.String()
}

// node writes the subtree below n. Linear chains are written iteratively so
// long examples do not recurse per character.
func (r *renderer) node(n *node, depth int) {
	for {
		if n.branches() {
			r.group(n, depth)

			return
		}

		if len(n.edges) == 0 {
			return
		}

		r.token(n.edges[0].tok)
		n = n.edges[0].next
	}
}

func (r *renderer) group(n *node, depth int) {
	r.paint(colorGroup, r.open())

	if r.cfg.Verbose {
		r.sb.WriteString("\n")
	}

	for i, e := range n.edges {
		if r.cfg.Verbose {
			if i > 0 {
				r.indent(depth + 1)
				r.paint(colorGroup, "|")
				r.sb.WriteString("\n")
			}

			r.indent(depth + 1)
		} else if i > 0 {
			r.paint(colorGroup, "|")
		}

		r.token(e.tok)
		r.node(e.next, depth+1)

		if r.cfg.Verbose {
			r.sb.WriteString("\n")
		}
	}

	if r.cfg.Verbose {
		r.indent(depth)
	}

	r.paint(colorGroup, ")")

	if n.terminal {
		r.paint(colorQuantifier, "?")
	}
}

func (r *renderer) token(t token) {
	switch t.kind {
	case kindLiteral:
		r.literal(t.char)
	case kindClass:
		r.paint(colorClass, t.class)
	case kindRepeat:
		if len(t.unit) == 1 && t.unit[0].kind != kindRepeat {
			r.token(t.unit[0])
		} else {
			r.paint(colorGroup, r.open())

			for _, u := range t.unit {
				r.token(u)
			}

			r.paint(colorGroup, ")")
		}

		r.paint(colorQuantifier, "{"+strconv.Itoa(t.count)+"}")
	}
}

func (r *renderer) literal(ch rune) {
	if r.cfg.EscapeNonASCII && ch > unicode.MaxASCII {
		if r.cfg.SurrogatePairs && ch > 0xFFFF {
			hi, lo := utf16.EncodeRune(ch)
			r.paint(colorEscape, fmt.Sprintf(`\x{%x}\x{%x}`, hi, lo))

			return
		}

		r.paint(colorEscape, fmt.Sprintf(`\x{%x}`, ch))

		return
	}

	if r.cfg.Verbose {
		if esc, ok := verboseEscapes[ch]; ok {
			r.paint(colorEscape, esc)

			return
		}

		if unicode.IsSpace(ch) {
			r.paint(colorEscape, fmt.Sprintf(`\x{%x}`, ch))

			return
		}
	}

	quoted := regexp.QuoteMeta(string(ch))
	if len(quoted) > 1 && quoted[0] == '\\' {
		r.paint(colorEscape, quoted)

		return
	}

	r.sb.WriteString(quoted)
}

func (r *renderer) open() string {
	if r.cfg.CapturingGroups {
		return "("
	}

	return "(?:"
}

func (r *renderer) indent(depth int) {
	for range depth {
		r.sb.WriteString(verboseIndent)
	}
}

func (r *renderer) paint(color, s string) {
	if !r.cfg.Colorize {
		r.sb.WriteString(s)

		return
	}

	r.sb.WriteString("\x1b[")
	r.sb.WriteString(color)
	r.sb.WriteString("m")
	r.sb.WriteString(s)
	r.sb.WriteString("\x1b[0m")
}
