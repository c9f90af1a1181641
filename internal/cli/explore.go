package cli

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/rexfuzz/internal/harness"

	flag "github.com/spf13/pflag"
)

const explorePrompt = "rexfuzz> "

// maxInputLine bounds one piped explore line.
const maxInputLine = 16 << 20

// ExploreCmd returns the explore command.
func ExploreCmd(stdin io.Reader, variants []harness.Variant) *Command {
	fs := flag.NewFlagSet("explore", flag.ContinueOnError)
	fs.StringP("variant", "V", harness.VariantBuilder, "Variant to decode with")

	return &Command{
		Flags: fs,
		Usage: "explore [flags]",
		Short: "Interactively decode and run inputs",
		Long: `Start an interactive loop that decodes each entered line as fuzz input,
prints the resulting test case and runs the engine on it.

A line is taken as raw bytes, unless it is a double-quoted Go string
("a\x00b") or starts with hex: (hex:00ff). Lines starting with ':' are
commands; type :help to list them.`,
		Examples: []string{"explore -V flat-fixed"},
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			name, _ := fs.GetString("variant")

			v, err := lookupVariant(variants, name)
			if err != nil {
				return err
			}

			e := &explorer{io: io, variants: variants, driver: harness.NewDriver(v, harness.RexgenTarget{})}

			return e.run(ctx, stdin)
		},
	}
}

// lineReader reads prompted input lines.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// scannerReader reads lines without terminal editing.
type scannerReader struct {
	scanner *bufio.Scanner
}

func (r *scannerReader) Prompt(string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}

		return "", io.EOF
	}

	return r.scanner.Text(), nil
}

func (r *scannerReader) AppendHistory(string) {}

type explorer struct {
	io       *IO
	variants []harness.Variant
	driver   *harness.Driver
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".rexfuzz_history")
}

func (e *explorer) run(ctx context.Context, stdin io.Reader) error {
	var reader lineReader

	if f, ok := stdin.(*os.File); ok && f == os.Stdin {
		state := liner.NewLiner()
		defer state.Close()

		state.SetCtrlCAborts(true)
		state.SetCompleter(e.completer)

		if f, err := os.Open(historyFile()); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}

		defer saveHistory(state)

		reader = state
	} else {
		scanner := bufio.NewScanner(stdin)
		scanner.Buffer(make([]byte, 0, 64<<10), maxInputLine)

		reader = &scannerReader{scanner: scanner}
	}

	e.io.Printf("variant %s, type :help for commands\n", e.driver.Variant().Name)

	for ctx.Err() == nil {
		line, err := reader.Prompt(explorePrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		reader.AppendHistory(line)

		if cmd, ok := strings.CutPrefix(strings.TrimSpace(line), ":"); ok {
			if e.command(cmd) {
				return nil
			}

			continue
		}

		data, err := parseInputLine(line)
		if err != nil {
			e.io.Println("error:", err)

			continue
		}

		e.show(data)
	}

	return nil
}

func saveHistory(state *liner.State) {
	path := historyFile()
	if path == "" {
		return
	}

	f, err := os.Create(path)
	if err != nil {
		return
	}

	_, _ = state.WriteHistory(f)
	_ = f.Close()
}

// command runs a ':' command and reports whether the loop should end.
func (e *explorer) command(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		e.printHelp()

		return false
	}

	switch parts[0] {
	case "q", "quit", "exit":
		return true
	case "help", "?":
		e.printHelp()
	case "variants":
		for _, v := range e.variants {
			marker := " "
			if v.Name == e.driver.Variant().Name {
				marker = "*"
			}

			e.io.Printf("%s %s\n", marker, v.Name)
		}
	case "variant":
		if len(parts) != 2 {
			e.io.Println("usage: :variant <name>")

			return false
		}

		v, err := lookupVariant(e.variants, parts[1])
		if err != nil {
			e.io.Println("error:", err)

			return false
		}

		e.driver = harness.NewDriver(v, harness.RexgenTarget{})
		e.io.Println("variant", v.Name)
	default:
		e.io.Printf("unknown command :%s (type :help for commands)\n", parts[0])
	}

	return false
}

func (e *explorer) show(data []byte) {
	tc := e.driver.Decode(data)
	inv := tc.Invocation()

	out := decodeOutput{TestCase: tc, Texts: inv.Examples}

	fingerprint, err := inv.Fingerprint()
	if err == nil {
		out.Fingerprint = fingerprint
	}

	pattern, buildErr := harness.RexgenTarget{}.Invoke(inv)
	if buildErr != nil {
		msg := buildErr.Error()
		out.Error = &msg
	} else {
		out.Pattern = &pattern
	}

	printTestCase(e.io, out, len(data))
}

func (e *explorer) printHelp() {
	e.io.Println(`Input lines:
  <text>             raw bytes of the line
  "<go string>"      Go-quoted bytes, e.g. "\x01\x00ab"
  hex:<digits>       hex-encoded bytes, e.g. hex:0100ff

Commands:
  :variant <name>    switch variant
  :variants          list variants
  :help              show this help
  :quit              leave`)
}

func (e *explorer) completer(line string) []string {
	var out []string

	candidates := []string{":variant ", ":variants", ":help", ":quit"}
	for _, v := range e.variants {
		candidates = append(candidates, ":variant "+v.Name)
	}

	for _, c := range candidates {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}

	return out
}

// parseInputLine decodes one explore input line into bytes.
func parseInputLine(line string) ([]byte, error) {
	trimmed := strings.TrimSpace(line)

	if digits, ok := strings.CutPrefix(trimmed, "hex:"); ok {
		data, err := hex.DecodeString(strings.ReplaceAll(digits, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInputLine, err)
		}

		return data, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		s, err := strconv.Unquote(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInputLine, err)
		}

		return []byte(s), nil
	}

	return []byte(line), nil
}
