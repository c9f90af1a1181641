package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calvinalkan/rexfuzz/internal/corpus"
	"github.com/calvinalkan/rexfuzz/internal/harness"

	flag "github.com/spf13/pflag"
)

// Output formats for decode.
const (
	formatText = "text"
	formatJSON = "json"
	formatCBOR = "cbor"
)

// DecodeCmd returns the decode command.
func DecodeCmd(variants []harness.Variant) *Command {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.StringP("variant", "V", "", "Variant to decode with (default: inferred from path)")
	fs.String("format", formatText, "Output format: text, json or cbor")
	fs.Bool("build", false, "Also run the engine and show its result")

	return &Command{
		Flags: fs,
		Usage: "decode [flags] <file>",
		Short: "Show the test case a corpus entry decodes to",
		Long: `Decode a corpus entry (or a raw crash input) into the test case the
harness would hand to the engine, without running it unless --build is set.

The variant is taken from -V, or from the fuzz target directory holding the
file (testdata/fuzz/<FuzzTarget>/...).`,
		Examples: []string{
			"decode internal/harness/testdata/fuzz/FuzzDriver_FlatRecord/5f1c0e2a9b3d7c41",
			"decode -V builder --build --format json crash-input",
		},
		MinArgs: 1,
		MaxArgs: 1,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execDecode(io, fs, variants, args)
		},
	}
}

type decodeOutput struct {
	TestCase    harness.TestCase `json:"test_case"`
	Texts       []string         `json:"texts"`
	Fingerprint string           `json:"fingerprint"`
	Pattern     *string          `json:"pattern,omitempty"`
	Error       *string          `json:"error,omitempty"`
}

func execDecode(io *IO, fs *flag.FlagSet, variants []harness.Variant, args []string) error {
	format, _ := fs.GetString("format")
	if format != formatText && format != formatJSON && format != formatCBOR {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	name, _ := fs.GetString("variant")
	build, _ := fs.GetBool("build")

	v, err := variantFor(variants, name, args[0])
	if err != nil {
		return err
	}

	data, err := corpus.Read(args[0])
	if err != nil {
		return err
	}

	driver := harness.NewDriver(v, harness.RexgenTarget{})
	tc := driver.Decode(data)
	inv := tc.Invocation()

	fingerprint, err := inv.Fingerprint()
	if err != nil {
		return err
	}

	out := decodeOutput{TestCase: tc, Texts: inv.Examples, Fingerprint: fingerprint}

	if build {
		pattern, buildErr := harness.RexgenTarget{}.Invoke(inv)
		if buildErr != nil {
			msg := buildErr.Error()
			out.Error = &msg
		} else {
			out.Pattern = &pattern
		}
	}

	switch format {
	case formatJSON:
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		io.Println(string(encoded))
	case formatCBOR:
		encoded, err := harness.MarshalCanonical(out)
		if err != nil {
			return err
		}

		_, err = io.Write(encoded)
		if err != nil {
			return err
		}
	default:
		printTestCase(io, out, len(data))
	}

	return nil
}

func printTestCase(io *IO, out decodeOutput, size int) {
	tc := out.TestCase

	io.Printf("variant: %s\n", tc.Variant)
	io.Printf("consumed: %d/%d\n", tc.Consumed, size)
	io.Printf("examples: %d\n", len(tc.Examples))

	for i, text := range out.Texts {
		io.Printf("  [%d] %q\n", i, text)
	}

	if tc.Config != nil {
		io.Printf("features: %s\n", tc.Config.Features)
		io.Printf("minimum_repetitions: %d\n", tc.Config.MinimumRepetitions)
		io.Printf("minimum_substring_length: %d\n", tc.Config.MinimumSubstringLength)
	} else {
		io.Printf("calls: %d\n", len(tc.Calls))

		for _, call := range tc.Calls {
			io.Printf("  .%s\n", call)
		}
	}

	io.Printf("fingerprint: %s\n", out.Fingerprint)

	if out.Pattern != nil {
		io.Printf("pattern: %q\n", *out.Pattern)
	}

	if out.Error != nil {
		io.Printf("error: %s\n", *out.Error)
	}
}
