package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/calvinalkan/rexfuzz/internal/harness"

	flag "github.com/spf13/pflag"
)

// VariantsCmd returns the variants command.
func VariantsCmd(variants []harness.Variant) *Command {
	return &Command{
		Flags: flag.NewFlagSet("variants", flag.ContinueOnError),
		Usage: "variants",
		Short: "List harness variants",
		Long: `List every harness variant after config overrides: its decode layout,
example policy, limits, disabled features and the Go fuzz target running it.`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execVariants(io, variants)
		},
	}
}

func execVariants(io *IO, variants []harness.Variant) error {
	var buf strings.Builder

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tLAYOUT\tPOLICY\tLIMITS\tDISABLED\tFUZZ TARGET")

	for _, v := range variants {
		limits := "-"
		if v.Policy.Bounded() {
			limits = fmt.Sprintf("%dx%d", v.Limits.Count, v.Limits.Length)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Name, v.Layout, v.Policy, limits, v.Disabled, v.FuzzTarget)
	}

	err := tw.Flush()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	io.Printf("%s", buf.String())

	return nil
}
