// Package cli implements the rexfuzz command-line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/calvinalkan/rexfuzz/internal/campaign"
	"github.com/calvinalkan/rexfuzz/internal/harness"
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
func Run(ctx context.Context, stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	flags, err := parseGlobalFlags(args[min(1, len(args)):])
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, allCommands(campaign.DefaultConfig(), nil, stdin))

		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == helpFlag || flags.remaining[0] == "-h" {
		printUsage(out, allCommands(campaign.DefaultConfig(), nil, stdin))

		return 0
	}

	cfg, err := campaign.LoadConfig(campaign.LoadConfigInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	variants, err := campaign.Resolve(cfg)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	commands := allCommands(cfg, variants, stdin)
	name := flags.remaining[0]

	var cmd *Command

	for _, c := range commands {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
		printUsage(errOut, commands)

		return 1
	}

	o := NewIO(out, errOut)

	if code := cmd.Run(ctx, o, flags.remaining[1:]); code != 0 {
		return code
	}

	return o.Finish()
}

func allCommands(cfg campaign.Config, variants []harness.Variant, stdin io.Reader) []*Command {
	return []*Command{
		VariantsCmd(variants),
		DecodeCmd(variants),
		ReplayCmd(cfg, variants),
		SeedCmd(cfg, variants),
		ExploreCmd(stdin, variants),
		PrintConfigCmd(cfg),
	}
}

type globalFlags struct {
	workDir    string
	configPath string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if arg == "-C" || arg == "--cwd" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, `rexfuzz - fuzz harness for the rexgen pattern synthesiser

Usage: rexfuzz [options] <command> [args]

Options:
  -C, --cwd <dir>    Run as if started in <dir>
  -c, --config       Use specified config file

Commands:`)

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}

// lookupVariant returns the variant called name from variants.
func lookupVariant(variants []harness.Variant, name string) (harness.Variant, error) {
	v, ok := harness.LookupVariant(variants, name)
	if !ok {
		return harness.Variant{}, fmt.Errorf("%w: %q", campaign.ErrUnknownVariant, name)
	}

	return v, nil
}
