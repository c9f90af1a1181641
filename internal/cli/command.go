package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one rexfuzz subcommand.
type Command struct {
	// Flags holds the subcommand's flags. Its name is unused.
	Flags *flag.FlagSet

	// Usage follows "rexfuzz" in help output. Its first word is the
	// command name, e.g. "decode [flags] <file>".
	Usage string

	// Short is the one-line summary in the command listing.
	Short string

	// Long is the help text; Short is used when it is empty.
	Long string

	// Examples are invocations shown under "Examples:" in help.
	Examples []string

	// MinArgs and MaxArgs bound the positional arguments. A negative
	// MaxArgs means unbounded.
	MinArgs int
	MaxArgs int

	// Exec runs after flags and argument counts are checked.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine returns the command's entry in the global listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// PrintHelp writes "rexfuzz <cmd> --help" output.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: rexfuzz", c.Usage)
	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if c.Flags != nil && c.Flags.HasFlags() {
		var buf strings.Builder

		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()

		o.Println()
		o.Println("Flags:")
		o.Printf("%s", buf.String())
	}

	if len(c.Examples) > 0 {
		o.Println()
		o.Println("Examples:")

		for _, ex := range c.Examples {
			o.Println("  rexfuzz " + ex)
		}
	}
}

// checkArgs enforces MinArgs and MaxArgs.
func (c *Command) checkArgs(args []string) error {
	if len(args) < c.MinArgs {
		return fmt.Errorf("%w: want at least %d, got %d", ErrMissingArgs, c.MinArgs, len(args))
	}

	if c.MaxArgs >= 0 && len(args) > c.MaxArgs {
		return fmt.Errorf("%w: %s", ErrTooManyArgs, strings.Join(args[c.MaxArgs:], " "))
	}

	return nil
}

// Run parses args and executes the command, printing errors itself.
// Returns the exit code.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}

	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)

		return 0
	}

	if err == nil {
		err = c.checkArgs(c.Flags.Args())
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln("usage: rexfuzz", c.Usage)
		o.ErrPrintln("run 'rexfuzz " + c.Name() + " --help' for details")

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return 0
}
