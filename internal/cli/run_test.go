package cli_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/calvinalkan/rexfuzz/internal/cli"
)

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "variants")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
	cli.AssertContains(t, stderr, "--cwd")
	cli.AssertContains(t, stderr, "--config")
}

func Test_Global_Flag_Without_Value_When_Invoked(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(context.Background(), nil, &stdout, &stderr, []string{"rexfuzz", "-C"}, nil)

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stderr.String(), "flag requires an argument: -C")
}

func Test_Bare_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	// Call Run directly without test helper (which adds --cwd)
	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(context.Background(), nil, &stdout, &stderr, []string{"rexfuzz"}, nil)

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr.String(), ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout.String(), "rexfuzz - fuzz harness")
	cli.AssertContains(t, stdout.String(), "--cwd")
	cli.AssertContains(t, stdout.String(), "decode [flags] <file>")
	cli.AssertContains(t, stdout.String(), "replay [flags] [path...]")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Command_Help_When_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("decode", "--help")

	cli.AssertContains(t, stdout, "Usage: rexfuzz decode [flags] <file>")
	cli.AssertContains(t, stdout, "--format")
	cli.AssertContains(t, stdout, "--variant")
}

func Test_Invalid_Config_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{"log_level": "loud"}`)

	stderr := c.MustFail("variants")

	cli.AssertContains(t, stderr, "invalid config file")
	cli.AssertContains(t, stderr, "log_level")
}

func Test_Command_Rejects_Extra_Args_When_Command_Takes_None(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("variants", "flat")

	cli.AssertContains(t, stderr, "too many arguments: flat")
	cli.AssertContains(t, stderr, "run 'rexfuzz variants --help' for details")
}

func Test_Command_Rejects_Unknown_Flag_Without_Writing_Stdout(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("decode", "--nope", "file")

	cli.AssertContains(t, stderr, "unknown flag: --nope")
	cli.AssertContains(t, stderr, "usage: rexfuzz decode [flags] <file>")
}

func Test_Command_Help_Lists_Examples_When_Defined(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("replay", "--help")

	cli.AssertContains(t, stdout, "Examples:")
	cli.AssertContains(t, stdout, "  rexfuzz replay -V flat crash-input")

	cli.AssertNotContains(t, c.MustRun("variants", "--help"), "Examples:")
}
