package cli_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/rexfuzz/internal/cli"
	"github.com/calvinalkan/rexfuzz/internal/corpus"
	"github.com/calvinalkan/rexfuzz/internal/harness"
)

// writeEntry stores data as a corpus entry for the named variant's fuzz target.
func writeEntry(t *testing.T, c *cli.CLI, variant string, data []byte) string {
	t.Helper()

	dir := filepath.Join(c.CorpusDir(), harness.MustVariant(variant).FuzzTarget)

	path, err := corpus.Write(dir, data)
	require.NoError(t, err)

	return path
}

func Test_Variants_Lists_Builtins_When_No_Overrides(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("variants")

	cli.AssertContains(t, stdout, "NAME")
	cli.AssertContains(t, stdout, "FuzzDriver_BuilderCalls")
	cli.AssertContains(t, stdout, "FuzzDriver_FlatRecord_Remainder")
	cli.AssertContains(t, stdout, "4x8")
	cli.AssertContains(t, stdout, "[repetitions case-insensitive verbose]")
}

func Test_Variants_Applies_Overrides_When_Configured(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{
		// tuned for longer examples
		"variants": {"flat": {"count": 2, "length": 32, "disable": []}},
	}`)

	stdout := c.MustRun("variants")

	for line := range strings.Lines(stdout) {
		if strings.HasPrefix(line, "flat ") {
			cli.AssertContains(t, line, "2x32")
			cli.AssertContains(t, line, "[]")
		}
	}
}

func Test_Decode_Prints_Test_Case_When_Path_Under_Fuzz_Target(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	data := harness.NewSeedBuilder(harness.MustVariant(harness.VariantFlat)).
		Examples("a1", "a2").
		Features(harness.FeatureDigits).
		Bytes()
	path := writeEntry(t, c, harness.VariantFlat, data)

	stdout := c.MustRun("decode", "--build", path)

	cli.AssertContains(t, stdout, "variant: flat")
	cli.AssertContains(t, stdout, "consumed: "+strconv.Itoa(len(data))+"/"+strconv.Itoa(len(data)))
	cli.AssertContains(t, stdout, `[0] "a1"`)
	cli.AssertContains(t, stdout, `[1] "a2"`)
	cli.AssertContains(t, stdout, "features: [digits]")
	cli.AssertContains(t, stdout, `pattern: "^a\\d$"`)
	cli.AssertContains(t, stdout, "fingerprint: ")
}

func Test_Decode_Prints_Calls_When_Builder_Variant(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	data := harness.NewSeedBuilder(harness.MustVariant(harness.VariantBuilder)).
		Examples("abc").
		Calls(harness.Call(harness.MethodWithCapturingGroups), harness.CallWith(harness.MethodWithMinimumRepetitions, 3)).
		Bytes()
	path := c.WriteFile("crash.bin", data)

	stdout := c.MustRun("decode", "-V", "builder", path)

	cli.AssertContains(t, stdout, "variant: builder")
	cli.AssertContains(t, stdout, "calls: 2")
	cli.AssertContains(t, stdout, ".WithCapturingGroups()")
	cli.AssertContains(t, stdout, ".WithMinimumRepetitions(3)")
	cli.AssertNotContains(t, stdout, "pattern:")
}

func Test_Decode_Fails_When_Variant_Cannot_Be_Inferred(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := c.WriteFile("crash.bin", []byte("abc"))

	stderr := c.MustFail("decode", path)

	cli.AssertContains(t, stderr, "cannot infer variant")
}

func Test_Decode_Fails_When_Format_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := c.WriteFile("crash.bin", []byte("abc"))

	stderr := c.MustFail("decode", "-V", "flat", "--format", "yaml", path)

	cli.AssertContains(t, stderr, "format must be one of")
}

func Test_Decode_Fails_When_File_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustFail("decode", "-V", "flat"), "missing arguments: want at least 1, got 0")
	cli.AssertContains(t, c.MustFail("decode", "-V", "flat", filepath.Join(c.Dir, "nope")), "read corpus entry")
}

func Test_Decode_Json_And_Cbor_Carry_Same_Fingerprint(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := writeEntry(t, c, harness.VariantFlatFixed, []byte("\x01\x00\x01 some example bytes"))

	jsonOut := c.MustRun("decode", "--format", "json", path)
	cborOut, _, code := c.Run("decode", "--format", "cbor", path)
	require.Equal(t, 0, code)

	var decoded struct {
		Fingerprint string `cbor:"fingerprint"`
	}

	require.NoError(t, cbor.Unmarshal([]byte(cborOut), &decoded))
	require.Len(t, decoded.Fingerprint, 64)
	cli.AssertContains(t, jsonOut, `"fingerprint": "`+decoded.Fingerprint+`"`)
	cli.AssertContains(t, jsonOut, `"variant": "flat-fixed"`)
}

func Test_Seed_Writes_Curated_Seeds_For_Every_Variant(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("seed")

	for _, v := range harness.Variants() {
		entries, err := corpus.ReadDir(filepath.Join(c.CorpusDir(), v.FuzzTarget))
		require.NoError(t, err)
		assert.NotEmpty(t, entries, v.Name)

		for _, path := range entries {
			data, err := corpus.Read(path)
			require.NoError(t, err)

			driver := harness.NewDriver(v, harness.RexgenTarget{})
			assert.NotPanics(t, func() { driver.Run(data) }, path)
		}
	}

	cli.AssertContains(t, stdout, "common_prefix")
}

func Test_Seed_Is_Idempotent_When_Run_Twice(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	first := c.MustRun("seed", "-V", "builder")
	second := c.MustRun("seed", "-V", "builder")

	assert.Equal(t, first, second)

	_, err := os.Stat(filepath.Join(c.CorpusDir(), "FuzzDriver_FlatRecord"))
	assert.True(t, os.IsNotExist(err))
}

func Test_Seed_Writes_To_Dir_When_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("seed", "--dir", "out", "-V", "flat")

	entries, err := corpus.ReadDir(filepath.Join(c.Dir, "out", "FuzzDriver_FlatRecord"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func Test_Replay_Runs_Seeded_Corpus_When_No_Paths(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{"rss_limit_mb": 0, "log_level": "error"}`)
	c.MustRun("seed")

	metricsFile := filepath.Join(c.Dir, "replay.prom")
	stdout := c.MustRun("replay", "--metrics-file", metricsFile)

	for _, v := range harness.Variants() {
		entries, err := corpus.ReadDir(filepath.Join(c.CorpusDir(), v.FuzzTarget))
		require.NoError(t, err)

		cli.AssertContains(t, stdout, v.Name+": "+strconv.Itoa(len(entries))+" inputs")
	}

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	cli.AssertContains(t, string(content), "rexfuzz_replay_inputs_total")
	cli.AssertContains(t, string(content), `variant="flat-remainder"`)
}

func Test_Replay_Counts_Engine_Errors_When_Input_Empty(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{"rss_limit_mb": 0}`)
	path := c.WriteFile("empty.bin", nil)

	stdout := c.MustRun("replay", "-V", "builder", path)

	cli.AssertContains(t, stdout, "builder: 1 inputs, 1 ok, 0 engine errors")
}

func Test_Replay_Warns_When_Corpus_Empty(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{"rss_limit_mb": 0}`)

	_, stderr, code := c.Run("replay")

	assert.Equal(t, 1, code)
	cli.AssertContains(t, stderr, "warning: no corpus entries found")
}

func Test_Replay_Fails_When_Variant_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{"rss_limit_mb": 0}`)

	cli.AssertContains(t, c.MustFail("replay", "-V", "nope"), `unknown variant: "nope"`)
}

func Test_Explore_Decodes_Each_Line_When_Stdin_Is_Piped(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	input := strings.Join([]string{
		`hex:00`,
		`:variant flat`,
		`"\x00"`,
		`:variant nope`,
		`hex:zz`,
		`:quit`,
		`never reached`,
	}, "\n")

	stdout, stderr, code := c.RunWithInput(input, "explore")

	require.Equal(t, 0, code, stderr)
	cli.AssertContains(t, stdout, "variant builder, type :help for commands")
	cli.AssertContains(t, stdout, "variant: builder")
	cli.AssertContains(t, stdout, `pattern: "^$"`)
	cli.AssertContains(t, stdout, "variant: flat")
	cli.AssertContains(t, stdout, `unknown variant: "nope"`)
	cli.AssertContains(t, stdout, "invalid input")
	cli.AssertNotContains(t, stdout, "never reached")
}

func Test_Explore_Decodes_Line_When_Longer_Than_Default_Scanner_Buffer(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	line := "hex:" + strings.Repeat("00", 100_000)

	stdout, stderr, code := c.RunWithInput(line+"\n:quit\n", "explore", "-V", "flat-fixed")

	require.Equal(t, 0, code, stderr)
	cli.AssertContains(t, stdout, "consumed: 55/100000")
	cli.AssertNotContains(t, stderr, "token too long")
}

func Test_PrintConfig_Shows_Sources_When_Project_Config_Present(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "(defaults only)")
	cli.AssertContains(t, stdout, "corpus_dir="+c.CorpusDir())

	c.WriteConfig(`{"corpus_dir": "corpus"}`)

	stdout = c.MustRun("print-config")
	cli.AssertContains(t, stdout, "project_config=")
	cli.AssertContains(t, stdout, "corpus_dir="+filepath.Join(c.Dir, "corpus"))
}
