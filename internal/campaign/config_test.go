package campaign_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/rexfuzz/internal/campaign"
	"github.com/calvinalkan/rexfuzz/internal/harness"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func load(t *testing.T, dir string, env map[string]string, configPath string) (campaign.Config, error) {
	t.Helper()

	return campaign.LoadConfig(campaign.LoadConfigInput{
		WorkDirOverride: dir,
		ConfigPath:      configPath,
		Env:             env,
	})
}

func Test_LoadConfig_Returns_Defaults_When_No_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := load(t, dir, map[string]string{"HOME": t.TempDir()}, "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, campaign.DefaultRSSLimitMB, cfg.RSSLimit())
	assert.Equal(t, filepath.Join(dir, "internal", "harness", "testdata", "fuzz"), cfg.CorpusDirAbs)
	assert.Empty(t, cfg.Sources.Global)
	assert.Empty(t, cfg.Sources.Project)

	variants, err := campaign.Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, harness.Variants(), variants)
}

func Test_LoadConfig_Applies_Precedence_When_All_Layers_Present(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()

	writeFile(t, filepath.Join(xdg, "rexfuzz", "config.json"), `{
		// global
		"log_level": "debug",
		"corpus_dir": "global-corpus",
		"rss_limit_mb": 512,
	}`)
	writeFile(t, filepath.Join(dir, ".rexfuzz.json"), `{"corpus_dir": "project-corpus"}`)

	cfg, err := load(t, dir, map[string]string{"XDG_CONFIG_HOME": xdg}, "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 512, cfg.RSSLimit())
	assert.Equal(t, filepath.Join(dir, "project-corpus"), cfg.CorpusDirAbs)
	assert.Equal(t, filepath.Join(xdg, "rexfuzz", "config.json"), cfg.Sources.Global)
	assert.Equal(t, filepath.Join(dir, ".rexfuzz.json"), cfg.Sources.Project)

	writeFile(t, filepath.Join(dir, "custom.json"), `{"rss_limit_mb": 0}`)

	cfg, err = load(t, dir, map[string]string{"XDG_CONFIG_HOME": xdg, campaign.LogLevelEnv: "error"}, "custom.json")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 0, cfg.RSSLimit())
	assert.Equal(t, filepath.Join(dir, "global-corpus"), cfg.CorpusDirAbs)
	assert.Equal(t, filepath.Join(dir, "custom.json"), cfg.Sources.Project)
}

func Test_LoadConfig_Merges_Variant_Overrides_Per_Field(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()

	writeFile(t, filepath.Join(xdg, "rexfuzz", "config.json"), `{
		"variants": {"flat": {"count": 6, "disable": ["verbose"]}}
	}`)
	writeFile(t, filepath.Join(dir, ".rexfuzz.json"), `{
		"variants": {
			"flat": {"length": 16},
			"builder": {"disable": []},
		},
	}`)

	cfg, err := load(t, dir, map[string]string{"XDG_CONFIG_HOME": xdg}, "")
	require.NoError(t, err)

	variants, err := campaign.Resolve(cfg)
	require.NoError(t, err)

	flat, ok := harness.LookupVariant(variants, harness.VariantFlat)
	require.True(t, ok)
	assert.Equal(t, harness.Limits{Count: 6, Length: 16}, flat.Limits)
	assert.Equal(t, harness.NewFeatureSet(harness.FeatureVerbose), flat.Disabled)
	assert.Equal(t, harness.PolicyBudgeted, flat.Policy)

	builder, ok := harness.LookupVariant(variants, harness.VariantBuilder)
	require.True(t, ok)
	assert.Equal(t, harness.FeatureSet(0), builder.Disabled)
}

func Test_LoadConfig_Returns_Error_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "BadJSON", content: `{invalid json}`, wantErr: campaign.ErrConfigInvalid},
		{name: "EmptyCorpusDir", content: `{"corpus_dir": ""}`, wantErr: campaign.ErrCorpusDirEmpty},
		{name: "LogLevel", content: `{"log_level": "loud"}`, wantErr: campaign.ErrInvalidLogLevel},
		{name: "NegativeRSS", content: `{"rss_limit_mb": -1}`, wantErr: campaign.ErrNegativeRSSLimit},
		{name: "UnknownVariant", content: `{"variants": {"nope": {}}}`, wantErr: campaign.ErrUnknownVariant},
		{name: "UnknownPolicy", content: `{"variants": {"flat": {"policy": "greedy"}}}`, wantErr: harness.ErrUnknownPolicy},
		{name: "UnknownFeature", content: `{"variants": {"flat": {"disable": ["lookahead"]}}}`, wantErr: harness.ErrUnknownFeature},
		{name: "ZeroCount", content: `{"variants": {"flat": {"count": 0}}}`, wantErr: campaign.ErrInvalidLimits},
		{name: "BoundedBuilderWithoutLimits", content: `{"variants": {"builder": {"policy": "fixed"}}}`, wantErr: campaign.ErrInvalidLimits},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, ".rexfuzz.json"), testCase.content)

			_, err := load(t, dir, map[string]string{}, "")
			require.ErrorIs(t, err, testCase.wantErr)
			require.ErrorIs(t, err, campaign.ErrConfigInvalid)
		})
	}
}

func Test_LoadConfig_Returns_Error_When_Explicit_File_Missing(t *testing.T) {
	t.Parallel()

	_, err := load(t, t.TempDir(), map[string]string{}, "missing.json")
	require.ErrorIs(t, err, campaign.ErrConfigFileNotFound)
}

func Test_LoadConfig_Keeps_Absolute_Corpus_Dir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "corpus")
	writeFile(t, filepath.Join(dir, ".rexfuzz.json"), `{"corpus_dir": "`+abs+`"}`)

	cfg, err := load(t, dir, map[string]string{}, "")
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.CorpusDirAbs)
}

func Test_FormatConfig_Renders_Serialized_Fields(t *testing.T) {
	t.Parallel()

	out, err := campaign.FormatConfig(campaign.DefaultConfig())
	require.NoError(t, err)

	assert.Contains(t, out, `"log_level": "info"`)
	assert.Contains(t, out, `"rss_limit_mb": 2048`)
	assert.NotContains(t, out, "EffectiveCwd")
}
