package cli

import (
	"context"
	"path/filepath"

	"github.com/calvinalkan/rexfuzz/internal/campaign"
	"github.com/calvinalkan/rexfuzz/internal/corpus"
	"github.com/calvinalkan/rexfuzz/internal/harness"

	flag "github.com/spf13/pflag"
)

// SeedCmd returns the seed command.
func SeedCmd(cfg campaign.Config, variants []harness.Variant) *Command {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.String("dir", "", "Corpus root to write to (default: corpus_dir)")
	fs.StringP("variant", "V", "", "Only seed this variant")

	return &Command{
		Flags: fs,
		Usage: "seed [flags]",
		Short: "Write curated seed inputs to the corpus",
		Long: `Encode the curated seed scenarios for each variant and store them as
corpus entries under <dir>/<FuzzTarget>/. Existing entries with the same
content are overwritten in place, so seeding is idempotent.`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execSeed(io, fs, cfg, variants)
		},
	}
}

func execSeed(io *IO, fs *flag.FlagSet, cfg campaign.Config, variants []harness.Variant) error {
	dir, _ := fs.GetString("dir")
	name, _ := fs.GetString("variant")

	if dir == "" {
		dir = cfg.CorpusDirAbs
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.EffectiveCwd, dir)
	}

	selected := variants

	if name != "" {
		v, err := lookupVariant(variants, name)
		if err != nil {
			return err
		}

		selected = []harness.Variant{v}
	}

	for _, v := range selected {
		for _, seed := range harness.CuratedSeeds(v) {
			path, err := corpus.Write(filepath.Join(dir, v.FuzzTarget), seed.Data)
			if err != nil {
				return err
			}

			io.Printf("%s\t%s\t%s\n", v.Name, seed.Name, path)
		}
	}

	return nil
}
