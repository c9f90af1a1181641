package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/rexfuzz/internal/campaign"
	"github.com/calvinalkan/rexfuzz/internal/corpus"
	"github.com/calvinalkan/rexfuzz/internal/harness"
	"github.com/calvinalkan/rexfuzz/internal/logger"
	"github.com/calvinalkan/rexfuzz/internal/metrics"
	"github.com/calvinalkan/rexfuzz/internal/rlimit"

	flag "github.com/spf13/pflag"
)

// ReplayCmd returns the replay command.
func ReplayCmd(cfg campaign.Config, variants []harness.Variant) *Command {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.StringP("variant", "V", "", "Variant to replay with (default: inferred from path)")
	fs.String("metrics-file", "", "Write Prometheus metrics to this textfile")

	return &Command{
		Flags: fs,
		Usage: "replay [flags] [path...]",
		Short: "Run corpus entries through the engine",
		Long: `Run corpus entries through the harness exactly as the fuzz targets do.

Each path is a corpus file or a directory of them. Without paths, every
variant's corpus directory under corpus_dir is replayed. A panic inside the
engine is logged with the offending input and crashes the process.`,
		Examples: []string{
			"replay",
			"replay --metrics-file replay.prom internal/harness/testdata/fuzz/FuzzDriver_BuilderCalls",
			"replay -V flat crash-input",
		},
		MaxArgs: -1,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execReplay(ctx, io, fs, cfg, variants, args)
		},
	}
}

// replayJob is one input file and the variant it runs under.
type replayJob struct {
	path    string
	variant harness.Variant
}

func execReplay(ctx context.Context, io *IO, fs *flag.FlagSet, cfg campaign.Config, variants []harness.Variant, args []string) error {
	name, _ := fs.GetString("variant")
	metricsFile, _ := fs.GetString("metrics-file")

	log := logger.New(io.ErrWriter(), cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	limit, err := rlimit.Apply(cfg.RSSLimit())

	switch {
	case errors.Is(err, rlimit.ErrUnsupported):
		log.Warn("address space limit not applied", zap.Error(err))
	case err != nil:
		return err
	default:
		log.Debug("address space limit", zap.Uint64("bytes", limit))
	}

	jobs, err := replayJobs(cfg, variants, name, args)
	if err != nil {
		return err
	}

	recorder := metrics.NewReplay()
	counts := make(map[string]map[string]int)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("replay interrupted: %w", err)
		}

		outcome, err := replayOne(log, recorder, job)
		if err != nil {
			return err
		}

		if counts[job.variant.Name] == nil {
			counts[job.variant.Name] = make(map[string]int)
		}

		counts[job.variant.Name][outcome]++
	}

	for _, v := range variants {
		c, ok := counts[v.Name]
		if !ok {
			continue
		}

		io.Printf("%s: %d inputs, %d ok, %d engine errors\n",
			v.Name, c[metrics.OutcomeOK]+c[metrics.OutcomeEngineError],
			c[metrics.OutcomeOK], c[metrics.OutcomeEngineError])
	}

	if len(jobs) == 0 {
		io.Warn("no corpus entries found", "run 'rexfuzz seed' or pass paths")
	}

	if metricsFile != "" {
		return recorder.WriteTextfile(metricsFile)
	}

	return nil
}

func replayOne(log *zap.Logger, recorder *metrics.Replay, job replayJob) (string, error) {
	data, err := corpus.Read(job.path)
	if err != nil {
		return "", err
	}

	driver := harness.NewDriver(job.variant, harness.RexgenTarget{})
	tc := driver.Decode(data)

	defer func() {
		if r := recover(); r != nil {
			log.Error("engine panicked",
				zap.String("variant", job.variant.Name),
				zap.String("path", job.path),
				zap.Binary("input", data),
				zap.Any("panic", r))
			_ = log.Sync()

			panic(r)
		}
	}()

	start := time.Now()
	_, buildErr := harness.RexgenTarget{}.Invoke(tc.Invocation())
	took := time.Since(start)

	outcome := metrics.OutcomeOK
	if buildErr != nil {
		outcome = metrics.OutcomeEngineError
	}

	recorder.Observe(job.variant.Name, outcome, len(data), tc.Consumed, took)
	log.Debug("replayed",
		zap.String("variant", job.variant.Name),
		zap.String("path", job.path),
		zap.Int("size", len(data)),
		zap.Int("consumed", tc.Consumed),
		zap.String("outcome", outcome),
		zap.Duration("took", took))

	return outcome, nil
}

func replayJobs(cfg campaign.Config, variants []harness.Variant, name string, args []string) ([]replayJob, error) {
	var jobs []replayJob

	if len(args) == 0 {
		for _, v := range variants {
			if name != "" && v.Name != name {
				continue
			}

			paths, err := corpus.ReadDir(filepath.Join(cfg.CorpusDirAbs, v.FuzzTarget))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			if err != nil {
				return nil, err
			}

			for _, p := range paths {
				jobs = append(jobs, replayJob{path: p, variant: v})
			}
		}

		if name != "" {
			if _, err := lookupVariant(variants, name); err != nil {
				return nil, err
			}
		}

		return jobs, nil
	}

	paths, err := corpus.Expand(args)
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		v, err := variantFor(variants, name, p)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, replayJob{path: p, variant: v})
	}

	return jobs, nil
}

// variantFor returns the variant called name, or the one whose fuzz target
// directory holds path when name is empty.
func variantFor(variants []harness.Variant, name, path string) (harness.Variant, error) {
	if name != "" {
		return lookupVariant(variants, name)
	}

	dir := filepath.Base(filepath.Dir(path))

	for _, v := range variants {
		if v.FuzzTarget == dir {
			return v, nil
		}
	}

	return harness.Variant{}, fmt.Errorf("%w: %s", ErrVariantRequired, path)
}
