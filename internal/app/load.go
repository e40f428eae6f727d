package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tigerroll/graphload/internal/reddit"
	"github.com/tigerroll/graphload/pkg/batch/adapter/dgraph"
	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/application/usecase"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/listener/progress"
	"github.com/tigerroll/graphload/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
	"github.com/tigerroll/graphload/pkg/batch/support/util/serialization"
)

// loadFlags are the per-run overrides of the configured batch options.
type loadFlags struct {
	path             string
	batchSize        int
	limit            int
	offset           int
	recordsPerSecond float64
	noClassifier     bool
	progress         bool
	params           []string
}

func (f *loadFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.path, "path", "", "input file, local path or gs://bucket/object")
	fs.IntVar(&f.batchSize, "batch-size", 0, "records per transaction")
	fs.IntVar(&f.limit, "limit", 0, "maximum number of admitted records")
	fs.IntVar(&f.offset, "offset", 0, "reserved; recorded but not applied")
	fs.Float64Var(&f.recordsPerSecond, "records-per-second", 0, "throttle reading, 0 for unlimited")
	fs.BoolVar(&f.noClassifier, "no-classifier", false, "admit every record")
	fs.BoolVar(&f.progress, "progress", true, "draw a progress bar on stderr")
	fs.StringArrayVar(&f.params, "param", nil, "job parameter as key=value (repeatable)")
}

// ingestOptions starts from the configured batch options, applies --param
// values and then the explicitly set flags.
func (f *loadFlags) ingestOptions(fs *pflag.FlagSet, cfg *config.BatchConfig) (config.IngestOptions, error) {
	opts := cfg.IngestOptions()
	if err := opts.ApplyParams(f.params); err != nil {
		return opts, err
	}
	if fs.Changed("path") {
		opts.Path = f.path
	}
	if fs.Changed("batch-size") {
		opts.BatchSize = f.batchSize
	}
	if fs.Changed("limit") {
		opts.Limit = f.limit
	}
	if fs.Changed("offset") {
		opts.Offset = f.offset
	}
	if fs.Changed("records-per-second") {
		opts.RecordsPerSecond = f.recordsPerSecond
	}
	if fs.Changed("no-classifier") {
		opts.DisableClassifier = f.noClassifier
	}
	return opts, opts.Validate()
}

func loadCmd(opts *Options) *cobra.Command {
	flags := &loadFlags{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Stream a JSON lines file into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, opts, flags, false)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func regenerateCmd(opts *Options) *cobra.Command {
	flags := &loadFlags{}
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Drop all data, then load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, opts, flags, true)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runLoad(cmd *cobra.Command, opts *Options, flags *loadFlags, dropFirst bool) error {
	var (
		launcher usecase.JobLauncher
		adapter  *dgraph.Adapter
		cfg      *config.BatchConfig
		security *config.SecurityConfig
	)
	return runWith(cmd.Context(), *opts, ingestModules, func(ctx context.Context) error {
		ingest, err := flags.ingestOptions(cmd.Flags(), cfg)
		if err != nil {
			return err
		}
		logParameters(flags.params, security.MaskedParameterKeys)

		if dropFirst && !adapter.DropAll(ctx) {
			logger.Warnf("Drop all failed; loading into the existing data.")
		}

		req := usecase.LaunchRequest{Options: ingest, Progress: newProgress(flags.progress)}
		if !ingest.DisableClassifier {
			existing, err := reddit.ExistingPostIDs(ctx, adapter)
			if err != nil {
				logger.Warnf("Could not read existing posts, admitting posts without a reference set: %v", err)
			}
			req.Classifier = reddit.LinkableContentClassifier(existing)
		}

		je, err := launcher.Launch(ctx, req)
		if err != nil {
			if msg, ok := interruption(ctx, je); ok {
				logger.Warnf("%s", msg)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), je.ExitMessage)
		return nil
	}, &launcher, &adapter, &cfg, &security)
}

// interruption describes a run that ended because ctx was cancelled.
func interruption(ctx context.Context, je *model.JobExecution) (string, bool) {
	if ctx.Err() == nil || je == nil {
		return "", false
	}
	return fmt.Sprintf("Interrupted after %d of %d records; job %s marked %s.", je.ProcessedCount, je.Limit, je.ID, je.Status), true
}

func logParameters(params []string, maskedKeys []string) {
	if len(params) == 0 {
		return
	}
	props, err := configbinder.ParseAssignments(params)
	if err != nil {
		return
	}
	data, err := serialization.MarshalParameters(props, maskedKeys)
	if err != nil {
		logger.Warnf("Could not render job parameters: %v", err)
		return
	}
	logger.Infof("Job parameters: %s", data)
}

func newProgress(enabled bool) port.ProgressReporter {
	if !enabled {
		return progress.NewNoOpReporter()
	}
	return progress.NewBarReporter(os.Stderr)
}
