// Package app wires the graphload packages into the command line tool.
package app

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	"github.com/tigerroll/graphload/pkg/batch/adapter/dgraph"
	"github.com/tigerroll/graphload/pkg/batch/adapter/storage"
	"github.com/tigerroll/graphload/pkg/batch/adapter/storage/gcs"
	"github.com/tigerroll/graphload/pkg/batch/adapter/storage/local"
	"github.com/tigerroll/graphload/pkg/batch/component/item/writer"
	"github.com/tigerroll/graphload/pkg/batch/core/application/usecase"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	coremetrics "github.com/tigerroll/graphload/pkg/batch/core/metrics"
	inframetrics "github.com/tigerroll/graphload/pkg/batch/infrastructure/metrics"
	"github.com/tigerroll/graphload/pkg/batch/infrastructure/repository"
	"github.com/tigerroll/graphload/pkg/batch/listener"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// Options select the configuration a command runs with.
type Options struct {
	// EnvFilePath is the .env file loaded before the configuration.
	EnvFilePath string
	// Config is the YAML document, the embedded one unless --config is given.
	Config config.EmbeddedConfig
}

// databaseModules is what the administrative commands need.
var databaseModules = fx.Options(
	dgraph.Module,
)

// ingestModules is the full pipeline used by load and regenerate.
var ingestModules = fx.Options(
	dgraph.Module,
	storage.Module,
	local.Module,
	gcs.Module,
	repository.Module,
	listener.Module,
	writer.Module,
	usecase.Module,
)

// historyModules reads past job executions.
var historyModules = fx.Options(
	repository.Module,
	usecase.Module,
)

// runWith builds an Fx application from modules, populates targets, starts it,
// runs task and stops the application again. Errors from task and from
// shutdown are combined.
func runWith(ctx context.Context, opts Options, modules fx.Option, task func(context.Context) error, targets ...interface{}) (err error) {
	app := fx.New(
		fx.Supply(
			opts.Config,
			fx.Annotate(opts.EnvFilePath, fx.ResultTags(`name:"envFilePath"`)),
		),
		logger.Module,
		config.Module,
		coremetrics.Module,
		inframetrics.Module,
		modules,
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancelStart := context.WithTimeout(ctx, app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	defer func() {
		stopCtx, cancelStop := context.WithTimeout(context.WithoutCancel(ctx), app.StopTimeout())
		defer cancelStop()
		if stopErr := app.Stop(stopCtx); stopErr != nil {
			logger.Errorf("Shutdown failed: %v", stopErr)
			err = multierror.Append(err, stopErr).ErrorOrNil()
		}
	}()

	return task(ctx)
}
