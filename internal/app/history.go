package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tigerroll/graphload/pkg/batch/core/application/usecase"
	"github.com/tigerroll/graphload/pkg/batch/core/config"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
)

func historyCmd(opts *Options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent job executions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				explorer usecase.JobExplorer
				cfg      *config.JobRepositoryConfig
			)
			return runWith(cmd.Context(), *opts, historyModules, func(ctx context.Context) error {
				n := cfg.HistoryLimit
				if cmd.Flags().Changed("limit") {
					n = limit
				}
				executions, err := explorer.GetRecentJobExecutions(ctx, n)
				if err != nil {
					return err
				}
				return printHistory(cmd.OutOrStdout(), executions)
			}, &explorer, &cfg)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of executions to list, 0 for all")
	return cmd
}

func printHistory(w io.Writer, executions []*model.JobExecution) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tPROCESSED\tLIMIT\tBATCHES\tFAILED\tDURATION\tPATH")
	for _, je := range executions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			je.ID,
			je.StartTime.Format(time.RFC3339),
			je.Status,
			je.ProcessedCount,
			je.Limit,
			je.BatchCount,
			je.FailedBatchCount,
			je.Duration().Round(time.Millisecond),
			je.Path,
		)
	}
	return tw.Flush()
}
