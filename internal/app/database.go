package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tigerroll/graphload/internal/reddit"
	"github.com/tigerroll/graphload/pkg/batch/adapter/dgraph"
	"github.com/tigerroll/graphload/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

var (
	errDropFailed   = errors.New("drop all failed")
	errSchemaFailed = errors.New("schema alteration failed")
)

func dropCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Drop all data and schema from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var adapter *dgraph.Adapter
			return runWith(cmd.Context(), *opts, databaseModules, func(ctx context.Context) error {
				if !adapter.DropAll(ctx) {
					return errDropFailed
				}
				return nil
			}, &adapter)
		},
	}
}

func schemaCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply the comment and post predicate schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var adapter *dgraph.Adapter
			return runWith(cmd.Context(), *opts, databaseModules, func(ctx context.Context) error {
				return applySchemas(ctx, adapter)
			}, &adapter)
		},
	}
}

type schemaAlterer interface {
	AlterSchema(ctx context.Context, schema string) bool
}

// applySchemas applies every schema and fails if any of them was rejected.
func applySchemas(ctx context.Context, a schemaAlterer) error {
	failed := 0
	for _, s := range reddit.Schemas() {
		if !a.AlterSchema(ctx, s) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d schemas rejected", errSchemaFailed, failed, len(reddit.Schemas()))
	}
	return nil
}

func queryCmd(opts *Options) *cobra.Command {
	var (
		file string
		vars []string
	)
	cmd := &cobra.Command{
		Use:   "query [query]",
		Short: "Run a read-only query and print the result as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := queryText(args, file)
			if err != nil {
				return err
			}
			queryVars, err := parseVars(vars)
			if err != nil {
				return err
			}
			var adapter *dgraph.Adapter
			return runWith(cmd.Context(), *opts, databaseModules, func(ctx context.Context) error {
				res := adapter.Query(ctx, query, queryVars)
				if !res.OK() {
					return res.Err
				}
				return printJSON(cmd.OutOrStdout(), res.Data)
			}, &adapter)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the query from a file")
	cmd.Flags().StringArrayVar(&vars, "vars", nil, "query variable as name=value (repeatable)")
	return cmd
}

func queryText(args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", errors.New("pass the query as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading query file: %w", err)
		}
		return string(data), nil
	default:
		return "", errors.New("no query given")
	}
}

// parseVars turns name=value pairs into query variables. A leading "$" is
// added to names that lack it.
func parseVars(pairs []string) (map[string]interface{}, error) {
	props, err := configbinder.ParseAssignments(pairs)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]interface{}, len(props))
	for k, v := range props {
		if !strings.HasPrefix(k, "$") {
			k = "$" + k
		}
		vars[k] = v
	}
	return vars, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	logger.Debugf("Query result written.")
	return nil
}
