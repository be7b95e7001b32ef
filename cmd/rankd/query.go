package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viant/ranking/dispatch"
)

func queryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "query [operation] [name=value...]",
		Short: "Run an operation against the configured store",
		Long: `Run a dispatched operation locally and print the JSON answer.

Examples:
  rankd query knn dataset=points query=0.1,0.4 k=5 metric=l2
  rankd query sample dataset=points count=3 seed=7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			d, err := dispatch.NewDispatcher(nil, rt.store, rt.logger)
			if err != nil {
				return err
			}
			answer, err := d.Dispatch(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(answer)
		},
	}
}

func parseAssignments(args []string) (dispatch.Params, error) {
	params := dispatch.Params{}
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", arg)
		}
		params[name] = value
	}
	return params, nil
}
