package main

import (
	"context"
	"fmt"

	"github.com/mercurysync/graphrunner/errors"
	"github.com/mercurysync/graphrunner/graph"
	"github.com/mercurysync/graphrunner/logger"
	"github.com/mercurysync/graphrunner/runner"
	"github.com/mercurysync/graphrunner/stage"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var maxParallel int

	cmd := &cobra.Command{
		Use:   "run <graph_path>",
		Short: "Assemble and execute a graph manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, log, err := assemble(args[0])
			if err != nil {
				return err
			}
			return runGraph(cmd.Context(), g, log, maxParallel)
		},
	}

	cmd.Flags().IntVar(&maxParallel, "max-parallel", 0, "bound concurrent transitions per generation (0 = unlimited)")
	return cmd
}

// runGraph drives the Transition Runner to completion, reporting the
// first failing stage's error code and reason per spec.md §7's
// "first failing component's kind and reason" compact CLI summary.
func runGraph(ctx context.Context, g *graph.Graph, log *logger.Logger, maxParallel int) error {
	r := &runner.Runner{
		MaxParallel: maxParallel,
		Log:         log,
		Teardown: func(ctx context.Context, s *stage.Stage) error {
			log.Debug("teardown", logger.Fields("stage_name", s.Name))
			return nil
		},
	}

	report, err := r.Run(ctx, g)
	if err != nil {
		return &cliError{code: exitRuntime, err: err}
	}

	if report.Status == runner.StatusFailed {
		for name, result := range report.StageResults {
			if result.Err == nil {
				continue
			}
			if appErr, ok := errors.AsAppError(result.Err); ok {
				resp := appErr.ToResponse()
				return &cliError{code: exitRuntime, err: fmt.Errorf(
					"stage %s failed: %s: %s", name, resp.Error.Code, resp.Error.Message)}
			}
			return &cliError{code: exitRuntime, err: fmt.Errorf("stage %s failed: %w", name, result.Err)}
		}
		return &cliError{code: exitRuntime, err: fmt.Errorf("run failed")}
	}

	fmt.Printf("run completed: %d stages\n", len(report.StageResults))
	return nil
}
