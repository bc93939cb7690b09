// solvectl solves CVRP problem files from the command line without running
// the HTTP service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/logging"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/model"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/solver"
)

var (
	flagTimeLimit time.Duration
	flagJSON      bool
	flagVerbose   bool
)

func main() {
	root := &cobra.Command{
		Use:           "solvectl",
		Short:         "Solve capacitated vehicle routing problems from JSON files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := "warn"
			if flagVerbose {
				level = "debug"
			}
			logging.Init(logging.Config{Level: level, Format: "console"})
		},
	}
	root.PersistentFlags().DurationVar(&flagTimeLimit, "time-limit", 0, "override the solve time limit (e.g. 10s)")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "print the full result as JSON")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log solver progress")

	solveCmd := &cobra.Command{
		Use:   "solve <file>",
		Short: "Solve a matrix-based problem file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req model.OptimizeRequest
			if err := readRequest(args[0], &req); err != nil {
				return err
			}
			req.ApplyDefaults()
			return run(cmd.Context(), &req)
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Solve a coordinate-based problem file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var breq model.BatchRequest
			if err := readRequest(args[0], &breq); err != nil {
				return err
			}
			return run(cmd.Context(), breq.ToOptimizeRequest())
		},
	}

	root.AddCommand(solveCmd, batchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func readRequest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func run(ctx context.Context, req *model.OptimizeRequest) error {
	p, err := req.Problem()
	if err != nil {
		return err
	}
	limit := time.Duration(req.TimeLimit * float64(time.Second))
	if flagTimeLimit > 0 {
		limit = flagTimeLimit
	}

	var progress func(solver.ProgressEvent)
	if flagVerbose {
		progress = func(evt solver.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "iteration %d: distance %d (%dms)\n", evt.Iteration, evt.Distance, evt.ElapsedMs)
		}
	}

	outcome := solver.Solve(ctx, p, solver.SolveOptions{TimeLimit: limit, Progress: progress})

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	if !outcome.Feasible() {
		if outcome.Reason != "" {
			return fmt.Errorf("%s: %s", outcome.Status, outcome.Reason)
		}
		return fmt.Errorf("%s", outcome.Status)
	}

	rep := outcome.Report
	fmt.Printf("status: %s\n", outcome.Status)
	fmt.Printf("total distance: %d\n", rep.Summary.TotalDistance)
	fmt.Printf("vehicles used: %d of %d\n", rep.Summary.NumVehiclesUsed, req.NumVehicles)
	for _, rt := range rep.Routes {
		if len(rt.Stops) <= 2 {
			continue
		}
		fmt.Printf("vehicle %d (load %d, %.0f%% utilization, distance %d):", rt.VehicleID, rt.TotalLoad, rt.CapacityUtilization, rt.TotalDistance)
		for _, stop := range rt.Stops {
			fmt.Printf(" %d", stop.LocationIndex)
		}
		fmt.Println()
	}
	return nil
}
