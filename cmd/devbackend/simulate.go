package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/harkwise/userapp/internal/loadgen"
	"github.com/harkwise/userapp/pkg/logger"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cfg := loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive simulated visitors through a running user app",
		Long: `Each simulated visitor opens a location's form through the JSON API,
picks a rating, sometimes leaves a comment and submits. With --backend the
backend's tally is checked against the submissions the app reported.`,
		Example: `  devbackend simulate --target http://localhost:8080 --backend http://localhost:9090 --visitors 500`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.TargetURL, "target", "http://localhost:8080", "Base URL of the user app")
	cmd.Flags().StringVar(&cfg.BackendURL, "backend", "", "Base URL of the dev backend to verify against")
	cmd.Flags().IntVar(&cfg.Visitors, "visitors", 100, "Number of simulated visitors")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "Concurrent visitors (default CPU cores * 2)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 15*time.Second, "Per-request timeout")
	cmd.Flags().StringSliceVar(&cfg.Locations, "locations", nil, "Location identifiers (default a built-in set)")
	cmd.Flags().Float64Var(&cfg.CommentRate, "comment-rate", 0.5, "Fraction of visitors leaving a comment")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", uint64(time.Now().UnixNano()), "Generator seed")
	return cmd
}

func runSimulate(ctx context.Context, out io.Writer, cfg loadgen.Config) error {
	st, err := loadgen.Run(ctx, cfg, logger.Named("simulate"))
	printSummary(out, st)
	return err
}

func printSummary(out io.Writer, st loadgen.Stats) {
	fmt.Fprintf(out, "visitors:  %d\n", st.Visitors)
	fmt.Fprintf(out, "succeeded: %d\n", st.Succeeded)
	fmt.Fprintf(out, "failed:    %d\n", st.Failed)
	fmt.Fprintf(out, "errored:   %d\n", st.Errored)
	fmt.Fprintf(out, "duration:  %s\n", st.Duration.Round(time.Millisecond))

	ratings := make([]int, 0, len(st.ByRating))
	for r := range st.ByRating {
		ratings = append(ratings, r)
	}
	slices.Sort(ratings)
	for _, r := range ratings {
		fmt.Fprintf(out, "  %d stars: %d\n", r, st.ByRating[r])
	}
	if st.Verified {
		fmt.Fprintln(out, "backend tally verified")
	}
}
