package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/harkwise/userapp/internal/devbackend"
	"github.com/harkwise/userapp/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type serveOptions struct {
	addr     string
	failRate float64
	latency  time.Duration
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept feedback payloads",
		Long: `Listen for POST /api/v1/feedback, validate each payload and answer
201 {"status":"received","id":...}. Invalid payloads get 422. A fail rate
makes that fraction of requests answer 503; latency delays every response.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":9090", "Listen address")
	cmd.Flags().Float64Var(&opts.failRate, "fail-rate", 0, "Fraction of requests answered with 503 (0..1)")
	cmd.Flags().DurationVar(&opts.latency, "latency", 0, "Delay added to every response")
	return cmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	log := logger.Named("devbackend")
	backend := devbackend.New(
		devbackend.WithFailRate(opts.failRate),
		devbackend.WithLatency(opts.latency),
		devbackend.WithLogger(log),
	)

	mux := http.NewServeMux()
	backend.Register(ctx, mux)
	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "dev backend listening",
			logger.String("addr", opts.addr),
			logger.Any("failRate", opts.failRate),
			logger.Duration("latency", opts.latency),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
