package cli

import (
	"context"

	"github.com/spf13/cobra"

	httpapi "github.com/brankow/citation-extraction/internal/interfaces/http"
)

// Serve wires the application and runs the API server until ctx is canceled.
// Shared by `citex serve` and the standalone apiserver binary.
func Serve(ctx context.Context, opts *RootOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	checkers := []httpapi.HealthChecker{
		httpapi.NewChecker("llm", a.llm.Ping),
	}
	if a.cache != nil {
		checkers = append(checkers, httpapi.NewChecker("cache", a.cache.Ping))
	}
	if a.store != nil {
		checkers = append(checkers, httpapi.NewChecker("store", a.store.HealthCheck))
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Processor:      a.proc,
		Checkers:       checkers,
		Metrics:        a.metrics,
		MetricsHandler: a.collector.Handler(),
		Log:            a.log,
		MaxBodyBytes:   a.cfg.Server.MaxBodyBytes,
		Version:        Version,
	})
	srv := httpapi.NewServer(a.cfg.Server, router, a.log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := srv.Stop(context.Background()); err != nil {
			return err
		}
		return <-errCh
	}
}

func newServeCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the citation-extraction API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Serve(cmd.Context(), opts)
		},
	}
}
