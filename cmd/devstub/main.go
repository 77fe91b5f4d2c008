package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/newspulse/internal/devstub"
	"github.com/okian/newspulse/pkg/logger"
)

// HTTP server timeout constants.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Stderr.WriteString("devstub: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	cfg := devstub.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "devstub",
		Short: "Serve fake feed search and inference endpoints",
		Long: `devstub imitates the news search RSS endpoint and the text-classification
inference endpoint so newspulse can run without network access.

Examples:
  devstub --addr 127.0.0.1:9091
  NEWSPULSE_FEED_BASE_URL=http://127.0.0.1:9091 \
  NEWSPULSE_CLASSIFIER_ENDPOINT=http://127.0.0.1:9091 newspulse run`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	cmd.Flags().IntVar(&cfg.Headlines, "headlines", cfg.Headlines, "items per feed search")
	cmd.Flags().DurationVar(&cfg.Latency, "latency", cfg.Latency, "delay added to every response")
	cmd.Flags().StringSliceVar(&cfg.FailEntities, "fail", nil, "entities whose search answers 503")
	cmd.Flags().StringVar(&cfg.BrokenModelOn, "broken-on", "", "inference answers 500 for inputs containing this text")
	return cmd
}

func serve(ctx context.Context, cfg devstub.Config) error {
	if err := logger.Init(); err != nil {
		return err
	}
	log := logger.Named("devstub")

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           devstub.NewServer(cfg).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting stub upstream", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down stub upstream")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
