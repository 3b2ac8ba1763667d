package sigctx

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// NotifyContext returns a context canceled on the first shutdown signal
// or by the returned cancel func. The received signal is logged.
func NotifyContext() (context.Context, context.CancelFunc) {
	const op = "sigctx.NotifyContext"

	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, shutdownSignals...)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			slog.Info("shutdown signal received", "op", op, "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
