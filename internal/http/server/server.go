package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/usercards/internal/observability/logger"
)

// Options parámetros del http.Server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run sirve handler hasta que ctx se cancele; luego hace shutdown esperando
// a los requests en vuelo hasta ShutdownTimeout.
func Run(ctx context.Context, handler http.Handler, opts Options) error {
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}
	log := logger.L().With(logger.Component("server"))

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("shutting down", logger.Duration(timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
