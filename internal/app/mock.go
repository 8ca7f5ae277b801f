package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/PandaWhoCodes/youversion/internal/fakeapi"
)

func init() {
	register(command{
		name:    "mock",
		usage:   "[-addr host:port] [-key k]",
		summary: "serve a fake API with fixture data for local testing",
		offline: true,
		run:     runMock,
	})
}

func runMock(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("mock")
	addr := fs.String("addr", "127.0.0.1:8080", "listen address")
	key := fs.String("key", a.cfg.API.Key, "app key the server requires, empty accepts any")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	fake, err := fakeapi.New(fakeapi.WithAppKey(*key))
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("mock: %w", err)
	}

	srv := &http.Server{Handler: fake.Handler(), ReadHeaderTimeout: shutdownTimeout}
	errc := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	a.log.Info("mock api listening", slog.String("addr", "http://"+ln.Addr().String()))

	select {
	case err := <-errc:
		return fmt.Errorf("mock: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
