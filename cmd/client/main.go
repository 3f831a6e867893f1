package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-campus-session/auth"
	"github.com/jrsteele09/go-campus-session/internal/config"
	"github.com/jrsteele09/go-campus-session/internal/logging"
	"github.com/jrsteele09/go-campus-session/monitor"
	"github.com/jrsteele09/go-campus-session/navigation"
	"github.com/jrsteele09/go-campus-session/server"
	"github.com/jrsteele09/go-campus-session/sessions"
	"github.com/jrsteele09/go-campus-session/transport"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running portal")
	}
	log.Info().Msg("Portal stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	kv, closeStorage, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeStorage()

	store := sessions.NewStore(sessions.WithPersister(sessions.NewBridge(kv)))
	history := navigation.NewHistory(navigation.RouteEntry)
	if restored := store.Restore(); restored != nil {
		history.Navigate(navigation.DashboardPathFor(restored.Role), navigation.Push)
	}

	// Assigned before the portal serves its first request.
	var mon *monitor.Monitor
	api, err := transport.New(c.GetAPIBaseURL(), store,
		transport.WithTimeout(c.GetRequestTimeout()),
		transport.WithTenantID(c.GetTenantID()),
		transport.WithUnauthorizedHandler(func(ctx context.Context) {
			if mon != nil {
				mon.Expire(ctx)
			}
		}),
	)
	if err != nil {
		return err
	}

	gateway, err := auth.NewGateway(api, store, auth.WithDefaultLifetime(c.GetDefaultSessionLifetime()))
	if err != nil {
		return err
	}

	portal, err := server.New(c, gateway, store, history)
	if err != nil {
		return err
	}

	mon, err = monitor.New(store, gateway, history,
		monitor.WithInterval(c.GetMonitorInterval()),
		monitor.WithNotifier(portal),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mon.Bind(ctx, store)

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           portal.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Portal listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
