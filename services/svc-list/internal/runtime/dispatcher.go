package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/architeacher/device-list/services/svc-list/internal/config"
)

type ServiceCtx struct {
	deps            *dependencies
	configOverrides []func(*config.ServiceConfig)
	shutdownChannel chan os.Signal
	serverCtx       context.Context
	serverStopFunc  context.CancelFunc
	serverReady     chan struct{}
	readyOnce       sync.Once
	serverErr       chan error
	listenAddr      net.Addr
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel: make(chan os.Signal, 1),
		serverErr:       make(chan error, 1),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

// Run serves HTTP until a termination signal arrives or the server fails.
func (c *ServiceCtx) Run() error {
	if err := c.build(); err != nil {
		c.markReady()

		return err
	}

	if err := c.startService(); err != nil {
		c.markReady()
		c.deps.cleanup(context.Background())

		return err
	}

	c.shutdownHook()

	var runErr error

	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.serverCtx.Done():
	case runErr = <-c.serverErr:
	case <-c.shutdownChannel:
	}

	c.shutdown()

	return runErr
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(c.configOverrides, defaultOptions(c.serverCtx)...)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

func (c *ServiceCtx) startService() error {
	server := c.deps.infra.httpServer

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", server.Addr, err)
	}

	c.listenAddr = listener.Addr()

	c.deps.infra.logger.Info().
		Str("address", c.listenAddr.String()).
		Str("backend", c.deps.listService.BackendName()).
		Msg("starting the http server")

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.serverErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	c.markReady()

	return nil
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *ServiceCtx) shutdown() {
	signal.Stop(c.shutdownChannel)

	c.deps.infra.logger.Info().Msg("shutting down service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.config.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := c.deps.infra.httpServer.Shutdown(shutdownCtx); err != nil {
		c.deps.infra.logger.Error().Err(err).Msg("graceful http shutdown failed")
	}

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	c.deps.infra.logger.Info().Msg("cleaning up resources...")
	c.deps.cleanup(shutdownCtx)
	c.deps.infra.logger.Info().Msg("service shutdown complete")
}

func (c *ServiceCtx) markReady() {
	if c.serverReady == nil {
		return
	}

	c.readyOnce.Do(func() { close(c.serverReady) })
}

// WaitForServer blocks until the http server is accepting connections, or
// until startup failed. Instantiate the service with WithWaitingForServer.
//
// Example:
//
//	srv := runtime.New(runtime.WithWaitingForServer())
//	go func() {
//		_ = srv.Run()
//	}()
//
//	srv.WaitForServer()
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

// Addr is the address the server listens on, nil before it started.
func (c *ServiceCtx) Addr() net.Addr {
	return c.listenAddr
}
