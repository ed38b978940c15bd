package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases"
)

var errNoApplication = errors.New("application is not initialized")

// Session exposes the application over the configured backend without the
// HTTP server, for one-shot commands.
type Session struct {
	deps *dependencies
}

func OpenSession(ctx context.Context, overrides ...func(*config.ServiceConfig)) (*Session, error) {
	deps, err := initializeDependencies(overrides, storageOptions(ctx)...)
	if err != nil {
		return nil, fmt.Errorf("initializing dependencies: %w", err)
	}

	if deps.app == nil {
		deps.cleanup(ctx)

		return nil, errNoApplication
	}

	return &Session{deps: deps}, nil
}

func (s *Session) App() *usecases.Application {
	return s.deps.app
}

func (s *Session) Logger() logger.Logger {
	return s.deps.infra.logger
}

func (s *Session) BackendName() string {
	return s.deps.listService.BackendName()
}

func (s *Session) Close(ctx context.Context) {
	s.deps.cleanup(ctx)
}
