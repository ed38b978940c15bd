package runtime

import (
	"os"

	"github.com/architeacher/device-list/services/svc-list/internal/config"
)

type ServiceOption func(*ServiceCtx)

func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(s *ServiceCtx) {
		s.shutdownChannel = ch
	}
}

func WithWaitingForServer() ServiceOption {
	return func(s *ServiceCtx) {
		s.serverReady = make(chan struct{})
	}
}

// WithConfigOverride adjusts the loaded configuration before any dependency
// is built from it.
func WithConfigOverride(fn func(*config.ServiceConfig)) ServiceOption {
	return func(s *ServiceCtx) {
		s.configOverrides = append(s.configOverrides, fn)
	}
}
