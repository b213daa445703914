// Package server runs the long-lived parts of the API under a suture
// supervisor: the HTTP listener and the notification workers.
package server

import (
	"context"
	"time"

	"go-medicamp/logging"

	"github.com/thejerf/suture/v4"
)

// Supervisor restarts failed services with suture's backoff
type Supervisor struct {
	root *suture.Supervisor
}

// NewSupervisor builds the root supervisor. Lifecycle events are logged
// through zerolog.
func NewSupervisor(name string, shutdownTimeout time.Duration) *Supervisor {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	spec := suture.Spec{
		EventHook:        logEvent,
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          shutdownTimeout,
	}
	return &Supervisor{root: suture.New(name, spec)}
}

// Add registers a service; it starts when Serve is called
func (s *Supervisor) Add(svc suture.Service) suture.ServiceToken {
	return s.root.Add(svc)
}

// Serve blocks until ctx is cancelled
func (s *Supervisor) Serve(ctx context.Context) error {
	return s.root.Serve(ctx)
}

func logEvent(e suture.Event) {
	ev := logging.Warn()
	switch e.Type() {
	case suture.EventTypeServicePanic:
		ev = logging.Error()
	case suture.EventTypeResume:
		ev = logging.Info()
	}
	ev.Fields(e.Map()).Msg(e.String())
}
