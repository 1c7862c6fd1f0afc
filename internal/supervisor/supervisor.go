// This package provides mechanisms to manage the lifecycle of a group
// of long-running workers.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultSupervisorTimeout bounds how long the supervisor waits for a
// worker to become ready.
const DefaultSupervisorTimeout = 15 * time.Second

// Worker that runs in the background.
type Worker interface {
	fmt.Stringer

	// Start the worker. It must send a value to ready when it is
	// ready to work, and exit when ctx is cancelled.
	Start(ctx context.Context, ready chan<- struct{}) error
}

// SupervisorWorker starts its workers in order, waiting for each one to
// be ready before starting the next. When a worker exits, all other
// workers are stopped.
type SupervisorWorker struct {
	Name    string
	Workers []Worker
	Timeout time.Duration
}

func (w SupervisorWorker) String() string {
	if w.Name != "" {
		return w.Name
	}
	return "supervisor"
}

func (w SupervisorWorker) Start(ctx context.Context, ready chan<- struct{}) error {
	timeout := w.Timeout
	if timeout == 0 {
		timeout = DefaultSupervisorTimeout
	}
	group, ctx := errgroup.WithContext(ctx)
	for _, worker := range w.Workers {
		worker := worker
		innerReady := make(chan struct{}, 1)
		group.Go(func() error {
			defer slog.Info("supervisor: worker exited", "worker", worker.String())
			return worker.Start(ctx, innerReady)
		})
		select {
		case <-innerReady:
			slog.Info("supervisor: worker ready", "worker", worker.String())
		case <-ctx.Done():
			return group.Wait()
		case <-time.After(timeout):
			return fmt.Errorf("supervisor: %v timed out waiting to be ready", worker)
		}
	}
	ready <- struct{}{}
	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HttpWorker serves an HTTP handler until the context is cancelled.
type HttpWorker struct {
	Address string
	Handler http.Handler
}

func (w HttpWorker) String() string {
	return "http@" + w.Address
}

func (w HttpWorker) Start(ctx context.Context, ready chan<- struct{}) error {
	server := http.Server{
		Addr:    w.Address,
		Handler: w.Handler,
	}
	listener, err := net.Listen("tcp", w.Address)
	if err != nil {
		return err
	}
	slog.Info("http: server started listening", "address", w.Address)
	done := make(chan error, 1)
	go func() {
		ready <- struct{}{}
		done <- server.Serve(listener)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
