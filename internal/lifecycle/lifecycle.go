// Package lifecycle runs the HTTP listener and owns process shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
)

type State int32

const (
	Starting State = iota
	Serving
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Serving:
		return "serving"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Server is satisfied by *http.Server.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type closer struct {
	name string
	fn   func() error
}

type Controller struct {
	srv     Server
	timeout time.Duration
	log     *slog.Logger

	state atomic.Int32
	fatal chan error

	mu      sync.Mutex
	closers []closer
}

func New(srv Server, shutdownTimeout time.Duration, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		srv:     srv,
		timeout: shutdownTimeout,
		log:     log,
		fatal:   make(chan error, 1),
	}
}

// OnStop registers fn to run after the listener has drained, in registration order.
func (c *Controller) OnStop(name string, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, closer{name: name, fn: fn})
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

// Fatal asks the controller to drain and stop with a non-zero exit. Only the first call counts.
func (c *Controller) Fatal(err error) {
	select {
	case c.fatal <- err:
	default:
	}
}

// Run serves until ctx is done, Fatal is called or the listener fails, then drains.
// A cancelled ctx is a clean stop and yields nil.
func (c *Controller) Run(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- c.srv.ListenAndServe()
	}()
	c.state.Store(int32(Serving))
	c.log.Info("server_started")

	var cause error
	select {
	case <-ctx.Done():
		c.log.Info("shutdown_signal_received")
	case err := <-c.fatal:
		c.log.Error("fatal_process_error", "error", err)
		cause = apperr.Fatal(err)
	case err := <-listenErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			err = errors.New("listener stopped unexpectedly")
		}
		c.log.Error("listener_error", "error", err)
		cause = apperr.Fatal(err)
	}

	c.drain()
	return cause
}

func (c *Controller) drain() {
	c.state.Store(int32(Draining))

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.srv.Shutdown(ctx); err != nil {
		c.log.Error("server_shutdown_error", "error", err)
	}

	c.mu.Lock()
	closers := c.closers
	c.mu.Unlock()
	for _, cl := range closers {
		if err := cl.fn(); err != nil {
			c.log.Error("close_error", "resource", cl.name, "error", err)
		}
	}

	c.state.Store(int32(Stopped))
	c.log.Info("shutdown_complete")
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
