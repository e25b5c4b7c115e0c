// Package shutdown turns SIGINT and SIGTERM into context cancellation. Hooks
// registered with BeforeShutdown run first, while the returned context is still
// alive.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Hook releases one resource. Its context expires after the handler's wait period.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler owns the process context of a command.
type Handler struct {
	mu      sync.Mutex
	hooks   []namedHook
	wait    time.Duration
	signals chan os.Signal
	trigger chan struct{}
	once    sync.Once
	done    chan struct{}
}

// SetupHandler returns a context that is canceled after a signal arrives, Shutdown
// is called or parent ends. Hooks get at most wait to finish.
func SetupHandler(parent context.Context, wait time.Duration) (context.Context, *Handler) {
	h := &Handler{
		wait:    wait,
		signals: make(chan os.Signal, 1),
		trigger: make(chan struct{}),
		done:    make(chan struct{}),
	}

	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(parent)

	go func() {
		defer close(h.done)
		defer cancel()
		defer signal.Stop(h.signals)

		select {
		case sig := <-h.signals:
			slog.Warn("Received " + sig.String() + ", shutting down...")
		case <-h.trigger:
			slog.Info("Shutdown requested")
		case <-parent.Done():
		}

		h.runHooks(ctx)
	}()

	return ctx, h
}

// BeforeShutdown registers fn. Hooks run in reverse registration order.
func (h *Handler) BeforeShutdown(name string, fn Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hooks = append(h.hooks, namedHook{name: name, fn: fn})
}

// Shutdown starts the shutdown without a signal. It is safe to call more than once.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		close(h.trigger)
	})
}

// Done is closed once the hooks have run and the context is canceled.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) runHooks(ctx context.Context) {
	h.mu.Lock()
	hooks := h.hooks
	h.hooks = nil
	h.mu.Unlock()

	// The process context may already be gone when parent ended.
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.wait)
	defer cancel()

	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(hookCtx); err != nil {
			slog.Error("Shutdown hook failed", "hook", hooks[i].name, "error", err)
		}
	}
}
