package router

import (
	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/events"
)

// Handler receives every inbound event. There is no per-code filtering at
// this layer: relevance (does this event concern me, did I originate it) is
// each handler's own business.
type Handler interface {
	HandleEvent(ev events.Routed)
}

// Router is the process-wide dispatch table. All access happens on the game
// tick goroutine, so there is no locking.
//
// Registration is idempotent by handler identity: registering the same
// handler twice delivers once, unregistering something never registered is a
// no-op. Dispatch runs handlers in registration order, and a panicking
// handler never prevents the rest of the pass from running.
type Router struct {
	log      *zap.Logger
	handlers []Handler
}

func New(log *zap.Logger) *Router {
	return &Router{log: log}
}

func (r *Router) Register(h Handler) {
	for _, existing := range r.handlers {
		if existing == h {
			return
		}
	}
	r.handlers = append(r.handlers, h)
}

func (r *Router) Unregister(h Handler) {
	for i, existing := range r.handlers {
		if existing == h {
			r.handlers = append(r.handlers[:i], r.handlers[i+1:]...)
			return
		}
	}
}

func (r *Router) Dispatch(ev events.Routed) {
	// Snapshot so a handler that unregisters itself mid-pass doesn't shift
	// the iteration under us.
	snapshot := make([]Handler, len(r.handlers))
	copy(snapshot, r.handlers)
	for _, h := range snapshot {
		r.invoke(h, ev)
	}
}

func (r *Router) invoke(h Handler, ev events.Routed) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panicked during dispatch",
				zap.Stringer("code", ev.Code),
				zap.Int("origin", ev.Origin),
				zap.Any("panic", rec))
		}
	}()
	h.HandleEvent(ev)
}

// Len reports how many handlers are registered. Used by status views.
func (r *Router) Len() int { return len(r.handlers) }
