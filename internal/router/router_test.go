package router

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/events"
)

type countingHandler struct {
	calls []events.Routed
}

func (h *countingHandler) HandleEvent(ev events.Routed) {
	h.calls = append(h.calls, ev)
}

type panickyHandler struct{}

func (panickyHandler) HandleEvent(events.Routed) { panic("boom") }

func testEvent() events.Routed {
	return events.Routed{Code: events.CodeCurrentTurnPlayer, Payload: events.CurrentTurn{ActorNumber: 2}, Origin: 1}
}

func TestRegisterTwiceDeliversOnce(t *testing.T) {
	r := New(zap.NewNop())
	h := &countingHandler{}

	r.Register(h)
	r.Register(h)
	r.Dispatch(testEvent())

	require.Len(t, h.calls, 1)
}

func TestUnregisterIsSafe(t *testing.T) {
	r := New(zap.NewNop())
	registered := &countingHandler{}
	never := &countingHandler{}

	r.Register(registered)
	r.Unregister(never) // never registered
	r.Unregister(never) // twice
	r.Dispatch(testEvent())

	require.Len(t, registered.calls, 1)
	require.Empty(t, never.calls)
}

func TestDispatchRunsInRegistrationOrder(t *testing.T) {
	r := New(zap.NewNop())
	var order []string

	for _, name := range []string{"a", "b", "c"} {
		name := name
		fn := handlerFunc(func(events.Routed) { order = append(order, name) })
		r.Register(&fn)
	}
	r.Dispatch(testEvent())

	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestPanickingHandlerDoesNotStopDispatch(t *testing.T) {
	r := New(zap.NewNop())
	after := &countingHandler{}

	r.Register(panickyHandler{})
	r.Register(after)
	r.Dispatch(testEvent())

	require.Len(t, after.calls, 1)
}

func TestHandlerSeesSameEventValue(t *testing.T) {
	r := New(zap.NewNop())
	a := &countingHandler{}
	b := &countingHandler{}
	r.Register(a)
	r.Register(b)

	ev := testEvent()
	r.Dispatch(ev)

	require.Equal(t, ev, a.calls[0])
	require.Equal(t, ev, b.calls[0])
}

// handlerFunc adapts a func to Handler for tests. Registered by pointer so
// each one has a distinct, comparable identity.
type handlerFunc func(events.Routed)

func (f *handlerFunc) HandleEvent(ev events.Routed) { (*f)(ev) }
