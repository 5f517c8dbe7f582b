// Package authority decides which room participant is the master client.
//
// Convention: the lowest actor number in the roster is master. That is the
// room creator (actor 1) in the common case, and it gives a defined
// re-election rule when the master disconnects: the next-lowest surviving
// actor takes over as soon as the roster reflects the leave. Authority is
// derived from a roster snapshot at each decision point, never cached.
package authority

// RosterView is the slice of the transport session that authority needs.
// Both methods must reflect the same roster snapshot.
type RosterView interface {
	ActorNumber() int
	ActorNumbers() []int
}

type Coordinator struct {
	view RosterView
}

func New(view RosterView) *Coordinator {
	return &Coordinator{view: view}
}

// Master returns the master's actor number for a roster snapshot, or -1 for
// an empty roster.
func Master(actors []int) int {
	master := -1
	for _, a := range actors {
		if a < 0 {
			continue
		}
		if master == -1 || a < master {
			master = a
		}
	}
	return master
}

func (c *Coordinator) IsMaster() bool {
	local := c.view.ActorNumber()
	if local < 0 {
		return false
	}
	return Master(c.view.ActorNumbers()) == local
}

func (c *Coordinator) MasterActor() int {
	return Master(c.view.ActorNumbers())
}

func (c *Coordinator) ActorNumber() int {
	return c.view.ActorNumber()
}

// ActorNumbers exposes the underlying roster snapshot for callers that walk
// the turn order.
func (c *Coordinator) ActorNumbers() []int {
	return c.view.ActorNumbers()
}
