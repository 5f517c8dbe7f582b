// Package entity reconciles routed events into per-entity simulation state.
//
// One Reconciler exists per movable entity: the local player's token, each
// remote player, and mini-game actors. The authoritative side drives position
// through a waypoint buffer consumed tick by tick; the remote side smooths
// reported positions with a short tween and drives facing/animation from the
// last reported intent vector, because positional deltas are quantized over
// the network while intent is exact.
package entity

import (
	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/geo"
)

// Phase is the entity's discrete state tag.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMoving
	PhaseWindup  // timed action in progress (e.g. making a snowball)
	PhaseHolding // holding the made resource
	PhaseFrozen  // permanent until scene end
	PhaseDespawned
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMoving:
		return "moving"
	case PhaseWindup:
		return "windup"
	case PhaseHolding:
		return "holding"
	case PhaseFrozen:
		return "frozen"
	case PhaseDespawned:
		return "despawned"
	default:
		return "unknown"
	}
}

// remoteTweenDuration smooths remote position reports instead of
// teleporting.
const remoteTweenDuration = 0.1

type tween struct {
	from, to geo.Vec2
	elapsed  float64
}

// Reconciler holds one entity's simulation state.
type Reconciler struct {
	ID     int
	Name   string
	Local  bool
	Speed  float64
	log    *zap.Logger
	pos    geo.Vec2
	phase  Phase
	buffer []geo.Vec2
	cursor int

	intent    geo.Vec2
	faceRight bool
	holding   bool

	tw *tween

	windupLeft float64

	life      int
	slowLeft  float64
	slowSpeed float64

	onArrive func()
}

type Option func(*Reconciler)

// WithArrival registers the callback fired when the waypoint buffer drains.
// Fired at most once per buffer, deterministically on the tick the final
// waypoint is reached.
func WithArrival(fn func()) Option {
	return func(r *Reconciler) { r.onArrive = fn }
}

func WithLife(life int) Option {
	return func(r *Reconciler) { r.life = life }
}

func New(id int, name string, local bool, speed float64, log *zap.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		ID:        id,
		Name:      name,
		Local:     local,
		Speed:     speed,
		log:       log,
		faceRight: true,
		life:      -1, // no hit points unless WithLife
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Pos() geo.Vec2     { return r.pos }
func (r *Reconciler) Phase() Phase      { return r.phase }
func (r *Reconciler) Intent() geo.Vec2  { return r.intent }
func (r *Reconciler) FaceRight() bool   { return r.faceRight }
func (r *Reconciler) Holding() bool     { return r.holding }
func (r *Reconciler) Life() int         { return r.life }
func (r *Reconciler) Slowed() bool      { return r.slowLeft > 0 }
func (r *Reconciler) Despawned() bool   { return r.phase == PhaseDespawned }
func (r *Reconciler) BufferLen() int    { return len(r.buffer) - r.cursor }

// SetPos places the entity without any interpolation. Spawn placement only.
func (r *Reconciler) SetPos(p geo.Vec2) { r.pos = p }

// SetPath replaces the waypoint buffer. A non-empty path puts the entity in
// PhaseMoving; an empty one clears any pending movement back to PhaseIdle.
func (r *Reconciler) SetPath(path []geo.Vec2) {
	if r.phase == PhaseFrozen || r.phase == PhaseDespawned {
		return
	}
	if len(path) == 0 {
		r.buffer = nil
		r.cursor = 0
		if r.phase == PhaseMoving {
			r.phase = PhaseIdle
		}
		return
	}
	r.buffer = make([]geo.Vec2, len(path))
	copy(r.buffer, path)
	r.cursor = 0
	r.phase = PhaseMoving
}

// ApplyRemoteMove reconciles a PLAYER_MOVEMENT report for a non-local entity.
// Position converges via a short tween; facing and the moving/idle phase come
// from the intent vector, never from the positional delta.
func (r *Reconciler) ApplyRemoteMove(to geo.Vec2, intent geo.Vec2, holding, faceRight bool) {
	if r.phase == PhaseFrozen || r.phase == PhaseDespawned {
		return
	}
	r.tw = &tween{from: r.pos, to: to}
	r.intent = intent
	r.holding = holding
	r.faceRight = faceRight
	if intent.IsZero() {
		if r.phase == PhaseMoving {
			r.phase = PhaseIdle
		}
	} else {
		r.phase = PhaseMoving
	}
}

// StartWindup begins a timed action lasting d seconds. Only valid from Idle
// or Moving; movement is suspended for the duration.
func (r *Reconciler) StartWindup(d float64) bool {
	if r.phase != PhaseIdle && r.phase != PhaseMoving {
		return false
	}
	r.phase = PhaseWindup
	r.windupLeft = d
	return true
}

// CancelWindup aborts an in-progress windup (key released early).
func (r *Reconciler) CancelWindup() {
	if r.phase == PhaseWindup {
		r.phase = PhaseIdle
		r.windupLeft = 0
	}
}

// ReleaseHold throws/releases the held resource.
func (r *Reconciler) ReleaseHold() bool {
	if r.phase != PhaseHolding {
		return false
	}
	r.holding = false
	r.phase = PhaseIdle
	return true
}

// ApplyHit sets the authoritative life total. Zero freezes the entity
// permanently; there is no thaw.
func (r *Reconciler) ApplyHit(newLife int) {
	if r.phase == PhaseDespawned {
		return
	}
	if newLife < 0 {
		newLife = 0
	}
	r.life = newLife
	r.slowLeft = hitSlowDuration
	if r.life == 0 {
		r.phase = PhaseFrozen
		r.buffer = nil
		r.cursor = 0
		r.intent = geo.Vec2{}
	}
}

// Despawn is terminal.
func (r *Reconciler) Despawn() {
	r.phase = PhaseDespawned
	r.buffer = nil
	r.cursor = 0
	r.tw = nil
}

const (
	hitSlowDuration = 2.0
	hitSlowFactor   = 0.4 // 200 px/s drops to 80
)

// EffectiveSpeed accounts for the post-hit slow.
func (r *Reconciler) EffectiveSpeed() float64 {
	if r.slowLeft > 0 {
		return r.Speed * hitSlowFactor
	}
	return r.Speed
}

// Tick advances the entity by dt seconds.
func (r *Reconciler) Tick(dt float64) {
	switch r.phase {
	case PhaseFrozen, PhaseDespawned:
		return
	case PhaseWindup:
		r.windupLeft -= dt
		if r.windupLeft <= 0 {
			r.windupLeft = 0
			r.holding = true
			r.phase = PhaseHolding
		}
		return
	}

	if r.slowLeft > 0 {
		r.slowLeft -= dt
	}

	if r.tw != nil {
		r.tickTween(dt)
	}
	if r.cursor < len(r.buffer) {
		r.tickBuffer(dt)
	}
}

func (r *Reconciler) tickTween(dt float64) {
	r.tw.elapsed += dt
	if r.tw.elapsed >= remoteTweenDuration {
		r.pos = r.tw.to
		r.tw = nil
		return
	}
	t := r.tw.elapsed / remoteTweenDuration
	delta := r.tw.to.Sub(r.tw.from)
	r.pos = r.tw.from.Add(delta.Scale(t))
}

// tickBuffer consumes the head waypoint. Progress per tick is bounded by
// speed*dt, and the final step snaps exactly onto the waypoint so arrival
// events fire deterministically with no drift.
func (r *Reconciler) tickBuffer(dt float64) {
	target := r.buffer[r.cursor]
	delta := target.Sub(r.pos)
	remaining := delta.Len()
	step := r.EffectiveSpeed() * dt

	if delta.X > 0 {
		r.faceRight = true
	} else if delta.X < 0 {
		r.faceRight = false
	}

	if step >= remaining {
		r.pos = target
		r.cursor++
		if r.cursor >= len(r.buffer) {
			r.buffer = nil
			r.cursor = 0
			r.phase = PhaseIdle
			if r.onArrive != nil {
				r.onArrive()
			}
		}
		return
	}
	r.pos = r.pos.Add(delta.Norm().Scale(step))
}
