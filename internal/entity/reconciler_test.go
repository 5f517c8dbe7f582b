package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/geo"
)

const dt = 1.0 / 60.0

func newToken(t *testing.T, opts ...Option) *Reconciler {
	t.Helper()
	return New(1, "token", true, 100, zap.NewNop(), opts...)
}

func TestBufferExactArrival(t *testing.T) {
	arrived := 0
	r := newToken(t, WithArrival(func() { arrived++ }))
	r.SetPath([]geo.Vec2{geo.V(10, 0), geo.V(10, 10)})
	require.Equal(t, PhaseMoving, r.Phase())

	for i := 0; i < 60 && r.Phase() == PhaseMoving; i++ {
		r.Tick(dt)

		// Never overshoot: position stays within the path's bounding box.
		p := r.Pos()
		require.LessOrEqual(t, p.X, 10.0)
		require.LessOrEqual(t, p.Y, 10.0)
	}

	require.Equal(t, PhaseIdle, r.Phase())
	require.Equal(t, geo.V(10, 10), r.Pos(), "final waypoint snaps exactly")
	require.Zero(t, r.BufferLen())
	require.Equal(t, 1, arrived)
}

func TestBufferStepBoundedBySpeed(t *testing.T) {
	r := newToken(t)
	r.SetPath([]geo.Vec2{geo.V(1000, 0)})

	prev := r.Pos()
	for i := 0; i < 30; i++ {
		r.Tick(dt)
		moved := r.Pos().Sub(prev).Len()
		require.LessOrEqual(t, moved, r.Speed*dt+1e-9)
		prev = r.Pos()
	}
}

func TestEmptyPathGoesIdle(t *testing.T) {
	r := newToken(t)
	r.SetPath([]geo.Vec2{geo.V(5, 0)})
	require.Equal(t, PhaseMoving, r.Phase())

	r.SetPath(nil)
	require.Equal(t, PhaseIdle, r.Phase())
	require.Zero(t, r.BufferLen())
}

func TestRemoteMoveTweensNotTeleports(t *testing.T) {
	r := New(2, "remote", false, 200, zap.NewNop())
	r.ApplyRemoteMove(geo.V(100, 0), geo.V(1, 0), false, true)

	r.Tick(dt)
	require.Greater(t, r.Pos().X, 0.0)
	require.Less(t, r.Pos().X, 100.0, "no instant teleport")

	// After the full tween duration the reported position is reached.
	for i := 0; i < 10; i++ {
		r.Tick(dt)
	}
	require.Equal(t, geo.V(100, 0), r.Pos())
}

func TestRemoteIntentDrivesPhaseAndFacing(t *testing.T) {
	r := New(2, "remote", false, 200, zap.NewNop())

	r.ApplyRemoteMove(geo.V(10, 0), geo.V(-1, 0), false, false)
	require.Equal(t, PhaseMoving, r.Phase())
	require.False(t, r.FaceRight())

	// Zero intent means idle, even though a positional correction is still
	// tweening in.
	r.ApplyRemoteMove(geo.V(12, 0), geo.Vec2{}, false, false)
	require.Equal(t, PhaseIdle, r.Phase())
}

func TestWindupCompletesIntoHolding(t *testing.T) {
	r := newToken(t)
	require.True(t, r.StartWindup(1.0))
	require.Equal(t, PhaseWindup, r.Phase())

	for i := 0; i < 59; i++ {
		r.Tick(dt)
	}
	require.Equal(t, PhaseWindup, r.Phase())
	r.Tick(dt)
	r.Tick(dt)
	require.Equal(t, PhaseHolding, r.Phase())
	require.True(t, r.Holding())

	require.True(t, r.ReleaseHold())
	require.Equal(t, PhaseIdle, r.Phase())
	require.False(t, r.Holding())
}

func TestCancelWindup(t *testing.T) {
	r := newToken(t)
	require.True(t, r.StartWindup(1.0))
	r.CancelWindup()
	require.Equal(t, PhaseIdle, r.Phase())
}

func TestZeroLifeFreezesPermanently(t *testing.T) {
	r := newToken(t, WithLife(3))
	r.ApplyHit(1)
	require.Equal(t, 1, r.Life())
	require.True(t, r.Slowed())
	require.NotEqual(t, PhaseFrozen, r.Phase())

	r.ApplyHit(0)
	require.Equal(t, PhaseFrozen, r.Phase())

	// No transition out: movement and ticking are ignored.
	r.SetPath([]geo.Vec2{geo.V(50, 50)})
	r.Tick(dt)
	require.Equal(t, PhaseFrozen, r.Phase())
	require.Equal(t, geo.Vec2{}, r.Pos())
}

func TestDespawnIsTerminal(t *testing.T) {
	r := newToken(t)
	r.Despawn()
	require.True(t, r.Despawned())

	r.SetPath([]geo.Vec2{geo.V(1, 1)})
	r.ApplyRemoteMove(geo.V(2, 2), geo.V(1, 0), false, true)
	r.Tick(dt)
	require.True(t, r.Despawned())
	require.Equal(t, geo.Vec2{}, r.Pos())
}

func TestSlowReducesEffectiveSpeed(t *testing.T) {
	r := newToken(t, WithLife(3))
	require.Equal(t, 100.0, r.EffectiveSpeed())
	r.ApplyHit(2)
	require.Equal(t, 40.0, r.EffectiveSpeed())

	// Slow wears off after its duration.
	for i := 0; i < 125; i++ {
		r.Tick(dt)
	}
	require.Equal(t, 100.0, r.EffectiveSpeed())
}
