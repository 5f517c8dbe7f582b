// Package snowball is the team snowball-fight mini-game. Movement is
// peer-reported and smoothed per entity; hits, lives, the clock, and the team
// score are decided by the master alone.
package snowball

import (
	"sort"

	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/entity"
	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/geo"
)

const (
	// GameDuration is the round length in seconds.
	GameDuration = 120.0

	MoveSpeed      = 200.0
	WindupDuration = 1.0
	StartLives     = 3

	projectileSpeed = 400.0
	projectileRange = 700.0
	hitRadius       = 24.0

	arenaHalfWidth  = 480.0
	arenaHalfHeight = 320.0

	moveSyncInterval  = 0.1 // 10 Hz
	timerSyncInterval = 1.0
)

// TeamA gathers odd actor numbers, TeamB even ones. Fixed by actor number so
// every client derives the same split with no extra wire traffic.
const (
	TeamA = "A"
	TeamB = "B"
)

func TeamOf(actor int) string {
	if actor%2 == 1 {
		return TeamA
	}
	return TeamB
}

type Sender interface {
	Send(code events.Code, payload events.Payload)
}

type Authority interface {
	IsMaster() bool
	ActorNumber() int
}

type projectile struct {
	owner    int
	team     string
	pos      geo.Vec2
	dir      geo.Vec2
	traveled float64
}

// Manager runs one snowball round on the game tick.
type Manager struct {
	log  *zap.Logger
	send Sender
	auth Authority

	local   *entity.Reconciler
	remotes map[int]*entity.Reconciler

	projectiles []*projectile

	input     geo.Vec2
	moveAcc   float64
	moveDirty bool

	teamA    int
	teamB    int
	timeLeft float64
	timerAcc float64
	finished bool
}

func NewManager(log *zap.Logger, send Sender, auth Authority) *Manager {
	return &Manager{
		log:     log,
		send:    send,
		auth:    auth,
		remotes: make(map[int]*entity.Reconciler),
	}
}

// Start resets the round. Teams line up on opposite edges, everyone on full
// lives.
func (m *Manager) Start(roster []events.PlayerRecord) {
	m.remotes = make(map[int]*entity.Reconciler)
	m.projectiles = nil
	m.teamA, m.teamB = 0, 0
	m.timeLeft = GameDuration
	m.timerAcc = 0
	m.finished = false

	local := m.auth.ActorNumber()
	slot := map[string]int{}
	sorted := append([]events.PlayerRecord(nil), roster...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ActorNumber < sorted[j].ActorNumber })

	for _, rec := range sorted {
		team := TeamOf(rec.ActorNumber)
		pos := spawnPoint(team, slot[team])
		slot[team]++

		r := entity.New(rec.ActorNumber, rec.Name, rec.ActorNumber == local, MoveSpeed, m.log,
			entity.WithLife(StartLives))
		r.SetPos(pos)
		if rec.ActorNumber == local {
			m.local = r
		} else {
			m.remotes[rec.ActorNumber] = r
		}
	}
}

func spawnPoint(team string, slot int) geo.Vec2 {
	x := -arenaHalfWidth + 60
	if team == TeamB {
		x = arenaHalfWidth - 60
	}
	return geo.V(x, -arenaHalfHeight+120+float64(slot)*160)
}

func (m *Manager) Finished() bool             { return m.finished }
func (m *Manager) ProjectileCount() int       { return len(m.projectiles) }
func (m *Manager) TimeLeft() float64          { return m.timeLeft }
func (m *Manager) Scores() (teamA, teamB int) { return m.teamA, m.teamB }
func (m *Manager) Local() *entity.Reconciler  { return m.local }

// Remote returns the reconciler for a remote participant.
func (m *Manager) Remote(actor int) (*entity.Reconciler, bool) {
	r, ok := m.remotes[actor]
	return r, ok
}

// SetInput records the local movement intent for this tick. The vector is
// normalized before use, so diagonals are not faster.
func (m *Manager) SetInput(dx, dy float64) {
	m.input = geo.V(dx, dy)
}

// StartWindup begins making a snowball. Movement stops for the duration and
// the ball is held once the windup completes.
func (m *Manager) StartWindup() bool {
	if m.finished || m.local == nil {
		return false
	}
	if m.local.StartWindup(WindupDuration) {
		m.moveDirty = true
		return true
	}
	return false
}

// CancelWindup aborts an unfinished windup.
func (m *Manager) CancelWindup() {
	if m.local != nil {
		m.local.CancelWindup()
		m.moveDirty = true
	}
}

// Throw releases the held snowball toward dir. The projectile itself spawns
// from the relay echo so every client runs the identical path.
func (m *Manager) Throw(dir geo.Vec2) bool {
	if m.finished || m.local == nil || dir.IsZero() {
		return false
	}
	if !m.local.ReleaseHold() {
		return false
	}
	m.moveDirty = true
	m.send.Send(events.CodePlayerThrowAction, events.ThrowAction{
		PlayerID: m.local.ID,
		Pos:      m.local.Pos(),
		Dir:      dir.Norm(),
		Team:     TeamOf(m.local.ID),
	})
	return true
}

// Tick advances the round by dt seconds.
func (m *Manager) Tick(dt float64) {
	if m.finished {
		return
	}

	m.tickLocal(dt)
	for _, r := range m.remotes {
		r.Tick(dt)
	}
	m.tickProjectiles(dt)

	if m.auth.IsMaster() {
		m.tickMaster(dt)
	}
}

func (m *Manager) tickLocal(dt float64) {
	if m.local == nil {
		return
	}
	m.local.Tick(dt)

	phase := m.local.Phase()
	if !m.input.IsZero() && (phase == entity.PhaseIdle || phase == entity.PhaseMoving || phase == entity.PhaseHolding) {
		step := m.input.Norm().Scale(m.local.EffectiveSpeed() * dt)
		m.local.SetPos(clampToArena(m.local.Pos().Add(step)))
		m.moveDirty = true
	}

	m.moveAcc += dt
	if m.moveDirty && m.moveAcc >= moveSyncInterval {
		m.moveAcc = 0
		m.moveDirty = false
		m.send.Send(events.CodePlayerMovement, events.PlayerMovement{
			PlayerID:  m.local.ID,
			To:        m.local.Pos(),
			InputDX:   m.input.X,
			InputDY:   m.input.Y,
			Holding:   m.local.Holding(),
			FaceRight: m.input.X >= 0,
		})
	}
}

func (m *Manager) tickProjectiles(dt float64) {
	alive := m.projectiles[:0]
	for _, p := range m.projectiles {
		step := projectileSpeed * dt
		p.pos = p.pos.Add(p.dir.Scale(step))
		p.traveled += step
		if p.traveled > projectileRange || outsideArena(p.pos) {
			continue
		}
		alive = append(alive, p)
	}
	m.projectiles = alive
}

func (m *Manager) tickMaster(dt float64) {
	m.resolveHits()

	m.timeLeft -= dt
	if m.timeLeft <= 0 {
		m.timeLeft = 0
		m.finished = true
		m.syncScore()
		m.syncTimer()
		return
	}

	m.timerAcc += dt
	if m.timerAcc >= timerSyncInterval {
		m.timerAcc = 0
		m.syncTimer()
	}
}

// resolveHits is master-only collision authority. A hit decrements the
// target's life, scores for the thrower's team, and is broadcast as the new
// absolute life total.
func (m *Manager) resolveHits() {
	for _, p := range m.projectiles {
		target := m.findHit(p)
		if target == nil {
			continue
		}
		p.traveled = projectileRange + 1 // consumed, culled next tick

		newLife := target.Life() - 1
		target.ApplyHit(newLife)
		if p.team == TeamA {
			m.teamA++
		} else {
			m.teamB++
		}
		m.send.Send(events.CodePlayerHitAction, events.HitAction{PlayerID: target.ID, NewLife: newLife})
		m.syncScore()
		m.log.Info("snowball hit",
			zap.Int("thrower", p.owner),
			zap.Int("target", target.ID),
			zap.Int("newLife", newLife))
	}
}

func (m *Manager) findHit(p *projectile) *entity.Reconciler {
	candidates := make([]*entity.Reconciler, 0, len(m.remotes)+1)
	if m.local != nil {
		candidates = append(candidates, m.local)
	}
	for _, r := range m.remotes {
		candidates = append(candidates, r)
	}
	for _, r := range candidates {
		if TeamOf(r.ID) == p.team || r.Life() <= 0 || r.Despawned() {
			continue
		}
		if r.Pos().Sub(p.pos).Len() <= hitRadius {
			return r
		}
	}
	return nil
}

func (m *Manager) syncTimer() {
	m.send.Send(events.CodeSendMessage, events.Message{Body: events.TimerSync{Remaining: m.timeLeft}})
}

func (m *Manager) syncScore() {
	m.send.Send(events.CodeSendMessage, events.Message{Body: events.TeamScoreSync{TeamA: m.teamA, TeamB: m.teamB}})
}

// HandleEvent implements router.Handler.
func (m *Manager) HandleEvent(ev events.Routed) {
	switch p := ev.Payload.(type) {
	case events.PlayerMovement:
		m.applyMovement(p, ev.Origin)

	case events.ThrowAction:
		m.projectiles = append(m.projectiles, &projectile{
			owner: p.PlayerID,
			team:  p.Team,
			pos:   p.Pos,
			dir:   p.Dir,
		})

	case events.HitAction:
		m.applyHit(p, ev.Origin)

	case events.Message:
		m.applyMessage(p)
	}
}

func (m *Manager) applyMovement(p events.PlayerMovement, origin int) {
	if m.local != nil && p.PlayerID == m.local.ID {
		return // echo of our own report
	}
	r, ok := m.remotes[p.PlayerID]
	if !ok {
		m.log.Warn("movement for unknown entity dropped",
			zap.Int("player", p.PlayerID),
			zap.Int("origin", origin))
		return
	}
	r.ApplyRemoteMove(p.To, geo.V(p.InputDX, p.InputDY), p.Holding, p.FaceRight)
}

func (m *Manager) applyHit(p events.HitAction, origin int) {
	// The master already applied its own hit before broadcasting.
	if m.auth.IsMaster() {
		return
	}
	if m.local != nil && p.PlayerID == m.local.ID {
		m.local.ApplyHit(p.NewLife)
		return
	}
	if r, ok := m.remotes[p.PlayerID]; ok {
		r.ApplyHit(p.NewLife)
		return
	}
	m.log.Warn("hit for unknown entity dropped",
		zap.Int("player", p.PlayerID),
		zap.Int("origin", origin))
}

func (m *Manager) applyMessage(msg events.Message) {
	if m.auth.IsMaster() {
		return // masters are the source of these broadcasts
	}
	switch b := msg.Body.(type) {
	case events.TimerSync:
		m.timeLeft = b.Remaining
		if m.timeLeft <= 0 {
			m.finished = true
		}
	case events.TeamScoreSync:
		m.teamA, m.teamB = b.TeamA, b.TeamB
	}
}

func clampToArena(p geo.Vec2) geo.Vec2 {
	if p.X < -arenaHalfWidth {
		p.X = -arenaHalfWidth
	}
	if p.X > arenaHalfWidth {
		p.X = arenaHalfWidth
	}
	if p.Y < -arenaHalfHeight {
		p.Y = -arenaHalfHeight
	}
	if p.Y > arenaHalfHeight {
		p.Y = arenaHalfHeight
	}
	return p
}

func outsideArena(p geo.Vec2) bool {
	return p.X < -arenaHalfWidth || p.X > arenaHalfWidth ||
		p.Y < -arenaHalfHeight || p.Y > arenaHalfHeight
}
