// Package balloon is the balloon-popping mini-game. The master spawns
// balloons and owns the scoreboard; every other participant mirrors spawns
// exactly and treats score broadcasts as snapshot-replace.
package balloon

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/geo"
)

const (
	// GameDuration is the round length in seconds.
	GameDuration = 60.0

	spawnInterval = 0.75
	spawnChance   = 0.8

	// Spawn field: balloons enter at the bottom edge and despawn past the top.
	fieldHalfWidth = 300.0
	spawnY         = -300.0
	despawnY       = 340.0

	minRiseSpeed = 60.0
	maxRiseSpeed = 120.0

	cursorSyncInterval = 0.1 // 10 Hz
	scoreSyncInterval  = 5.0
)

// Balloon is one live balloon. Fields come verbatim from the spawn event so
// every client simulates the identical balloon.
type Balloon struct {
	ID    string
	Pos   geo.Vec2
	Rule  events.RewardRule
	Key   events.KeyCode
	Speed float64
}

type Sender interface {
	Send(code events.Code, payload events.Payload)
}

type Authority interface {
	IsMaster() bool
	ActorNumber() int
}

type score struct {
	name  string
	total int
}

// Manager runs one balloon round on the game tick.
type Manager struct {
	log  *zap.Logger
	send Sender
	auth Authority
	rng  *rand.Rand

	balloons map[string]*Balloon
	scores   map[int]*score
	cursors  map[int]geo.Vec2

	localCursor geo.Vec2
	cursorDirty bool

	counter   int
	timeLeft  float64
	spawnAcc  float64
	cursorAcc float64
	scoreAcc  float64
	finished  bool
}

func NewManager(log *zap.Logger, send Sender, auth Authority, rng *rand.Rand) *Manager {
	return &Manager{
		log:      log,
		send:     send,
		auth:     auth,
		rng:      rng,
		balloons: make(map[string]*Balloon),
		scores:   make(map[int]*score),
		cursors:  make(map[int]geo.Vec2),
	}
}

// Start resets the round for the given roster. Everyone opens at zero.
func (m *Manager) Start(roster []events.PlayerRecord) {
	m.balloons = make(map[string]*Balloon)
	m.scores = make(map[int]*score)
	for _, rec := range roster {
		m.scores[rec.ActorNumber] = &score{name: rec.Name}
	}
	m.timeLeft = GameDuration
	m.spawnAcc = 0
	m.scoreAcc = 0
	m.finished = false
}

func (m *Manager) Finished() bool    { return m.finished }
func (m *Manager) TimeLeft() float64 { return m.timeLeft }
func (m *Manager) BalloonCount() int { return len(m.balloons) }

// Balloon returns the live balloon by id.
func (m *Manager) Balloon(id string) (Balloon, bool) {
	b, ok := m.balloons[id]
	if !ok {
		return Balloon{}, false
	}
	return *b, true
}

// Scores returns the scoreboard sorted by actor number.
func (m *Manager) Scores() []events.ScoreEntry {
	out := make([]events.ScoreEntry, 0, len(m.scores))
	for actor, s := range m.scores {
		out = append(out, events.ScoreEntry{ActorNumber: actor, Name: s.name, Score: s.total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorNumber < out[j].ActorNumber })
	return out
}

// Cursor returns the last reported cursor of a remote participant.
func (m *Manager) Cursor(actor int) (geo.Vec2, bool) {
	c, ok := m.cursors[actor]
	return c, ok
}

// MoveCursor records the local aim point. Broadcast is throttled on the tick.
func (m *Manager) MoveCursor(pos geo.Vec2) {
	m.localCursor = pos
	m.cursorDirty = true
}

// AttemptPop sends a pop attempt for the balloon the local cursor is over.
// Nothing pops until the master confirms.
func (m *Manager) AttemptPop(id string, key events.KeyCode) {
	if m.finished {
		return
	}
	m.send.Send(events.CodeBalloonPopAttempt, events.BalloonPopAttempt{
		ID:       id,
		PlayerID: m.auth.ActorNumber(),
		Key:      key,
	})
}

// Tick advances the round by dt seconds.
func (m *Manager) Tick(dt float64) {
	if m.finished {
		return
	}

	for id, b := range m.balloons {
		b.Pos.Y += b.Speed * dt
		if b.Pos.Y > despawnY {
			// Drifted off the top: gone everywhere, no event needed since the
			// simulation is identical on every client.
			delete(m.balloons, id)
		}
	}

	m.cursorAcc += dt
	if m.cursorDirty && m.cursorAcc >= cursorSyncInterval {
		m.cursorAcc = 0
		m.cursorDirty = false
		m.send.Send(events.CodeBalloonCursorMove, events.BalloonCursorMove{Pos: m.localCursor})
	}

	if m.auth.IsMaster() {
		m.tickMaster(dt)
	}
}

func (m *Manager) tickMaster(dt float64) {
	m.timeLeft -= dt
	if m.timeLeft <= 0 {
		m.timeLeft = 0
		m.finished = true
		m.send.Send(events.CodeBalloonGameOver, events.BalloonGameOver{FinalScores: m.Scores()})
		return
	}

	m.scoreAcc += dt
	if m.scoreAcc >= scoreSyncInterval {
		m.scoreAcc = 0
		m.send.Send(events.CodeBalloonScoreUpdate, events.BalloonScoreUpdate{Scores: m.Scores()})
	}

	m.spawnAcc += dt
	for m.spawnAcc >= spawnInterval {
		m.spawnAcc -= spawnInterval
		if m.rng.Float64() >= spawnChance {
			continue
		}
		m.spawn()
	}
}

func (m *Manager) spawn() {
	id := fmt.Sprintf("b%d_%d", m.auth.ActorNumber(), m.counter)
	m.counter++
	keys := []events.KeyCode{events.KeyUp, events.KeyDown, events.KeyLeft, events.KeyRight}

	spawn := events.BalloonSpawn{
		ID:    id,
		Pos:   geo.V((m.rng.Float64()*2-1)*fieldHalfWidth, spawnY),
		Rule:  m.rollRule(),
		Key:   keys[m.rng.Intn(len(keys))],
		Speed: minRiseSpeed + m.rng.Float64()*(maxRiseSpeed-minRiseSpeed),
	}
	// The master's own copy materializes from the relay echo, same path as
	// everyone else's.
	m.send.Send(events.CodeBalloonSpawn, spawn)
}

// rollRule weights the reward table toward plain additions. Multiplicative
// rules stay small because they act on the running total.
func (m *Manager) rollRule() events.RewardRule {
	switch m.rng.Intn(10) {
	case 0:
		return events.RewardRule{Op: events.OpMultiply, Value: 2}
	case 1:
		return events.RewardRule{Op: events.OpDivide, Value: 2}
	case 2, 3:
		return events.RewardRule{Op: events.OpSubtract, Value: 10 + m.rng.Intn(2)*10}
	default:
		return events.RewardRule{Op: events.OpAdd, Value: 10 + m.rng.Intn(4)*10}
	}
}

// HandleEvent implements router.Handler.
func (m *Manager) HandleEvent(ev events.Routed) {
	switch p := ev.Payload.(type) {
	case events.BalloonSpawn:
		m.balloons[p.ID] = &Balloon{ID: p.ID, Pos: p.Pos, Rule: p.Rule, Key: p.Key, Speed: p.Speed}

	case events.BalloonPopAttempt:
		if m.auth.IsMaster() {
			m.masterResolvePop(p)
		}

	case events.BalloonPopped:
		m.applyPopped(p)

	case events.BalloonScoreUpdate:
		m.replaceScores(p.Scores)

	case events.BalloonGameOver:
		m.replaceScores(p.FinalScores)
		m.finished = true

	case events.BalloonCursorMove:
		if ev.Origin != m.auth.ActorNumber() {
			m.cursors[ev.Origin] = p.Pos
		}
	}
}

// masterResolvePop validates a pop attempt against the authoritative balloon
// set. Late attempts against an already-popped balloon lose silently.
func (m *Manager) masterResolvePop(p events.BalloonPopAttempt) {
	b, ok := m.balloons[p.ID]
	if !ok {
		m.log.Debug("pop attempt for missing balloon", zap.String("id", p.ID), zap.Int("player", p.PlayerID))
		return
	}
	if p.Key != b.Key {
		return
	}
	s, ok := m.scores[p.PlayerID]
	if !ok {
		m.log.Warn("pop attempt from unknown player dropped", zap.Int("player", p.PlayerID))
		return
	}

	total, awarded := b.Rule.Apply(s.total)
	s.total = total
	delete(m.balloons, p.ID)

	m.send.Send(events.CodeBalloonPopped, events.BalloonPopped{
		ID:            p.ID,
		PlayerID:      p.PlayerID,
		ScoreAwarded:  awarded,
		NewScoreTotal: total,
		UpdatedScores: m.Scores(),
	})
}

// applyPopped despawns the balloon exactly once and snapshot-replaces the
// scoreboard.
func (m *Manager) applyPopped(p events.BalloonPopped) {
	if _, live := m.balloons[p.ID]; live {
		delete(m.balloons, p.ID)
	}
	m.replaceScores(p.UpdatedScores)
}

func (m *Manager) replaceScores(entries []events.ScoreEntry) {
	fresh := make(map[int]*score, len(entries))
	for _, e := range entries {
		fresh[e.ActorNumber] = &score{name: e.Name, total: e.Score}
	}
	m.scores = fresh
}
