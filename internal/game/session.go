// Package game is the composition root: it owns the relay session, the event
// router, the authority coordinator, the board game, and the mini-game
// managers, and drives them all from a single tick loop. Every collaborator
// gets its dependencies handed in here; nothing reaches for a global.
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/authority"
	"github.com/partyboard/partyboard/internal/board"
	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/minigame/balloon"
	"github.com/partyboard/partyboard/internal/minigame/snowball"
	"github.com/partyboard/partyboard/internal/relay"
	"github.com/partyboard/partyboard/internal/router"
)

// Scene is which simulation currently consumes the tick.
type Scene string

const (
	SceneBoard    Scene = "board"
	SceneBalloon  Scene = "balloon"
	SceneSnowball Scene = "snowball"
)

type Config struct {
	Relay          relay.Config
	Region         string
	Avatar         events.Avatar
	TickHz         int
	PlayersToStart int
}

// chatLogCap bounds the in-memory chat history.
const chatLogCap = 50

// ChatLine is one received chat message.
type ChatLine struct {
	Actor   int    `json:"actor"`
	Content string `json:"content"`
}

// Session ties one process's full game state together.
//
// All game state mutates on the Run loop; mu exists only because the debug
// HTTP endpoints read the same state from their own goroutine. Dispatch and
// tick hold it for the duration of a pass, the read accessors for a snapshot.
type Session struct {
	cfg Config
	log *zap.Logger

	relay    *relay.Session
	router   *router.Router
	auth     *authority.Coordinator
	board    *board.Game
	balloon  *balloon.Manager
	snowball *snowball.Manager

	mu      sync.Mutex
	scene   Scene
	started bool
	chat    []ChatLine
}

func New(cfg Config, log *zap.Logger, dial relay.Dialer) *Session {
	if cfg.TickHz <= 0 {
		cfg.TickHz = 60
	}
	if cfg.PlayersToStart <= 0 {
		cfg.PlayersToStart = 4
	}

	s := &Session{
		cfg:   cfg,
		log:   log,
		scene: SceneBoard,
	}
	s.relay = relay.NewSession(cfg.Relay, log.Named("relay"), dial)
	s.router = router.New(log.Named("router"))
	s.auth = authority.New(s.relay)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s.board = board.NewGame(log.Named("board"), s.relay, s.auth, rng)
	s.board.OnEnterMiniGame = s.enterMiniGame
	s.balloon = balloon.NewManager(log.Named("balloon"), s.relay, s.auth, rng)
	s.snowball = snowball.NewManager(log.Named("snowball"), s.relay, s.auth)

	// The session itself watches for the start signal; the board and the
	// mini-games see the same stream through the same router.
	s.router.Register(s)
	s.router.Register(s.board)
	return s
}

// Run connects, joins the configured room, and drives the tick loop until ctx
// ends.
func (s *Session) Run(ctx context.Context) error {
	if err := s.relay.Connect(ctx, s.cfg.Region); err != nil {
		return err
	}
	if err := s.relay.AwaitJoined(ctx); err != nil {
		return err
	}
	s.board.AnnounceLocal(s.cfg.Relay.DisplayName, s.cfg.Avatar)
	s.relay.Send(events.CodePlayerMapJoined, events.PlayerMapJoined{ActorNumber: s.relay.ActorNumber()})

	dt := 1.0 / float64(s.cfg.TickHz)
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()
	defer s.relay.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.relay.Events():
			s.dispatch(ev)
		case <-ticker.C:
			s.tick(dt)
		}
	}
}

func (s *Session) dispatch(ev events.Routed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router.Dispatch(ev)
}

// HandleEvent implements router.Handler for session-level concerns. Runs
// under the dispatch lock.
func (s *Session) HandleEvent(ev events.Routed) {
	switch p := ev.Payload.(type) {
	case events.StartGame:
		s.started = true
	case events.Message:
		if chat, ok := p.Body.(events.Chat); ok {
			s.chat = append(s.chat, ChatLine{Actor: ev.Origin, Content: chat.Content})
			if len(s.chat) > chatLogCap {
				s.chat = s.chat[len(s.chat)-chatLogCap:]
			}
			s.log.Info("chat", zap.Int("from", ev.Origin), zap.String("content", chat.Content))
		}
	}
}

func (s *Session) tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeStart()

	switch s.scene {
	case SceneBoard:
		s.board.Tick(dt)
	case SceneBalloon:
		s.balloon.Tick(dt)
		if s.balloon.Finished() {
			s.leaveMiniGame(s.balloon)
		}
	case SceneSnowball:
		s.snowball.Tick(dt)
		if s.snowball.Finished() {
			s.leaveMiniGame(s.snowball)
		}
	}
}

// maybeStart has the master fire the start signal once the room fills. The
// session's own started flag flips when the echo comes back, same as for
// every other participant.
func (s *Session) maybeStart() {
	if s.started || !s.auth.IsMaster() {
		return
	}
	if len(s.relay.ActorNumbers()) < s.cfg.PlayersToStart {
		return
	}
	s.started = true
	s.log.Info("room full, starting game", zap.Int("players", s.cfg.PlayersToStart))
	s.relay.Send(events.CodeStartGame, events.StartGame{})
}

func (s *Session) enterMiniGame(game string) {
	roster := s.board.Records()
	switch game {
	case "balloon":
		s.balloon.Start(roster)
		s.router.Register(s.balloon)
		s.scene = SceneBalloon
	case "snowball":
		s.snowball.Start(roster)
		s.router.Register(s.snowball)
		s.scene = SceneSnowball
	default:
		s.log.Warn("unknown mini-game ignored", zap.String("game", game))
		return
	}
	s.log.Info("entering mini-game", zap.String("game", game))
}

func (s *Session) leaveMiniGame(h router.Handler) {
	s.router.Unregister(h)
	s.scene = SceneBoard
	s.log.Info("mini-game over, back to the board")
}

// Chat broadcasts a chat line to the room.
func (s *Session) Chat(text string) {
	s.relay.Send(events.CodeSendMessage, events.Message{Body: events.Chat{Content: text}})
}

// RollDice forwards the local player's roll input to the board game.
func (s *Session) RollDice() (int, error) {
	return s.board.RollDice(1)
}

// Status is a point-in-time view for the debug endpoints.
type Status struct {
	State       string `json:"state"`
	ActorNumber int    `json:"actorNumber"`
	MasterActor int    `json:"masterActor"`
	IsMaster    bool   `json:"isMaster"`
	Scene       Scene  `json:"scene"`
	Phase       string `json:"phase"`
	Round       int    `json:"round"`
	Started     bool   `json:"started"`
	Handlers    int    `json:"handlers"`
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:       s.relay.State().String(),
		ActorNumber: s.relay.ActorNumber(),
		MasterActor: s.auth.MasterActor(),
		IsMaster:    s.auth.IsMaster(),
		Scene:       s.scene,
		Phase:       s.board.Phase().String(),
		Round:       s.board.Round(),
		Started:     s.started,
		Handlers:    s.router.Len(),
	}
}

// Roster reads through the relay session, which carries its own lock.
func (s *Session) Roster() []relay.Actor { return s.relay.Roster() }

func (s *Session) Records() []events.PlayerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Records()
}

func (s *Session) BalloonScores() []events.ScoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balloon.Scores()
}

// ChatLog returns the received chat history, oldest first.
func (s *Session) ChatLog() []ChatLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatLine, len(s.chat))
	copy(out, s.chat)
	return out
}
