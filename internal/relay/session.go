// Package relay owns the connection to the third-party relay service: the
// linear connect state machine, outbound sends, and the inbound event stream.
//
// The relay forwards every raised event to all room participants including
// the sender, so consumers filter self-originated events by comparing
// Routed.Origin to the local actor number. Delivery is best effort; there is
// no acknowledgment or retry.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/events"
)

// State is the session connection state. Transitions are strictly linear:
// Disconnected → ConnectingToRelay → ConnectedToRelay → JoinedLobby →
// JoinedRoom. No transition skips a state.
type State int

const (
	StateDisconnected State = iota
	StateConnectingToRelay
	StateConnectedToRelay
	StateJoinedLobby
	StateJoinedRoom
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnectingToRelay:
		return "ConnectingToRelay"
	case StateConnectedToRelay:
		return "ConnectedToRelay"
	case StateJoinedLobby:
		return "JoinedLobby"
	case StateJoinedRoom:
		return "JoinedRoom"
	default:
		return "Unknown"
	}
}

var ErrNotJoined = errors.New("not joined to a room")

// Config for one session.
type Config struct {
	URL         string
	Room        string
	MaxPlayers  int
	DisplayName string
}

// Session is one connected process's view of the relay. A process holds a
// single Session for its lifetime.
//
// The small mutex guards state, actor number, and roster, which the read
// goroutine writes and status views read. Game logic consumes Events() on
// its own tick and never touches session internals concurrently.
type Session struct {
	cfg  Config
	log  *zap.Logger
	dial Dialer

	mu     sync.Mutex
	state  State
	actor  int
	roster []Actor
	conn   Conn

	inbox  chan events.Routed
	joined chan struct{}
}

func NewSession(cfg Config, log *zap.Logger, dial Dialer) *Session {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 4
	}
	return &Session{
		cfg:    cfg,
		log:    log,
		dial:   dial,
		actor:  -1,
		inbox:  make(chan events.Routed, 256),
		joined: make(chan struct{}),
	}
}

// Connect dials the relay for the given region and starts the read loop. On
// failure the session lands back in Disconnected; there is no automatic
// retry.
func (s *Session) Connect(ctx context.Context, region string) error {
	s.setState(StateConnectingToRelay)

	url := s.cfg.URL
	if region != "" {
		url = fmt.Sprintf("%s?region=%s", s.cfg.URL, region)
	}
	conn, err := s.dial(ctx, url)
	if err != nil {
		s.setState(StateDisconnected)
		s.log.Error("relay connect failed", zap.String("region", region), zap.Error(err))
		return fmt.Errorf("connect to relay: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.state = StateConnectedToRelay
	s.mu.Unlock()
	s.log.Info("connected to relay", zap.String("region", region))

	go s.readLoop(conn)
	return nil
}

// Send broadcasts payload to the room tagged with code. Valid only in
// JoinedRoom: anything earlier is dropped with a warning, never queued.
func (s *Session) Send(code events.Code, payload events.Payload) {
	s.mu.Lock()
	state := s.state
	conn := s.conn
	s.mu.Unlock()

	if state != StateJoinedRoom {
		s.log.Warn("send outside room dropped",
			zap.Stringer("code", code),
			zap.Stringer("state", state))
		return
	}

	data, err := events.Encode(payload)
	if err != nil {
		s.log.Error("encode outbound event", zap.Stringer("code", code), zap.Error(err))
		return
	}
	frame, _ := json.Marshal(clientFrame{Kind: "raise", Code: code, Data: data})
	if err := conn.Write(context.Background(), frame); err != nil {
		s.log.Warn("relay write failed", zap.Stringer("code", code), zap.Error(err))
	}
}

// Events is the inbound event stream, decoded and typed. Slow consumers
// lose events with a logged warning rather than blocking the read loop.
func (s *Session) Events() <-chan events.Routed { return s.inbox }

// AwaitJoined blocks until the session reaches JoinedRoom or ctx ends.
func (s *Session) AwaitJoined(ctx context.Context) error {
	select {
	case <-s.joined:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActorNumber is -1 until JoinedRoom is reached.
func (s *Session) ActorNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actor
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Roster() []Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Actor, len(s.roster))
	copy(out, s.roster)
	return out
}

// ActorNumbers satisfies authority.RosterView.
func (s *Session) ActorNumbers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.roster))
	for i, a := range s.roster {
		out[i] = a.Number
	}
	return out
}

func (s *Session) Close() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.state = StateDisconnected
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) readLoop(conn Conn) {
	ctx := context.Background()
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			s.mu.Lock()
			disconnecting := s.conn != nil
			s.conn = nil
			s.state = StateDisconnected
			s.mu.Unlock()
			if disconnecting {
				s.log.Warn("relay connection lost", zap.Error(err))
			}
			return
		}

		var frame serverFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.log.Warn("malformed relay frame dropped", zap.Error(err))
			continue
		}
		s.handleFrame(conn, frame)
	}
}

func (s *Session) handleFrame(conn Conn, frame serverFrame) {
	switch frame.Kind {
	case "lobby":
		s.setState(StateJoinedLobby)
		s.log.Info("joined lobby, requesting room",
			zap.String("room", s.cfg.Room),
			zap.Int("maxPlayers", s.cfg.MaxPlayers))
		join, _ := json.Marshal(clientFrame{
			Kind:       "join",
			Nonce:      uuid.NewString(),
			Room:       s.cfg.Room,
			MaxPlayers: s.cfg.MaxPlayers,
			Name:       s.cfg.DisplayName,
		})
		if err := conn.Write(context.Background(), join); err != nil {
			s.log.Error("room join request failed", zap.Error(err))
		}

	case "room":
		s.mu.Lock()
		s.actor = frame.Actor
		s.roster = frame.Actors
		alreadyJoined := s.state == StateJoinedRoom
		s.state = StateJoinedRoom
		s.mu.Unlock()
		s.log.Info("joined room",
			zap.Int("actor", frame.Actor),
			zap.Int("occupants", len(frame.Actors)))
		if !alreadyJoined {
			close(s.joined)
		}

	case "actor_join":
		s.mu.Lock()
		found := false
		for _, a := range s.roster {
			if a.Number == frame.Actor {
				found = true
				break
			}
		}
		if !found {
			s.roster = append(s.roster, Actor{Number: frame.Actor, Name: frame.Name})
		}
		s.mu.Unlock()
		s.log.Info("actor joined room", zap.Int("actor", frame.Actor))

	case "actor_leave":
		s.mu.Lock()
		for i, a := range s.roster {
			if a.Number == frame.Actor {
				s.roster = append(s.roster[:i], s.roster[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		s.log.Info("actor left room", zap.Int("actor", frame.Actor))

	case "event":
		payload, err := events.Decode(frame.Code, frame.Data)
		if err != nil {
			s.log.Warn("undecodable event dropped",
				zap.Int("origin", frame.Actor),
				zap.Error(err))
			return
		}
		routed := events.Routed{Code: frame.Code, Payload: payload, Origin: frame.Actor}
		select {
		case s.inbox <- routed:
		default:
			s.log.Warn("event inbox full, dropping",
				zap.Stringer("code", frame.Code),
				zap.Int("origin", frame.Actor))
		}

	default:
		s.log.Warn("unknown relay frame kind dropped", zap.String("kind", frame.Kind))
	}
}
