// Package relaytest is an in-memory stand-in for the relay service, speaking
// the same frames the real service does. It gives tests a full room without
// a network: actors are numbered in join order, and raised events are echoed
// to every participant including the sender, matching production relay
// behavior.
package relaytest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/relay"
)

type frame struct {
	Kind       string          `json:"kind"`
	Nonce      string          `json:"nonce,omitempty"`
	Room       string          `json:"room,omitempty"`
	MaxPlayers int             `json:"maxPlayers,omitempty"`
	Name       string          `json:"name,omitempty"`
	Actor      int             `json:"actor,omitempty"`
	Actors     []actor         `json:"actors,omitempty"`
	Code       events.Code     `json:"code,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type actor struct {
	Number int    `json:"number"`
	Name   string `json:"name,omitempty"`
}

// Relay hosts a single room.
type Relay struct {
	mu        sync.Mutex
	nextActor int
	links     []*link
}

type link struct {
	relay    *Relay
	toClient chan []byte
	toRelay  chan []byte
	closed   chan struct{}
	once     sync.Once
	actor    int
	name     string
}

func New() *Relay {
	return &Relay{nextActor: 1}
}

// Dialer returns a relay.Dialer whose connections land in this relay's room.
func (r *Relay) Dialer() relay.Dialer {
	return func(ctx context.Context, url string) (relay.Conn, error) {
		l := &link{
			relay:    r,
			toClient: make(chan []byte, 128),
			toRelay:  make(chan []byte, 128),
			closed:   make(chan struct{}),
		}
		go r.serve(l)
		l.send(frame{Kind: "lobby"})
		return l, nil
	}
}

// DropActor severs an actor's connection, as if that client disconnected.
// Remaining participants see an actor_leave.
func (r *Relay) DropActor(number int) {
	r.mu.Lock()
	var target *link
	for _, l := range r.links {
		if l.actor == number {
			target = l
			break
		}
	}
	r.mu.Unlock()
	if target != nil {
		target.shutdown()
	}
}

func (r *Relay) serve(l *link) {
	for {
		select {
		case <-l.closed:
			r.remove(l)
			return
		case data := <-l.toRelay:
			var f frame
			if err := json.Unmarshal(data, &f); err != nil {
				continue
			}
			r.handle(l, f)
		}
	}
}

func (r *Relay) handle(l *link, f frame) {
	switch f.Kind {
	case "join":
		r.mu.Lock()
		l.actor = r.nextActor
		r.nextActor++
		l.name = f.Name
		r.links = append(r.links, l)
		roster := make([]actor, 0, len(r.links))
		for _, m := range r.links {
			roster = append(roster, actor{Number: m.actor, Name: m.name})
		}
		others := r.othersLocked(l)
		r.mu.Unlock()

		l.send(frame{Kind: "room", Actor: l.actor, Actors: roster})
		for _, o := range others {
			o.send(frame{Kind: "actor_join", Actor: l.actor, Name: l.name})
		}

	case "raise":
		r.mu.Lock()
		targets := make([]*link, len(r.links))
		copy(targets, r.links)
		r.mu.Unlock()
		// Echo to everyone, the sender included.
		out := frame{Kind: "event", Actor: l.actor, Code: f.Code, Data: f.Data}
		for _, t := range targets {
			t.send(out)
		}

	case "leave":
		l.shutdown()
	}
}

func (r *Relay) othersLocked(l *link) []*link {
	out := make([]*link, 0, len(r.links))
	for _, m := range r.links {
		if m != l {
			out = append(out, m)
		}
	}
	return out
}

func (r *Relay) remove(l *link) {
	r.mu.Lock()
	joined := false
	for i, m := range r.links {
		if m == l {
			r.links = append(r.links[:i], r.links[i+1:]...)
			joined = true
			break
		}
	}
	others := make([]*link, len(r.links))
	copy(others, r.links)
	r.mu.Unlock()

	if joined {
		for _, o := range others {
			o.send(frame{Kind: "actor_leave", Actor: l.actor})
		}
	}
}

func (l *link) send(f frame) {
	data, _ := json.Marshal(f)
	select {
	case l.toClient <- data:
	case <-l.closed:
	}
}

func (l *link) shutdown() {
	l.once.Do(func() { close(l.closed) })
}

// relay.Conn implementation (the client side of the link).

func (l *link) Read(ctx context.Context) ([]byte, error) {
	select {
	case data := <-l.toClient:
		return data, nil
	case <-l.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *link) Write(ctx context.Context, data []byte) error {
	select {
	case l.toRelay <- data:
		return nil
	case <-l.closed:
		return errors.New("connection closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *link) Close() error {
	l.shutdown()
	return nil
}
