package relay

import (
	"encoding/json"

	"github.com/partyboard/partyboard/internal/events"
)

// Actor is one room participant as the relay reports it.
type Actor struct {
	Number int    `json:"number"`
	Name   string `json:"name,omitempty"`
}

// clientFrame is everything we ever send to the relay service.
type clientFrame struct {
	Kind       string          `json:"kind"` // "join" | "raise" | "leave"
	Nonce      string          `json:"nonce,omitempty"`
	Room       string          `json:"room,omitempty"`
	MaxPlayers int             `json:"maxPlayers,omitempty"`
	Name       string          `json:"name,omitempty"`
	Code       events.Code     `json:"code,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// serverFrame is everything the relay ever sends us. Kind "event" carries a
// relayed custom event; the rest are session control.
type serverFrame struct {
	Kind   string          `json:"kind"` // "lobby" | "room" | "actor_join" | "actor_leave" | "event"
	Actor  int             `json:"actor,omitempty"`
	Name   string          `json:"name,omitempty"`
	Actors []Actor         `json:"actors,omitempty"`
	Code   events.Code     `json:"code,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}
