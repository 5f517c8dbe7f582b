package events

import (
	"encoding/json"
	"fmt"
)

// Message is the SEND_MESSAGE envelope. The original wire format switches on
// a free-form "type" string; here the variants are closed, decoded once, and
// anything else is a decode error rather than a silently ignored bag.
type Message struct {
	Body MessageBody
}

type MessageBody interface{ isMessageBody() }

// Chat is a plain text message shown in the room chat.
type Chat struct {
	Content string `json:"content"`
}

// TimerSync is the master's periodic mini-game clock broadcast. Followers
// overwrite their local timer with Remaining; they never run the clock
// themselves.
type TimerSync struct {
	Remaining float64 `json:"timer"`
}

// TeamScoreSync is the master's snowball team score broadcast.
type TeamScoreSync struct {
	TeamA int `json:"teamAScore"`
	TeamB int `json:"teamBScore"`
}

func (Chat) isMessageBody()          {}
func (TimerSync) isMessageBody()     {}
func (TeamScoreSync) isMessageBody() {}

type messageEnvelope struct {
	Type string `json:"type"`
	Chat
	TimerSync
	TeamScoreSync
}

func (m Message) MarshalJSON() ([]byte, error) {
	env := messageEnvelope{}
	switch b := m.Body.(type) {
	case Chat:
		env.Type = "chat"
		env.Chat = b
	case TimerSync:
		env.Type = "timer"
		env.TimerSync = b
	case TeamScoreSync:
		env.Type = "score"
		env.TeamScoreSync = b
	default:
		return nil, fmt.Errorf("events: unknown message body %T", m.Body)
	}
	return json.Marshal(env)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var env messageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch env.Type {
	case "chat":
		m.Body = env.Chat
	case "timer":
		m.Body = env.TimerSync
	case "score":
		m.Body = env.TeamScoreSync
	default:
		return fmt.Errorf("events: unknown message type %q", env.Type)
	}
	return nil
}
