package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageEnvelopeVariants(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"chat", Message{Body: Chat{Content: "gg"}}, `"type":"chat"`},
		{"timer", Message{Body: TimerSync{Remaining: 42}}, `"type":"timer"`},
		{"score", Message{Body: TeamScoreSync{TeamA: 3, TeamB: 1}}, `"type":"score"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)
			require.Contains(t, string(data), tt.want)

			var back Message
			require.NoError(t, json.Unmarshal(data, &back))
			require.Equal(t, tt.msg.Body, back.Body)
		})
	}
}

func TestMessageEnvelopeRejectsUnknownType(t *testing.T) {
	var m Message
	err := json.Unmarshal([]byte(`{"type":"emote","content":"hi"}`), &m)
	require.Error(t, err)
}

func TestDecodeRejectsUnknownCode(t *testing.T) {
	_, err := Decode(Code(99), json.RawMessage(`{}`))
	require.ErrorIs(t, err, ErrUnknownCode)
}

func TestDecodeTypedPayload(t *testing.T) {
	raw := json.RawMessage(`{"id":"b1_0","pos":{"x":0,"y":-300},"rule":{"op":"ADD","value":20},"requiredKey":"up","speed":90}`)
	p, err := Decode(CodeBalloonSpawn, raw)
	require.NoError(t, err)

	spawn, ok := p.(BalloonSpawn)
	require.True(t, ok)
	require.Equal(t, "b1_0", spawn.ID)
	require.Equal(t, RewardRule{Op: OpAdd, Value: 20}, spawn.Rule)
	require.Equal(t, KeyUp, spawn.Key)
}
