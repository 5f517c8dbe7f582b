package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownCode = errors.New("unknown event code")

// Decode turns a raw relayed body into its typed payload. Called exactly once
// per inbound frame, at the transport boundary.
func Decode(code Code, data json.RawMessage) (Payload, error) {
	var (
		p   Payload
		err error
	)
	unmarshal := func(v any) {
		if len(data) == 0 {
			return
		}
		err = json.Unmarshal(data, v)
	}
	switch code {
	case CodeSendMessage:
		var v Message
		unmarshal(&v)
		p = v
	case CodePlayerMovement:
		var v PlayerMovement
		unmarshal(&v)
		p = v
	case CodePlayerJoined:
		var v PlayerJoined
		unmarshal(&v)
		p = v
	case CodePlayerThrowAction:
		var v ThrowAction
		unmarshal(&v)
		p = v
	case CodePlayerHitAction:
		var v HitAction
		unmarshal(&v)
		p = v
	case CodeCurrentTurnPlayer:
		var v CurrentTurn
		unmarshal(&v)
		p = v
	case CodePlayerData:
		var v PlayerData
		unmarshal(&v)
		p = v
	case CodeStartGame:
		p = StartGame{}
	case CodeStartNextRound:
		var v StartNextRound
		unmarshal(&v)
		p = v
	case CodeTriggeredMapEvent:
		var v TriggeredMapEvent
		unmarshal(&v)
		p = v
	case CodeShowMapEventCard:
		var v ShowMapEventCard
		unmarshal(&v)
		p = v
	case CodeEnterMiniGame:
		var v EnterMiniGame
		unmarshal(&v)
		p = v
	case CodePlayerMapJoined:
		var v PlayerMapJoined
		unmarshal(&v)
		p = v
	case CodeBalloonSpawn:
		var v BalloonSpawn
		unmarshal(&v)
		p = v
	case CodeBalloonPopAttempt:
		var v BalloonPopAttempt
		unmarshal(&v)
		p = v
	case CodeBalloonPopped:
		var v BalloonPopped
		unmarshal(&v)
		p = v
	case CodeBalloonGameOver:
		var v BalloonGameOver
		unmarshal(&v)
		p = v
	case CodeBalloonScoreUpdate:
		var v BalloonScoreUpdate
		unmarshal(&v)
		p = v
	case CodeBalloonCursorMove:
		var v BalloonCursorMove
		unmarshal(&v)
		p = v
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", code, err)
	}
	return p, nil
}

// Encode serializes a payload for sending. The payload type must match what
// Decode produces for the code, so a round trip is lossless.
func Encode(p Payload) (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", p, err)
	}
	return data, nil
}
