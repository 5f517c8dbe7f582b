package events

// Code identifies a relayed custom event. The numeric values are part of the
// wire contract shared with every other client in the room, so they must not
// be renumbered.
type Code int

const (
	CodeSendMessage       Code = 1
	CodePlayerMovement    Code = 2
	CodePlayerJoined      Code = 3
	CodePlayerThrowAction Code = 4
	CodePlayerHitAction   Code = 5
	CodeCurrentTurnPlayer Code = 6
	CodePlayerData        Code = 7
	CodeStartGame         Code = 8
	CodeStartNextRound    Code = 9
	CodeTriggeredMapEvent Code = 10

	CodeBalloonSpawn       Code = 11
	CodeBalloonPopAttempt  Code = 12
	CodeBalloonPopped      Code = 13
	CodeBalloonGameOver    Code = 14
	CodeBalloonScoreUpdate Code = 15
	CodeBalloonCursorMove  Code = 16

	CodePlayerMapJoined  Code = 17
	CodeShowMapEventCard Code = 18
	CodeEnterMiniGame    Code = 19
)

func (c Code) String() string {
	switch c {
	case CodeSendMessage:
		return "SEND_MESSAGE"
	case CodePlayerMovement:
		return "PLAYER_MOVEMENT"
	case CodePlayerJoined:
		return "PLAYER_JOINED"
	case CodePlayerThrowAction:
		return "PLAYER_THROW_ACTION"
	case CodePlayerHitAction:
		return "PLAYER_HIT_ACTION"
	case CodeCurrentTurnPlayer:
		return "CURRENT_TURN_PLAYER"
	case CodePlayerData:
		return "PLAYER_DATA"
	case CodeStartGame:
		return "START_GAME"
	case CodeStartNextRound:
		return "START_NEXT_ROUND"
	case CodeTriggeredMapEvent:
		return "PLAYER_TRIGGERED_MAP_EVENT"
	case CodeBalloonSpawn:
		return "MINIGAME_BALLOON_SPAWN"
	case CodeBalloonPopAttempt:
		return "MINIGAME_BALLOON_POP_ATTEMPT"
	case CodeBalloonPopped:
		return "MINIGAME_BALLOON_POPPED_CONFIRMED"
	case CodeBalloonGameOver:
		return "MINIGAME_BALLOON_GAME_OVER"
	case CodeBalloonScoreUpdate:
		return "MINIGAME_BALLOON_SCORE_UPDATE"
	case CodeBalloonCursorMove:
		return "MINIGAME_BALLOON_CURSOR_MOVE"
	case CodePlayerMapJoined:
		return "PLAYER_MAP_JOINED"
	case CodeShowMapEventCard:
		return "SHOW_MAP_EVENT_CARD"
	case CodeEnterMiniGame:
		return "ENTER_MINI_GAME"
	default:
		return "UNKNOWN"
	}
}
