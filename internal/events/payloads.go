package events

import "github.com/partyboard/partyboard/internal/geo"

// Payload is the closed set of event bodies. Every inbound frame is decoded
// into exactly one of these at the transport boundary, so handlers never
// re-validate raw field bags.
type Payload interface{ isPayload() }

// Routed is an inbound event after decoding: what happened, its typed body,
// and which room actor sent it. The relay echoes self-originated events back,
// so handlers that must ignore their own sends compare Origin themselves.
type Routed struct {
	Code    Code
	Payload Payload
	Origin  int
}

// Avatar is the visual identity chosen before matchmaking.
type Avatar string

const (
	AvatarElectric Avatar = "ELECTRIC"
	AvatarFire     Avatar = "FIRE"
	AvatarGrass    Avatar = "GRASS"
	AvatarIce      Avatar = "ICE"
)

// PlayerDescriptor announces a participant to the room.
type PlayerDescriptor struct {
	ActorNumber int    `json:"actorNumber"`
	Name        string `json:"name"`
	Avatar      Avatar `json:"avatar"`
}

// PlayerRecord is one row of the economic snapshot the master broadcasts.
type PlayerRecord struct {
	ActorNumber   int    `json:"actorNumber"`
	Name          string `json:"name"`
	Avatar        Avatar `json:"avatar"`
	PositionIndex int    `json:"positionIndex"`
	Money         int    `json:"money"`
	Stars         int    `json:"stars"`
}

// ScoreEntry is one row of a mini-game scoreboard snapshot.
type ScoreEntry struct {
	ActorNumber int    `json:"actorNr"`
	Score       int    `json:"score"`
	Name        string `json:"name"`
}

// KeyCode names the key a balloon demands. Symbolic on the wire so clients
// with different key layouts agree.
type KeyCode string

const (
	KeyUp    KeyCode = "up"
	KeyDown  KeyCode = "down"
	KeyLeft  KeyCode = "left"
	KeyRight KeyCode = "right"
)

// PlayerMovement syncs position plus movement intent. Path carries the full
// waypoint list for board-token moves; To plus the input vector carries
// free-movement sync in the mini-games. Facing and animation on the receiving
// side are driven by the intent vector, not the positional delta.
type PlayerMovement struct {
	PlayerID  int        `json:"playerId"`
	To        geo.Vec2   `json:"to"`
	Path      []geo.Vec2 `json:"path,omitempty"`
	InputDX   float64    `json:"inputDx"`
	InputDY   float64    `json:"inputDy"`
	Holding   bool       `json:"holding"`
	FaceRight bool       `json:"faceRight"`
}

type PlayerJoined struct {
	Player PlayerDescriptor `json:"player"`
}

// ThrowAction replicates a snowball throw.
type ThrowAction struct {
	PlayerID int      `json:"playerId"`
	Pos      geo.Vec2 `json:"pos"`
	Dir      geo.Vec2 `json:"dir"`
	Team     string   `json:"team"`
}

// HitAction replicates a confirmed snowball hit. NewLife is the authoritative
// remaining life total, not a delta.
type HitAction struct {
	PlayerID int `json:"playerId"`
	NewLife  int `json:"newLife"`
}

// CurrentTurn assigns the turn. Master to all.
type CurrentTurn struct {
	ActorNumber int `json:"actorNumber"`
}

// PlayerData is the full economic snapshot. Master to all, snapshot-replace.
type PlayerData struct {
	Players []PlayerRecord `json:"players"`
}

type StartGame struct{}

type StartNextRound struct {
	Round int `json:"round"`
}

// TriggeredMapEvent reports which tile a player landed on and, for chance
// tiles, which card was drawn.
type TriggeredMapEvent struct {
	PlayerID  int `json:"playerId"`
	TileIndex int `json:"tileIndex"`
	CardID    int `json:"cardId,omitempty"`
}

type ShowMapEventCard struct {
	CardID int `json:"cardId"`
}

type EnterMiniGame struct {
	Game string `json:"game"` // "balloon" | "snowball"
}

type PlayerMapJoined struct {
	ActorNumber int `json:"actorNumber"`
}

// BalloonSpawn is sent by the master only; followers mirror the balloon with
// the exact id and reward rule, never guessing locally.
type BalloonSpawn struct {
	ID    string     `json:"id"`
	Pos   geo.Vec2   `json:"pos"`
	Rule  RewardRule `json:"rule"`
	Key   KeyCode    `json:"requiredKey"`
	Speed float64    `json:"speed"`
}

type BalloonPopAttempt struct {
	ID       string  `json:"id"`
	PlayerID int     `json:"playerId"`
	Key      KeyCode `json:"key"`
}

// BalloonPopped confirms a pop and carries the full post-pop scoreboard.
type BalloonPopped struct {
	ID            string       `json:"id"`
	PlayerID      int          `json:"playerId"`
	ScoreAwarded  int          `json:"scoreAwarded"`
	NewScoreTotal int          `json:"newScoreTotal"`
	UpdatedScores []ScoreEntry `json:"updatedScores"`
}

type BalloonGameOver struct {
	FinalScores []ScoreEntry `json:"finalScores"`
}

type BalloonScoreUpdate struct {
	Scores []ScoreEntry `json:"scores"`
}

type BalloonCursorMove struct {
	Pos geo.Vec2 `json:"position"`
}

func (Message) isPayload()            {}
func (PlayerMovement) isPayload()     {}
func (PlayerJoined) isPayload()       {}
func (ThrowAction) isPayload()        {}
func (HitAction) isPayload()          {}
func (CurrentTurn) isPayload()        {}
func (PlayerData) isPayload()         {}
func (StartGame) isPayload()          {}
func (StartNextRound) isPayload()     {}
func (TriggeredMapEvent) isPayload()  {}
func (ShowMapEventCard) isPayload()   {}
func (EnterMiniGame) isPayload()      {}
func (PlayerMapJoined) isPayload()    {}
func (BalloonSpawn) isPayload()       {}
func (BalloonPopAttempt) isPayload()  {}
func (BalloonPopped) isPayload()      {}
func (BalloonGameOver) isPayload()    {}
func (BalloonScoreUpdate) isPayload() {}
func (BalloonCursorMove) isPayload()  {}
