package board

import (
	"errors"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/entity"
	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/geo"
)

// Phase is the local participant's turn-cycle state.
type Phase int

const (
	PhaseWaitingForTurn Phase = iota
	PhaseMyTurn
	PhaseRollingDice
	PhaseMoving
	PhaseResolvingTile
)

func (p Phase) String() string {
	switch p {
	case PhaseWaitingForTurn:
		return "waiting_for_turn"
	case PhaseMyTurn:
		return "my_turn"
	case PhaseRollingDice:
		return "rolling_dice"
	case PhaseMoving:
		return "moving"
	case PhaseResolvingTile:
		return "resolving_tile"
	default:
		return "unknown"
	}
}

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrMidMove     = errors.New("movement in progress")
)

// Sender broadcasts an event to the room.
type Sender interface {
	Send(code events.Code, payload events.Payload)
}

// Authority is the slice of the authority coordinator the game needs.
// Evaluated at each decision point, never cached.
type Authority interface {
	IsMaster() bool
	ActorNumber() int
	ActorNumbers() []int
}

const (
	startingMoney  = 1000
	addMoneyAmount = 200
	deductAmount   = 150
	starCost       = 300
	shopItemCost   = 150
	tokenSpeed     = 100.0
)

// Game is the turn/session state machine. All mutation happens on the game
// tick, driven by HandleEvent and Tick.
//
// The master owns the economic records and the turn pointer; every other
// participant holds a read-only mirror replaced wholesale by PLAYER_DATA
// snapshots. Local tile guesses exist only to keep the UI responsive and are
// always overwritten by the next snapshot.
type Game struct {
	log   *zap.Logger
	send  Sender
	auth  Authority
	board *Board
	rng   *rand.Rand

	phase     Phase
	turnActor int
	round     int
	landing   int

	records map[int]*events.PlayerRecord
	token   *entity.Reconciler
	remotes map[int]*entity.Reconciler

	// master-only turn bookkeeping
	skipTurns    map[int]int
	gameTileHits int

	// OnEnterMiniGame fires when the session should switch into a mini-game.
	OnEnterMiniGame func(game string)
}

func NewGame(log *zap.Logger, send Sender, auth Authority, rng *rand.Rand) *Game {
	g := &Game{
		log:       log,
		send:      send,
		auth:      auth,
		board:     NewBoard(),
		rng:       rng,
		phase:     PhaseWaitingForTurn,
		turnActor: -1,
		round:     1,
		records:   make(map[int]*events.PlayerRecord),
		remotes:   make(map[int]*entity.Reconciler),
		skipTurns: make(map[int]int),
	}
	g.token = entity.New(auth.ActorNumber(), "local", true, tokenSpeed, log,
		entity.WithArrival(g.onArrived))
	g.token.SetPos(g.board.Coord(0))
	return g
}

func (g *Game) Phase() Phase   { return g.phase }
func (g *Game) TurnActor() int { return g.turnActor }
func (g *Game) Round() int     { return g.round }

// Records returns the economic snapshot, sorted by actor number.
func (g *Game) Records() []events.PlayerRecord {
	out := make([]events.PlayerRecord, 0, len(g.records))
	for _, r := range g.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorNumber < out[j].ActorNumber })
	return out
}

// AnnounceLocal broadcasts the local player descriptor and seeds the local
// record. Called once the room is joined and the avatar is chosen.
func (g *Game) AnnounceLocal(name string, avatar events.Avatar) {
	local := g.auth.ActorNumber()
	g.ensureRecord(local, name, avatar)
	g.token.ID = local
	g.send.Send(events.CodePlayerJoined, events.PlayerJoined{
		Player: events.PlayerDescriptor{ActorNumber: local, Name: name, Avatar: avatar},
	})
}

// RollDice resolves the local player's dice roll into a waypoint path and
// starts the move. Only valid in PhaseMyTurn.
func (g *Game) RollDice(dice int) (int, error) {
	switch g.phase {
	case PhaseMyTurn:
	case PhaseMoving, PhaseRollingDice:
		return 0, ErrMidMove
	default:
		return 0, ErrNotYourTurn
	}

	g.phase = PhaseRollingDice
	steps := RollDice(g.rng, dice)

	local := g.auth.ActorNumber()
	rec := g.records[local]
	from := 0
	if rec != nil {
		from = rec.PositionIndex
	}
	path := g.board.Path(from, steps)
	g.landing = wrap(from + steps)
	g.token.SetPath(path)
	g.phase = PhaseMoving

	g.send.Send(events.CodePlayerMovement, events.PlayerMovement{
		PlayerID: local,
		Path:     path,
		To:       path[len(path)-1],
	})
	g.log.Info("dice rolled",
		zap.Int("steps", steps),
		zap.Int("from", from),
		zap.Int("landing", g.landing))
	return steps, nil
}

// Tick advances all token reconcilers by dt seconds.
func (g *Game) Tick(dt float64) {
	g.token.Tick(dt)
	for _, r := range g.remotes {
		r.Tick(dt)
	}
}

// HandleEvent implements router.Handler.
func (g *Game) HandleEvent(ev events.Routed) {
	switch p := ev.Payload.(type) {
	case events.PlayerJoined:
		g.ensureRecord(p.Player.ActorNumber, p.Player.Name, p.Player.Avatar)
		// A joiner may have missed earlier snapshots, so the master reissues
		// the books for them.
		if g.auth.IsMaster() && p.Player.ActorNumber != g.auth.ActorNumber() {
			g.broadcastSnapshot()
		}

	case events.StartGame:
		g.startGame()

	case events.CurrentTurn:
		g.applyTurn(p.ActorNumber)

	case events.PlayerMovement:
		g.applyMovement(p, ev.Origin)

	case events.PlayerData:
		g.applySnapshot(p)

	case events.TriggeredMapEvent:
		if g.auth.IsMaster() {
			g.masterResolveTile(p)
		}

	case events.ShowMapEventCard:
		if card, ok := CardByID(p.CardID); ok {
			g.log.Info("event card shown", zap.Int("card", card.ID), zap.String("text", card.Description))
		} else {
			g.log.Warn("unknown event card dropped", zap.Int("card", p.CardID))
		}

	case events.PlayerMapJoined:
		// A participant finished loading the board scene; the master resyncs
		// them with the books and the current turn.
		if g.auth.IsMaster() && p.ActorNumber != g.auth.ActorNumber() {
			g.broadcastSnapshot()
			if g.turnActor >= 0 {
				g.send.Send(events.CodeCurrentTurnPlayer, events.CurrentTurn{ActorNumber: g.turnActor})
			}
		}

	case events.StartNextRound:
		g.round = p.Round

	case events.EnterMiniGame:
		if g.OnEnterMiniGame != nil {
			g.OnEnterMiniGame(p.Game)
		}
	}
}

func (g *Game) startGame() {
	g.phase = PhaseWaitingForTurn
	for _, rec := range g.records {
		rec.PositionIndex = 0
		rec.Money = startingMoney
		rec.Stars = 0
	}
	// The master hands the first turn to the lowest actor and publishes the
	// opening snapshot.
	if g.auth.IsMaster() {
		g.broadcastSnapshot()
		first := lowestActor(g.auth.ActorNumbers())
		g.send.Send(events.CodeCurrentTurnPlayer, events.CurrentTurn{ActorNumber: first})
	}
}

func (g *Game) applyTurn(actor int) {
	g.turnActor = actor
	if actor == g.auth.ActorNumber() {
		g.phase = PhaseMyTurn
		g.log.Info("my turn", zap.Int("round", g.round))
	} else {
		g.phase = PhaseWaitingForTurn
	}
}

func (g *Game) applyMovement(p events.PlayerMovement, origin int) {
	local := g.auth.ActorNumber()
	if p.PlayerID == local {
		return // echo of our own broadcast
	}
	remote, ok := g.remotes[p.PlayerID]
	if !ok {
		g.log.Warn("movement for unknown entity dropped",
			zap.Int("player", p.PlayerID),
			zap.Int("origin", origin))
		return
	}
	if len(p.Path) > 0 {
		remote.SetPath(p.Path)
		return
	}
	remote.ApplyRemoteMove(p.To, geo.V(p.InputDX, p.InputDY), p.Holding, p.FaceRight)
}

// applySnapshot replaces the economic mirror wholesale. Snapshot always wins
// over any locally guessed value.
func (g *Game) applySnapshot(p events.PlayerData) {
	fresh := make(map[int]*events.PlayerRecord, len(p.Players))
	for _, rec := range p.Players {
		rec := rec
		fresh[rec.ActorNumber] = &rec
		if rec.ActorNumber != g.auth.ActorNumber() {
			g.ensureRemote(rec.ActorNumber, rec.Name)
		}
	}
	g.records = fresh
}

// masterResolveTile applies the landed tile's effect to the authoritative
// record, then advances the turn and publishes the snapshot.
func (g *Game) masterResolveTile(p events.TriggeredMapEvent) {
	rec, ok := g.records[p.PlayerID]
	if !ok {
		g.log.Warn("tile event for unknown player dropped", zap.Int("player", p.PlayerID))
		return
	}
	rec.PositionIndex = wrap(p.TileIndex)

	extraTurn := false
	switch g.board.Kind(p.TileIndex) {
	case TileAddMoney:
		rec.Money += addMoneyAmount
	case TileDeductMoney:
		rec.Money = clampMoney(rec.Money - deductAmount)
	case TileStar:
		if rec.Money >= starCost {
			rec.Money -= starCost
			rec.Stars++
		}
	case TileChance, TileDestiny:
		card := DrawCard(g.rng)
		g.send.Send(events.CodeShowMapEventCard, events.ShowMapEventCard{CardID: card.ID})
		g.applyCard(rec, card)
		extraTurn = card.ExtraTurn
		if card.SkipTurn {
			g.skipTurns[p.PlayerID]++
		}
	case TileShop:
		// Minimal storefront: spend money on an item. Inventory itself lives
		// with the out-of-scope UI collaborators.
		if rec.Money >= shopItemCost {
			rec.Money -= shopItemCost
			g.log.Info("shop purchase", zap.Int("player", p.PlayerID), zap.Int("cost", shopItemCost))
		}
	case TileGame:
		g.send.Send(events.CodeEnterMiniGame, events.EnterMiniGame{Game: g.pickMiniGame()})
	}

	g.broadcastSnapshot()
	g.advanceTurn(p.PlayerID, extraTurn)
}

// pickMiniGame alternates the game tile between the two mini-games so both
// see play over a session.
func (g *Game) pickMiniGame() string {
	g.gameTileHits++
	if g.gameTileHits%2 == 1 {
		return "balloon"
	}
	return "snowball"
}

func (g *Game) applyCard(rec *events.PlayerRecord, card Card) {
	rec.Money = clampMoney(rec.Money + card.Money)
	if card.MoveToStart {
		rec.PositionIndex = 0
	} else if card.MoveDelta != 0 {
		rec.PositionIndex = wrap(rec.PositionIndex + card.MoveDelta)
	}
}

func (g *Game) advanceTurn(current int, extraTurn bool) {
	if extraTurn {
		g.send.Send(events.CodeCurrentTurnPlayer, events.CurrentTurn{ActorNumber: current})
		return
	}
	actors := g.auth.ActorNumbers()
	sort.Ints(actors)
	if len(actors) == 0 {
		return
	}

	next := nextAfter(actors, current)
	for g.skipTurns[next] > 0 {
		g.skipTurns[next]--
		g.log.Info("turn skipped", zap.Int("actor", next))
		next = nextAfter(actors, next)
	}
	if next <= current {
		g.round++
		g.send.Send(events.CodeStartNextRound, events.StartNextRound{Round: g.round})
	}
	g.send.Send(events.CodeCurrentTurnPlayer, events.CurrentTurn{ActorNumber: next})
}

func (g *Game) onArrived() {
	g.phase = PhaseResolvingTile
	local := g.auth.ActorNumber()
	if rec := g.records[local]; rec != nil {
		rec.PositionIndex = g.landing
		// Followers guess money tiles for responsiveness and let the next
		// snapshot correct them. The master's books are the snapshot, so it
		// must not guess here: its tile event echoes back through
		// masterResolveTile, which writes the effect exactly once.
		if !g.auth.IsMaster() {
			switch g.board.Kind(g.landing) {
			case TileAddMoney:
				rec.Money += addMoneyAmount
			case TileDeductMoney:
				rec.Money = clampMoney(rec.Money - deductAmount)
			}
		}
	}
	g.send.Send(events.CodeTriggeredMapEvent, events.TriggeredMapEvent{
		PlayerID:  local,
		TileIndex: g.landing,
	})
}

func (g *Game) broadcastSnapshot() {
	g.send.Send(events.CodePlayerData, events.PlayerData{Players: g.Records()})
}

func (g *Game) ensureRecord(actor int, name string, avatar events.Avatar) {
	if _, ok := g.records[actor]; !ok {
		g.records[actor] = &events.PlayerRecord{
			ActorNumber: actor,
			Name:        name,
			Avatar:      avatar,
			Money:       startingMoney,
		}
	}
	if actor != g.auth.ActorNumber() {
		g.ensureRemote(actor, name)
	}
}

func (g *Game) ensureRemote(actor int, name string) {
	if _, ok := g.remotes[actor]; !ok {
		r := entity.New(actor, name, false, tokenSpeed, g.log)
		r.SetPos(g.board.Coord(0))
		g.remotes[actor] = r
	}
}

func clampMoney(m int) int {
	if m < 0 {
		return 0
	}
	return m
}

func lowestActor(actors []int) int {
	lowest := -1
	for _, a := range actors {
		if lowest == -1 || a < lowest {
			lowest = a
		}
	}
	return lowest
}

// nextAfter returns the next actor in ascending cyclic order.
func nextAfter(sorted []int, current int) int {
	for _, a := range sorted {
		if a > current {
			return a
		}
	}
	return sorted[0]
}
