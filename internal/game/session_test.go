package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/geo"
	"github.com/partyboard/partyboard/internal/minigame/snowball"
	"github.com/partyboard/partyboard/internal/relay"
	"github.com/partyboard/partyboard/internal/relay/relaytest"
)

const dt = 1.0 / 60.0

func newSession(t *testing.T, r *relaytest.Relay, name string) *Session {
	t.Helper()
	cfg := Config{
		Relay:          relay.Config{URL: "mem://relay", Room: "PartyRoom1", MaxPlayers: 4, DisplayName: name},
		Region:         "asia",
		Avatar:         events.AvatarFire,
		TickHz:         60,
		PlayersToStart: 2,
	}
	s := New(cfg, zap.NewNop(), r.Dialer())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.relay.Connect(ctx, cfg.Region))
	require.NoError(t, s.relay.AwaitJoined(ctx))
	s.board.AnnounceLocal(name, cfg.Avatar)
	t.Cleanup(s.relay.Close)
	return s
}

// pumpUntil dispatches pending relay events and runs the tick for every
// session until cond holds.
func pumpUntil(t *testing.T, cond func() bool, sessions ...*Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, s := range sessions {
			drainEvents(s)
			s.tick(dt)
		}
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline")
}

func drainEvents(s *Session) {
	for {
		select {
		case ev := <-s.relay.Events():
			s.dispatch(ev)
		default:
			return
		}
	}
}

func TestRoomFillStartsGameEverywhere(t *testing.T) {
	r := relaytest.New()
	master := newSession(t, r, "alice")
	follower := newSession(t, r, "bob")

	require.True(t, master.auth.IsMaster())
	require.False(t, follower.auth.IsMaster())

	pumpUntil(t, func() bool {
		return master.started && follower.started
	}, master, follower)

	// The master's opening snapshot and turn assignment reach everyone.
	pumpUntil(t, func() bool {
		return len(follower.Records()) == 2 && follower.board.TurnActor() == 1
	}, master, follower)

	require.Equal(t, master.Records(), follower.Records())
	for _, rec := range follower.Records() {
		require.Equal(t, 1000, rec.Money)
	}
}

func TestBalloonRoundScoresStayConsistent(t *testing.T) {
	r := relaytest.New()
	master := newSession(t, r, "alice")
	follower := newSession(t, r, "bob")

	pumpUntil(t, func() bool {
		return master.started && follower.started &&
			len(master.Records()) == 2 && len(follower.Records()) == 2
	}, master, follower)

	// The board announces the mini-game; both sessions switch scenes off the
	// same broadcast.
	master.relay.Send(events.CodeEnterMiniGame, events.EnterMiniGame{Game: "balloon"})
	pumpUntil(t, func() bool {
		return master.scene == SceneBalloon && follower.scene == SceneBalloon
	}, master, follower)

	// Master-authored spawn mirrors identically on both sides.
	master.relay.Send(events.CodeBalloonSpawn, events.BalloonSpawn{
		ID:    "b9_99",
		Pos:   geo.V(0, -300),
		Rule:  events.RewardRule{Op: events.OpAdd, Value: 20},
		Key:   events.KeyUp,
		Speed: 90,
	})
	pumpUntil(t, func() bool {
		_, onMaster := master.balloon.Balloon("b9_99")
		_, onFollower := follower.balloon.Balloon("b9_99")
		return onMaster && onFollower
	}, master, follower)

	fb, _ := follower.balloon.Balloon("b9_99")
	require.Equal(t, events.RewardRule{Op: events.OpAdd, Value: 20}, fb.Rule)

	// The follower pops; only the master's confirmation scores it.
	follower.balloon.AttemptPop("b9_99", events.KeyUp)
	pumpUntil(t, func() bool {
		scores := follower.BalloonScores()
		return len(scores) == 2 && scores[1].Score == 20
	}, master, follower)

	require.Equal(t, master.BalloonScores(), follower.BalloonScores())
	require.Equal(t, 20, master.BalloonScores()[1].Score)

	_, live := master.balloon.Balloon("b9_99")
	require.False(t, live, "popped balloon despawns on the master")
	_, live = follower.balloon.Balloon("b9_99")
	require.False(t, live, "popped balloon despawns on the follower")
}

func TestSnowballRoundRunsToCompletion(t *testing.T) {
	r := relaytest.New()
	master := newSession(t, r, "alice")
	follower := newSession(t, r, "bob")

	pumpUntil(t, func() bool {
		return master.started && follower.started &&
			len(master.Records()) == 2 && len(follower.Records()) == 2
	}, master, follower)

	master.relay.Send(events.CodeEnterMiniGame, events.EnterMiniGame{Game: "snowball"})
	pumpUntil(t, func() bool {
		return master.scene == SceneSnowball && follower.scene == SceneSnowball
	}, master, follower)

	// The follower's clock only moves when the master's sync lands.
	pumpUntil(t, func() bool {
		return follower.snowball.TimeLeft() < snowball.GameDuration
	}, master, follower)

	// Run the round's clock out. Ticking directly keeps simulated time ahead
	// of the wall clock.
	steps := int(snowball.GameDuration/dt) + 120
	for i := 0; i < steps; i++ {
		drainEvents(master)
		drainEvents(follower)
		master.tick(dt)
		follower.tick(dt)
	}
	pumpUntil(t, func() bool {
		return master.scene == SceneBoard && follower.scene == SceneBoard
	}, master, follower)

	require.True(t, master.snowball.Finished())
	require.True(t, follower.snowball.Finished())
}

func TestInboundChatIsRecorded(t *testing.T) {
	r := relaytest.New()
	master := newSession(t, r, "alice")
	follower := newSession(t, r, "bob")

	master.Chat("gg, roll already")
	pumpUntil(t, func() bool {
		return len(follower.ChatLog()) == 1
	}, master, follower)

	want := ChatLine{Actor: master.relay.ActorNumber(), Content: "gg, roll already"}
	require.Equal(t, []ChatLine{want}, follower.ChatLog())
	// The sender's own echo lands in its log too.
	require.Equal(t, []ChatLine{want}, master.ChatLog())
}

func TestStatusViewsSafeDuringDispatch(t *testing.T) {
	r := relaytest.New()
	master := newSession(t, r, "alice")
	follower := newSession(t, r, "bob")

	pumpUntil(t, func() bool {
		return master.started && follower.started && len(follower.Records()) == 2
	}, master, follower)

	// Hammer the debug-endpoint views from another goroutine while the main
	// goroutine keeps mutating state, the way the HTTP server does against
	// the running tick loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			_ = follower.Status()
			_ = follower.Records()
			_ = follower.BalloonScores()
			_ = follower.ChatLog()
		}
	}()

	for i := 0; ; i++ {
		select {
		case <-done:
			require.Len(t, follower.Records(), 2)
			return
		default:
		}
		follower.dispatch(events.Routed{
			Code:   events.CodePlayerData,
			Origin: master.relay.ActorNumber(),
			Payload: events.PlayerData{Players: []events.PlayerRecord{
				{ActorNumber: 1, Name: "alice", Avatar: events.AvatarFire, Money: 1000 + i},
				{ActorNumber: 2, Name: "bob", Avatar: events.AvatarFire, Money: 1000 + i},
			}},
		})
		follower.tick(dt)
	}
}

func TestAuthorityMovesToSurvivorWhenMasterLeaves(t *testing.T) {
	r := relaytest.New()
	master := newSession(t, r, "alice")
	follower := newSession(t, r, "bob")

	pumpUntil(t, func() bool {
		return len(follower.relay.ActorNumbers()) == 2
	}, master, follower)
	require.False(t, follower.auth.IsMaster())

	r.DropActor(master.relay.ActorNumber())

	pumpUntil(t, func() bool {
		return follower.auth.IsMaster()
	}, follower)
	require.Equal(t, follower.relay.ActorNumber(), follower.auth.MasterActor())
}
