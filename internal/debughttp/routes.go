// Package debughttp serves read-only JSON views of the running session for
// local inspection. It is a debugging surface, not part of the game protocol.
package debughttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/game"
	"github.com/partyboard/partyboard/internal/relay"
)

// Source is the slice of the game session the endpoints read.
type Source interface {
	Status() game.Status
	Roster() []relay.Actor
	Records() []events.PlayerRecord
	BalloonScores() []events.ScoreEntry
	ChatLog() []game.ChatLine
}

func SetupRoutes(src Source) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/statusz", Statusz(src))
	r.Get("/rosterz", Rosterz(src))
	r.Get("/scorez", Scorez(src))
	r.Get("/chatz", Chatz(src))
	return r
}
