package debughttp

import (
	"encoding/json"
	"net/http"

	"github.com/partyboard/partyboard/internal/events"
	"github.com/partyboard/partyboard/internal/game"
	"github.com/partyboard/partyboard/internal/relay"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Statusz reports the connection state machine, authority, and scene.
func Statusz(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, src.Status())
	}
}

// Rosterz reports the current room occupants.
func Rosterz(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster := src.Roster()
		if roster == nil {
			roster = []relay.Actor{}
		}
		writeJSON(w, struct {
			Actors []relay.Actor `json:"actors"`
		}{Actors: roster})
	}
}

// Scorez reports the board economy and the latest balloon scoreboard.
func Scorez(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := src.Records()
		if records == nil {
			records = []events.PlayerRecord{}
		}
		balloon := src.BalloonScores()
		if balloon == nil {
			balloon = []events.ScoreEntry{}
		}
		writeJSON(w, struct {
			Players []events.PlayerRecord `json:"players"`
			Balloon []events.ScoreEntry   `json:"balloon"`
		}{Players: records, Balloon: balloon})
	}
}

// Chatz reports the received chat history.
func Chatz(src Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lines := src.ChatLog()
		if lines == nil {
			lines = []game.ChatLine{}
		}
		writeJSON(w, struct {
			Lines []game.ChatLine `json:"lines"`
		}{Lines: lines})
	}
}
