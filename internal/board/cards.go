package board

import "math/rand"

// Card is a chance-tile event card. Effects are applied by the master to the
// landing player's economic record.
type Card struct {
	ID          int
	Description string
	Money       int  // delta, may be negative
	MoveDelta   int  // relative board movement, may be negative
	MoveToStart bool // overrides MoveDelta
	ExtraTurn   bool
	SkipTurn    bool
}

// deck is the fixed card set. Drawing is uniform with replacement.
var deck = []Card{
	{ID: 1, Description: "You found a wallet on the street! Gain money.", Money: 200},
	{ID: 2, Description: "Tax season! Pay income tax.", Money: -150},
	{ID: 3, Description: "Lucky day! Roll dice again and gain money.", Money: 100, ExtraTurn: true},
	{ID: 4, Description: "Speeding ticket! Pay fine and lose a turn.", Money: -80, SkipTurn: true},
	{ID: 5, Description: "Bank error in your favor! Collect money.", Money: 300},
	{ID: 6, Description: "Charity donation! Lose money but gain reputation.", Money: -100},
	{ID: 7, Description: "Stock market boom! Your investments pay off.", Money: 250},
	{ID: 8, Description: "Medical bills! Unexpected health costs.", Money: -120},
	{ID: 9, Description: "Lottery winner! Big cash prize!", Money: 500},
	{ID: 10, Description: "Move to GO! Teleport to start and collect bonus.", Money: 200, MoveToStart: true},
	{ID: 11, Description: "Go back 3 spaces! Move backwards.", MoveDelta: -3},
}

// DrawCard picks a random card.
func DrawCard(rng *rand.Rand) Card {
	return deck[rng.Intn(len(deck))]
}

// CardByID resolves a card broadcast by id, so followers show the exact card
// the master drew rather than drawing their own.
func CardByID(id int) (Card, bool) {
	for _, c := range deck {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}
