// internal/sim/bot.go
package sim

import (
	"math/rand/v2"

	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// Bot picks a legal move for whoever has something to do. It plays for
// every seat at once and never looks at hidden information it would not
// have at the table, except to pick its own cards.
type Bot struct {
	Rand *rand.Rand
	// TimeoutRate is the chance a stuck player lets the clock run out.
	TimeoutRate float64
}

// Next returns the actor and action for round r, or a nil action when the
// match is over.
func (b *Bot) Next(r models.Round) (string, game.Action) {
	dealer := ""
	if idx := r.PlayerBySeat(r.DealerSeat); idx >= 0 {
		dealer = r.Players[idx].ID
	}

	switch r.RoundStatus {
	case models.StatusLobby:
		for _, p := range r.Players {
			if !p.Ready {
				return p.ID, game.ToggleReady{}
			}
		}
		return dealer, game.BeginRound{}

	case models.StatusPreplay:
		for _, p := range r.Players {
			hand := r.Hands[p.Seat]
			if p.Alive && game.CountRank(hand, models.Seven) > 0 {
				return p.ID, game.ResolveSevens{Suit: b.favouriteSuit(hand)}
			}
		}
		return dealer, game.BeginFirstTurn{}

	case models.StatusPlaying:
		if r.TurnSeat == nil {
			return "", nil
		}
		p := r.Players[r.PlayerBySeat(*r.TurnSeat)]
		hand := r.Hands[p.Seat]
		plays := game.PlayableCards(hand, r.TopCard, r.ForcedSuit, r.Pending)
		if len(plays) > 0 {
			card := b.choose(plays)
			return p.ID, game.PlayCard{Card: card, Suit: b.favouriteSuit(without(hand, card))}
		}
		if b.TimeoutRate > 0 && b.Rand.Float64() < b.TimeoutRate {
			return game.SystemActor, game.TimeoutPickupAndPass{
				ExpectedTurnSeat:      r.TurnSeat,
				ExpectedTurnStartedAt: r.TurnStartedAt,
			}
		}
		return p.ID, game.DrawOrPickup{SaveSuit: b.favouriteSuit(hand)}

	case models.StatusFinishedRound:
		return r.Players[b.Rand.IntN(len(r.Players))].ID, game.ContinueToNextRound{}
	}
	return "", nil
}

// choose holds eights back while anything else will do.
func (b *Bot) choose(plays []models.Card) models.Card {
	var others []models.Card
	for _, c := range plays {
		if c.Rank != models.Eight {
			others = append(others, c)
		}
	}
	if len(others) > 0 {
		return others[b.Rand.IntN(len(others))]
	}
	return plays[b.Rand.IntN(len(plays))]
}

// favouriteSuit is the suit the hand holds most of, ties broken at random.
func (b *Bot) favouriteSuit(hand []models.Card) models.Suit {
	counts := map[models.Suit]int{}
	for _, c := range hand {
		counts[c.Suit]++
	}
	best := []models.Suit{}
	most := -1
	for _, s := range models.Suits {
		switch {
		case counts[s] > most:
			best, most = []models.Suit{s}, counts[s]
		case counts[s] == most:
			best = append(best, s)
		}
	}
	return best[b.Rand.IntN(len(best))]
}

func without(hand []models.Card, card models.Card) []models.Card {
	out := make([]models.Card, 0, len(hand))
	removed := false
	for _, c := range hand {
		if !removed && c == card {
			removed = true
			continue
		}
		out = append(out, c)
	}
	return out
}
