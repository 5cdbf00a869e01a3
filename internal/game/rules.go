// internal/game/rules.go
package game

import "github.com/jason-s-yu/unluckysevens/internal/models"

// CountRank counts the cards in hand with the given rank.
func CountRank(hand []models.Card, rank int) int {
	n := 0
	for _, c := range hand {
		if c.Rank == rank {
			n++
		}
	}
	return n
}

// CanCoverSevens reports whether the hand holds at least one eight per seven.
func CanCoverSevens(hand []models.Card) bool {
	sevens := CountRank(hand, models.Seven)
	if sevens == 0 {
		return true
	}
	return CountRank(hand, models.Eight) >= sevens
}

// SevensResolution is the outcome of saving every seven in a hand. Sevens[i]
// is covered by Eights[i]; both slices always have the same length.
type SevensResolution struct {
	Hand   []models.Card
	Sevens []models.Card
	Eights []models.Card
}

// Resolved is the number of sevens that were saved.
func (s SevensResolution) Resolved() int {
	return len(s.Sevens)
}

// ResolveAllSevens removes every seven from hand together with one eight per
// seven, taking eights in hand order. It fails without touching hand when
// there are fewer eights than sevens. A hand without sevens comes back as an
// equal copy with nothing resolved.
func ResolveAllSevens(hand []models.Card) (SevensResolution, error) {
	sevens := CountRank(hand, models.Seven)
	if sevens == 0 {
		return SevensResolution{Hand: append([]models.Card{}, hand...)}, nil
	}
	if CountRank(hand, models.Eight) < sevens {
		return SevensResolution{}, ErrNotEnoughEights
	}

	res := SevensResolution{Hand: make([]models.Card, 0, len(hand)-2*sevens)}
	needEights := sevens
	for _, c := range hand {
		switch {
		case c.Rank == models.Seven:
			res.Sevens = append(res.Sevens, c)
		case c.Rank == models.Eight && needEights > 0:
			res.Eights = append(res.Eights, c)
			needEights--
		default:
			res.Hand = append(res.Hand, c)
		}
	}
	return res, nil
}

// CanMatch is the ordinary legality check used when no pickup is pending.
func CanMatch(card models.Card, top *models.Card, forcedSuit models.Suit) bool {
	if card.Rank == models.Eight {
		return true
	}
	if top == nil {
		return forcedSuit != models.NoSuit && card.Suit == forcedSuit
	}
	// An eight on top with no nominated suit leaves the next play open.
	if top.Rank == models.Eight && forcedSuit == models.NoSuit {
		return true
	}
	suit := top.Suit
	if forcedSuit != models.NoSuit {
		suit = forcedSuit
	}
	return card.Suit == suit || card.Rank == top.Rank
}

// PlayableCards returns the legal plays for hand. While a pickup is pending
// only defense cards qualify and an eight never does: against a two chain any
// two or the Q♠, against a Q♠ chain only the 2♠ or another Q♠. An empty result
// means the player has to draw.
func PlayableCards(hand []models.Card, top *models.Card, forcedSuit models.Suit, pending models.Pending) []models.Card {
	out := []models.Card{}
	if pending.Active() {
		for _, c := range hand {
			if isDefense(c, pending.Type) {
				out = append(out, c)
			}
		}
		return out
	}
	for _, c := range hand {
		if CanMatch(c, top, forcedSuit) {
			out = append(out, c)
		}
	}
	return out
}

// isDefense treats an unknown pending type as a two chain.
func isDefense(c models.Card, t models.PendingType) bool {
	if c.IsQueenOfSpades() {
		return true
	}
	if t == models.PendingQueenSpades {
		return c.IsTwoOfSpades()
	}
	return c.Rank == models.Two
}

func containsCard(cards []models.Card, c models.Card) bool {
	return indexOfCard(cards, c) >= 0
}

func indexOfCard(cards []models.Card, c models.Card) int {
	for i, x := range cards {
		if x == c {
			return i
		}
	}
	return -1
}

func removeCardAt(cards []models.Card, i int) []models.Card {
	out := make([]models.Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}
