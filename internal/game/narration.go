// internal/game/narration.go
package game

import (
	"fmt"
	"strings"

	"github.com/jason-s-yu/unluckysevens/internal/models"
)

// lastEvent strings shown on the table after each action.

func narrateJoin(name string, seat int) string {
	return fmt.Sprintf("%s joined (seat %d).", name, seat+1)
}

func narrateReady(name string, ready bool) string {
	if ready {
		return name + " is READY"
	}
	return name + " is NOT ready"
}

func narrateDeal(round int, top models.Card, out []string) string {
	msg := fmt.Sprintf("Round %d dealt. Top card is %s.", round, CardString(top))
	if len(out) > 0 {
		msg += fmt.Sprintf(" %s OUT on the deal.", strings.Join(out, ", "))
	}
	return msg
}

func narrateDealDraw(round int) string {
	return fmt.Sprintf("Round %d dealt. Nobody could cover their 7s. Draw.", round)
}

func narrateDealWin(round int, winner string) string {
	return fmt.Sprintf("Round %d dealt. %s is the only one left and wins the round.", round, winner)
}

func narrateResolve(name string, sevens int, suit models.Suit) string {
	return fmt.Sprintf("%s saved %d seven(s) with 8(s). Suit is now %s.", name, sevens, SuitLabel(suit))
}

func narrateFirstTurn(name string) string {
	return fmt.Sprintf("Play begins. %s to act.", name)
}

func narrateContinue(dealer string) string {
	return fmt.Sprintf("Back to the lobby. %s deals next.", dealer)
}

func narratePlay(name string, card models.Card, forced models.Suit) string {
	msg := fmt.Sprintf("%s played %s.", name, CardString(card))
	if forced != models.NoSuit {
		msg += fmt.Sprintf(" Suit is now %s.", SuitLabel(forced))
	}
	return msg
}

func narrateEmptied(name string) string {
	return name + " emptied their hand!"
}

func narratePass(name string) string {
	return name + " passed."
}

func pickedUp(out pickupOutcome) string {
	msg := fmt.Sprintf("picked up %d", out.drawn)
	if out.penalty {
		msg += " (penalty)"
	}
	if out.drawn < out.requested {
		msg += fmt.Sprintf(" of %d", out.requested)
	}
	return msg
}

func narrateCanPlay(name string, out pickupOutcome) string {
	return fmt.Sprintf("%s %s and can now play.", name, pickedUp(out))
}

func narrateNoPlay(name string, out pickupOutcome) string {
	return fmt.Sprintf("%s %s. No play, turn passes.", name, pickedUp(out))
}

func narrateTimeout(name string, out pickupOutcome) string {
	return fmt.Sprintf("%s TIMED OUT, %s. Turn passes.", name, pickedUp(out))
}

func narrateBust(name string, out pickupOutcome, timedOut bool) string {
	prefix := name
	if timedOut {
		prefix += " TIMED OUT,"
	}
	return fmt.Sprintf("%s %s and hit %d seven(s). OUT.", prefix, pickedUp(out), out.sevens)
}

func narrateSaved(name string, out pickupOutcome, timedOut bool) string {
	prefix := name
	if timedOut {
		prefix += " TIMED OUT,"
	}
	msg := fmt.Sprintf("%s %s, hit %d seven(s), saved with 8(s). Suit is now %s.",
		prefix, pickedUp(out), out.sevens, SuitLabel(out.suit))
	if timedOut {
		msg += " Turn passes."
	}
	return msg
}
