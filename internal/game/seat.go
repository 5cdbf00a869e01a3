// internal/game/seat.go
package game

import "sort"

// NextIndexCircular moves i one step in dir (+1 or -1) around a ring of n.
func NextIndexCircular(i, n, dir int) int {
	if n <= 0 {
		return 0
	}
	return ((i+normDir(dir))%n + n) % n
}

// SeatRing is the circular order of alive seats used for every turn move:
// a plain pass, a Jack skip and a Four reversal are all Advance calls.
type SeatRing struct {
	seats  []int
	pos    int
	dir    int
	member bool
}

// NewSeatRing positions a ring over seats at current. When current is not in
// seats (an eliminated player, for instance) the ring sits in the gap where
// current would be, so the first step lands on its neighbour in dir: from 3
// over [0 2 4] that is 4 clockwise and 2 counter. It never restarts at the
// lowest seat, which would skip players after a bust at seat 0.
func NewSeatRing(seats []int, current, dir int) *SeatRing {
	sorted := append([]int(nil), seats...)
	sort.Ints(sorted)
	r := &SeatRing{seats: sorted, dir: normDir(dir)}
	r.pos = sort.SearchInts(sorted, current)
	r.member = r.pos < len(sorted) && sorted[r.pos] == current
	return r
}

// Len is the number of seats in the ring.
func (r *SeatRing) Len() int {
	return len(r.seats)
}

// Reverse flips the travel direction.
func (r *SeatRing) Reverse() {
	r.dir = -r.dir
}

// Direction is +1 or -1.
func (r *SeatRing) Direction() int {
	return r.dir
}

// Advance moves to the next seat and then skip more seats in the same
// direction, returning the seat it lands on. The ring must not be empty.
func (r *SeatRing) Advance(skip int) int {
	n := len(r.seats)
	steps := 1 + skip
	if !r.member {
		if r.dir > 0 {
			r.pos %= n
		} else {
			r.pos = (r.pos - 1 + n) % n
		}
		r.member = true
		steps--
	}
	for i := 0; i < steps; i++ {
		r.pos = NextIndexCircular(r.pos, n, r.dir)
	}
	return r.seats[r.pos]
}

// NextAliveSeat returns the seat skip+1 steps from fromSeat in dir among the
// alive seats. ok is false when nobody is alive.
func NextAliveSeat(fromSeat, dir, skip int, alive []int) (seat int, ok bool) {
	if len(alive) == 0 {
		return 0, false
	}
	return NewSeatRing(alive, fromSeat, dir).Advance(skip), true
}

func normDir(dir int) int {
	if dir < 0 {
		return -1
	}
	return 1
}
