// internal/game/seat_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIndexCircular(t *testing.T) {
	tests := []struct {
		i, n, dir, want int
	}{
		{0, 3, 1, 1},
		{2, 3, 1, 0},
		{0, 3, -1, 2},
		{1, 3, -1, 0},
		{0, 1, 1, 0},
		{4, 0, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextIndexCircular(tt.i, tt.n, tt.dir), "%+v", tt)
	}
}

func TestNextAliveSeat(t *testing.T) {
	alive := []int{0, 2, 3, 5}
	tests := []struct {
		name            string
		from, dir, skip int
		want            int
	}{
		{"next clockwise", 2, 1, 0, 3},
		{"wraps clockwise", 5, 1, 0, 0},
		{"next counter", 2, -1, 0, 0},
		{"wraps counter", 0, -1, 0, 5},
		{"skip one", 0, 1, 1, 3},
		{"skip one counter", 3, -1, 1, 0},
		{"skip around the ring", 5, 1, 4, 0},
		{"from eliminated seat goes to its neighbour", 1, 1, 0, 2},
		{"from eliminated seat counter", 4, -1, 0, 3},
		{"from eliminated seat past the end", 6, 1, 0, 0},
		{"from eliminated seat with skip", 1, 1, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextAliveSeat(tt.from, tt.dir, tt.skip, alive)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := NextAliveSeat(0, 1, 0, nil)
	assert.False(t, ok)

	solo, ok := NextAliveSeat(4, 1, 2, []int{4})
	require.True(t, ok)
	assert.Equal(t, 4, solo)
}

func TestNextAliveSeatFromMissingSeat(t *testing.T) {
	alive := []int{0, 2, 4}
	next, ok := NextAliveSeat(3, 1, 0, alive)
	require.True(t, ok)
	assert.Equal(t, 4, next)
	next, ok = NextAliveSeat(3, -1, 0, alive)
	require.True(t, ok)
	assert.Equal(t, 2, next)

	// Seat 0 just busted: its neighbour in the direction of play goes next.
	after := []int{1, 2}
	next, ok = NextAliveSeat(0, 1, 0, after)
	require.True(t, ok)
	assert.Equal(t, 1, next)
	next, ok = NextAliveSeat(0, -1, 0, after)
	require.True(t, ok)
	assert.Equal(t, 2, next)
}

func TestNextAliveSeatRoundTrip(t *testing.T) {
	rings := [][]int{{0, 1}, {0, 2, 4}, {1, 2, 3, 4, 5, 6}, {3}}
	for _, alive := range rings {
		for _, from := range alive {
			for _, dir := range []int{1, -1} {
				there, ok := NextAliveSeat(from, dir, 0, alive)
				require.True(t, ok)
				back, ok := NextAliveSeat(there, -dir, 0, alive)
				require.True(t, ok)
				assert.Equal(t, from, back, "alive=%v from=%d dir=%d", alive, from, dir)
			}
		}
	}
}

func TestSeatRing(t *testing.T) {
	ring := NewSeatRing([]int{4, 0, 2}, 0, 1)
	assert.Equal(t, 3, ring.Len())
	assert.Equal(t, 2, ring.Advance(0))
	assert.Equal(t, 4, ring.Advance(0))

	ring.Reverse()
	assert.Equal(t, -1, ring.Direction())
	assert.Equal(t, 2, ring.Advance(0))
	assert.Equal(t, 4, ring.Advance(1))
}
