package roles

import (
	"testing"

	"github.com/cbodonnell/firefades/pkg/game/rules"
	"github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSource returns preset values in order, wrapped into [0, n).
type sequenceSource struct {
	values []int
	next   int
}

func (s *sequenceSource) IntN(n int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

func newPlayers(count int) []*types.Player {
	players := make([]*types.Player, count)
	for i := range players {
		players[i] = types.NewPlayer(i+1, types.Identity{UserID: string(rune('a' + i))})
	}
	return players
}

func shapeshifterSeats(players []*types.Player) []int {
	seats := make([]int, 0)
	for _, p := range players {
		if p.IsShapeshifter() {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

func TestAssigner_AssignRoles_Deterministic(t *testing.T) {
	tests := []struct {
		name        string
		playerCount int
		values      []int
		want        []int
	}{
		{
			// i=0: j=0+0 -> index 0
			name:        "two players picks first seat",
			playerCount: 2,
			values:      []int{0},
			want:        []int{1},
		},
		{
			// i=0: j=0+3 -> swap 0,3; i=1: j=1+0 -> index 1
			name:        "five players",
			playerCount: 5,
			values:      []int{3, 0},
			want:        []int{2, 4},
		},
		{
			// i=0: j=9; i=1: j=1+8=9 (holds 0); i=2: j=2+0; i=3: j=3+0
			name:        "ten players",
			playerCount: 10,
			values:      []int{9, 8, 0, 0},
			want:        []int{1, 3, 4, 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := newPlayers(tt.playerCount)
			assigner := NewAssigner(&sequenceSource{values: tt.values})

			require.NoError(t, assigner.AssignRoles(players))
			assert.ElementsMatch(t, tt.want, shapeshifterSeats(players))
		})
	}
}

func TestAssigner_AssignRoles_Counts(t *testing.T) {
	assigner := NewAssigner(nil)
	for playerCount := 2; playerCount <= 10; playerCount++ {
		players := newPlayers(playerCount)
		require.NoError(t, assigner.AssignRoles(players))

		want, err := rules.ShapeshifterCount(playerCount)
		require.NoError(t, err)
		assert.Len(t, shapeshifterSeats(players), want)

		for i, p := range players {
			assert.Equal(t, i+1, p.Seat, "seats must not change")
			assert.Equal(t, string(rune('a'+i)), p.Identity.UserID, "identities must not change")
		}
	}
}

func TestAssigner_AssignRoles_Reassign(t *testing.T) {
	players := newPlayers(5)
	assigner := NewAssigner(&sequenceSource{values: []int{0, 0, 4, 3}})

	require.NoError(t, assigner.AssignRoles(players))
	first := shapeshifterSeats(players)
	require.NoError(t, assigner.AssignRoles(players))
	second := shapeshifterSeats(players)

	assert.Len(t, first, 2)
	assert.Len(t, second, 2)
	assert.ElementsMatch(t, []int{1, 2}, first)
	assert.ElementsMatch(t, []int{5, 1}, second)
}

func TestAssigner_AssignRoles_InvalidPlayerCount(t *testing.T) {
	assigner := NewAssigner(nil)

	err := assigner.AssignRoles(newPlayers(1))
	assert.True(t, rules.IsInvalidConfiguration(err))

	err = assigner.AssignRoles(newPlayers(11))
	assert.True(t, rules.IsInvalidConfiguration(err))
}

func TestAssigner_AssignRoles_NoSeatBias(t *testing.T) {
	const runs = 6000
	const playerCount = 6
	assigner := NewAssigner(nil)
	counts := make(map[int]int)

	for i := 0; i < runs; i++ {
		players := newPlayers(playerCount)
		require.NoError(t, assigner.AssignRoles(players))
		for _, seat := range shapeshifterSeats(players) {
			counts[seat]++
		}
	}

	// 2 of 6 seats per run: each seat expects runs/3 picks
	expected := runs / 3
	for seat := 1; seat <= playerCount; seat++ {
		assert.InDelta(t, expected, counts[seat], float64(expected)*0.15, "seat %d", seat)
	}
}
