package roles

import (
	"math/rand/v2"

	"github.com/cbodonnell/firefades/pkg/game/rules"
	"github.com/cbodonnell/firefades/pkg/game/types"
)

// RandomSource provides the randomness used to pick shapeshifters.
// Implementations must be safe for concurrent use if shared between games.
type RandomSource interface {
	// IntN returns a uniformly distributed integer in [0, n).
	IntN(n int) int
}

type globalRandomSource struct{}

func (globalRandomSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRandomSource uses the goroutine-safe top-level math/rand/v2 generator.
var DefaultRandomSource RandomSource = globalRandomSource{}

// Assigner assigns hidden roles to the players of a game.
type Assigner struct {
	source RandomSource
}

func NewAssigner(source RandomSource) *Assigner {
	if source == nil {
		source = DefaultRandomSource
	}
	return &Assigner{
		source: source,
	}
}

// AssignRoles marks a random set of distinct players as shapeshifters and
// every other player as human. Seats, identities and the player count are
// left untouched. Each call produces a fresh split.
func (a *Assigner) AssignRoles(players []*types.Player) error {
	count, err := rules.ShapeshifterCount(len(players))
	if err != nil {
		return err
	}

	// partial Fisher-Yates over indexes; the first count entries are the pick
	indexes := make([]int, len(players))
	for i := range indexes {
		indexes[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + a.source.IntN(len(indexes)-i)
		indexes[i], indexes[j] = indexes[j], indexes[i]
	}

	for _, player := range players {
		player.Role = types.PlayerRoleHuman
	}
	for _, index := range indexes[:count] {
		players[index].Role = types.PlayerRoleShapeshifter
	}

	return nil
}
