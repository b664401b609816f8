package rules

import (
	"github.com/cbodonnell/firefades/pkg/game/constants"
)

// missionTeamSizes maps a player count to the required team size of rounds 1 through 5.
var missionTeamSizes = map[int][constants.MaxRoundNumber]int{
	2:  {2, 2, 2, 2, 2},
	3:  {2, 3, 2, 3, 3},
	4:  {2, 3, 2, 3, 3},
	5:  {2, 3, 2, 3, 3},
	6:  {2, 3, 4, 3, 4},
	7:  {2, 3, 3, 4, 4},
	8:  {3, 4, 4, 5, 5},
	9:  {3, 4, 4, 5, 5},
	10: {3, 4, 4, 5, 5},
}

// ShapeshifterCount returns how many players are secretly shapeshifters in a game
// of the given size. Valid player counts are 2 through 10.
func ShapeshifterCount(playerCount int) (int, error) {
	if playerCount < constants.MinPlayerCount {
		return 0, newError(ErrorKindInvalidConfiguration, "need at least %d players, got %d", constants.MinPlayerCount, playerCount)
	}
	if playerCount > constants.MaxPlayerCount {
		return 0, newError(ErrorKindInvalidConfiguration, "maximum %d players allowed, got %d", constants.MaxPlayerCount, playerCount)
	}

	switch {
	case playerCount >= 10:
		return 4, nil
	case playerCount >= 7:
		return 3, nil
	case playerCount >= 5:
		return 2, nil
	default:
		return 1, nil
	}
}

// TeamSize returns the mission team size for a round.
func TeamSize(playerCount int, roundNumber int) (int, error) {
	if roundNumber < constants.FirstRoundNumber || roundNumber > constants.MaxRoundNumber {
		return 0, newError(ErrorKindRange, "round number is out of range: %d", roundNumber)
	}

	sizes, ok := missionTeamSizes[playerCount]
	if !ok {
		return 0, newError(ErrorKindUnsupportedConfiguration, "unsupported player count: %d", playerCount)
	}

	return sizes[roundNumber-1], nil
}

// NextLeaderSeat returns the seat after the given one, wrapping to the first seat
// after the last.
func NextLeaderSeat(seat int, playerCount int) int {
	if seat >= playerCount || seat < constants.FirstSeat {
		return constants.FirstSeat
	}
	return seat + 1
}
