package game

import (
	"fmt"

	"github.com/cbodonnell/firefades/pkg/game/constants"
	"github.com/cbodonnell/firefades/pkg/game/roles"
	"github.com/cbodonnell/firefades/pkg/game/rounds"
	"github.com/cbodonnell/firefades/pkg/game/rules"
	"github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/messages"
)

// Director runs the cross-round flow of a game: starting it, moving to the
// next round after a mission and ending it once a faction wins.
type Director struct {
	assigner *roles.Assigner
}

type NewDirectorOptions struct {
	// RandomSource picks shapeshifters. Defaults to roles.DefaultRandomSource.
	RandomSource roles.RandomSource
}

func NewDirector(opts NewDirectorOptions) *Director {
	return &Director{
		assigner: roles.NewAssigner(opts.RandomSource),
	}
}

// StartGame assigns roles and opens round 1.
func (d *Director) StartGame(game *types.Game) ([]messages.Event, error) {
	if !game.IsInLobby() {
		return nil, rules.InvalidState("game %s has already started", game.Code)
	}
	if !game.HasEnoughPlayers() {
		return nil, rules.InvalidState("game %s needs at least %d players, has %d", game.Code, constants.MinPlayerCount, len(game.Players))
	}

	game.PackSeats()
	teamSize, err := rules.TeamSize(len(game.Players), constants.FirstRoundNumber)
	if err != nil {
		return nil, err
	}
	if err := d.assigner.AssignRoles(game.Players); err != nil {
		return nil, err
	}

	game.Status = types.GameStatusInProgress
	game.RoundCounter = constants.FirstRoundNumber
	game.LeaderSeat = constants.FirstSeat
	game.Rounds = append(game.Rounds, types.NewRound(game.RoundCounter, game.LeaderSeat, teamSize))

	return []messages.Event{
		messages.NewEvent(messages.MessageTypeServerGameStarted, &messages.ServerGameStarted{
			RoundNumber: game.RoundCounter,
			LeaderSeat:  game.LeaderSeat,
		}),
	}, nil
}

// AdvanceRound rotates the leader and opens the next round.
func (d *Director) AdvanceRound(game *types.Game) ([]messages.Event, error) {
	if !game.IsInProgress() {
		return nil, rules.InvalidState("game %s is not in progress", game.Code)
	}

	roundNumber := game.RoundCounter + 1
	teamSize, err := rules.TeamSize(len(game.Players), roundNumber)
	if err != nil {
		return nil, err
	}

	game.RoundCounter = roundNumber
	game.LeaderSeat = game.NextLeaderSeat()
	game.Rounds = append(game.Rounds, types.NewRound(game.RoundCounter, game.LeaderSeat, teamSize))

	return []messages.Event{
		messages.NewEvent(messages.MessageTypeServerStartNextRound, &messages.ServerStartNextRound{
			RoundNumber: game.RoundCounter,
			LeaderSeat:  game.LeaderSeat,
		}),
	}, nil
}

// EndGame finishes the game with the given winner.
func (d *Director) EndGame(game *types.Game, winner types.GameResult, reason string) []messages.Event {
	game.Status = types.GameStatusFinished
	game.Winner = winner
	game.EndReason = reason

	return []messages.Event{
		messages.NewEvent(messages.MessageTypeServerGameEnded, &messages.ServerGameEnded{
			Winner: string(winner),
			Reason: reason,
		}),
	}
}

// Resolve applies the game-level consequences of a round transition.
func (d *Director) Resolve(game *types.Game, resolution rounds.Resolution) ([]messages.Event, error) {
	switch resolution.Kind {
	case rounds.ResolutionRejectionLimit:
		return d.EndGame(game, types.GameResultShapeshifter, constants.ReasonTooManyRejections), nil
	case rounds.ResolutionMissionCompleted:
		switch {
		case game.SuccessCount >= constants.PointsNeededToWin:
			return d.EndGame(game, types.GameResultHuman, constants.ReasonMissionsSucceeded), nil
		case game.SabotageCount >= constants.PointsNeededToWin:
			return d.EndGame(game, types.GameResultShapeshifter, constants.ReasonMissionsSabotaged), nil
		}
		events, err := d.AdvanceRound(game)
		if err != nil {
			return nil, fmt.Errorf("failed to advance round: %w", err)
		}
		return events, nil
	default:
		return nil, nil
	}
}
