// Package rounds implements the phase transitions of a single round:
// TeamSelection -> VoteOnTeam -> {TeamSelection | SecretChoices} -> Completed.
//
// Each transition mutates the game it is given and reports what happened.
// Transitions that are not valid in the current phase, or for the acting
// seat, leave the game untouched and return a Transition with Accepted set
// to false.
package rounds

import (
	"github.com/cbodonnell/firefades/pkg/game/tally"
	"github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/messages"
)

type ResolutionKind int

const (
	// ResolutionNone means the action was recorded but no tally resolved.
	ResolutionNone ResolutionKind = iota
	ResolutionTeamApproved
	ResolutionTeamRejected
	// ResolutionRejectionLimit means the rejected team was the last one allowed.
	ResolutionRejectionLimit
	ResolutionMissionCompleted
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionNone:
		return "none"
	case ResolutionTeamApproved:
		return "team_approved"
	case ResolutionTeamRejected:
		return "team_rejected"
	case ResolutionRejectionLimit:
		return "rejection_limit"
	case ResolutionMissionCompleted:
		return "mission_completed"
	default:
		return "unknown"
	}
}

type Resolution struct {
	Kind         ResolutionKind
	TeamTally    *tally.TeamTally
	MissionTally *tally.MissionTally
}

type Transition struct {
	Accepted   bool
	Events     []messages.Event
	Resolution Resolution
}

func ignored() Transition {
	return Transition{}
}

func accepted(events ...messages.Event) Transition {
	return Transition{
		Accepted: true,
		Events:   events,
	}
}

// ProposeTeam records the leader's team proposal and opens the team vote.
func ProposeTeam(game *types.Game, seat int, seats []int) Transition {
	round := currentRound(game)
	if round == nil || !round.RequiresTeamSelection() {
		return ignored()
	}
	if seat != game.LeaderSeat {
		return ignored()
	}
	if len(seats) != round.TeamSize {
		return ignored()
	}
	seen := make(map[int]bool, len(seats))
	for _, member := range seats {
		if seen[member] || !game.IsValidSeat(member) {
			return ignored()
		}
		seen[member] = true
	}

	game.TeamCounter++
	team := &types.Team{
		ID:       game.TeamCounter,
		Members:  append([]int(nil), seats...),
		IsActive: true,
		Votes:    make([]types.TeamVote, 0),
	}
	round.DeactivateTeams()
	round.Teams = append(round.Teams, team)
	round.Status = types.RoundStatusVoteOnTeam

	return accepted(messages.NewEvent(messages.MessageTypeServerTeamProposed, &messages.ServerTeamProposed{
		TeamID:     team.ID,
		LeaderSeat: game.LeaderSeat,
		Members:    append([]int(nil), team.Members...),
		TeamSize:   round.TeamSize,
	}))
}

// VoteOnTeam records an approval vote. The vote that completes the tally
// resolves the proposal: an approved team moves the round to the mission,
// a rejected one hands selection to the next leader.
func VoteOnTeam(game *types.Game, seat int, approved bool) Transition {
	round := currentRound(game)
	if round == nil || !round.IsVotingPhase() {
		return ignored()
	}
	team := round.ActiveTeam()
	if team == nil {
		return ignored()
	}
	if !game.IsValidSeat(seat) || seat == game.LeaderSeat {
		return ignored()
	}
	if tally.HasVotedOnTeam(team.Votes, seat) {
		return ignored()
	}

	team.Votes = append(team.Votes, types.TeamVote{Seat: seat, Approved: approved})
	transition := accepted(messages.NewEvent(messages.MessageTypeServerPlayerVoted, &messages.ServerPlayerVoted{
		Seat:     seat,
		Approved: approved,
	}))

	if !tally.TeamVoteComplete(team.Votes, len(game.Players)) {
		return transition
	}

	result := tally.CountTeamVotes(team.Votes)
	transition.Events = append(transition.Events, messages.NewEvent(messages.MessageTypeServerTeamVoteResult, &messages.ServerTeamVoteResult{
		TeamID:        team.ID,
		Approvals:     result.Approvals,
		Rejections:    result.Rejections,
		Approved:      result.Approved,
		AttemptNumber: game.ConsecutiveRejectedProposals + 1,
	}))
	transition.Resolution.TeamTally = &result

	if result.Approved {
		game.ConsecutiveRejectedProposals = 0
		round.Status = types.RoundStatusSecretChoices
		transition.Resolution.Kind = ResolutionTeamApproved
		transition.Events = append(transition.Events, messages.NewEvent(messages.MessageTypeServerMissionStarted, &messages.ServerMissionStarted{
			TeamID:      team.ID,
			RoundNumber: round.RoundNumber,
		}))
		return transition
	}

	team.IsActive = false
	round.Status = types.RoundStatusTeamSelection
	game.ConsecutiveRejectedProposals++
	if game.HasReachedMaxRejections() {
		transition.Resolution.Kind = ResolutionRejectionLimit
		return transition
	}

	game.LeaderSeat = game.NextLeaderSeat()
	transition.Resolution.Kind = ResolutionTeamRejected
	return transition
}

// VoteOnMission records a secret mission vote from a member of the active team.
// The vote that completes the tally settles the round's result and scores it.
func VoteOnMission(game *types.Game, seat int, success bool) Transition {
	round := currentRound(game)
	if round == nil || !round.IsMissionPhase() {
		return ignored()
	}
	team := round.ActiveTeam()
	if team == nil || !team.HasMember(seat) {
		return ignored()
	}
	if tally.HasVotedOnMission(round.MissionVotes, seat) {
		return ignored()
	}

	round.MissionVotes = append(round.MissionVotes, types.MissionVote{Seat: seat, Success: success})
	transition := accepted(messages.NewEvent(messages.MessageTypeServerMissionVoteSubmitted, &messages.ServerMissionVoteSubmitted{
		Seat: seat,
	}))

	if !tally.MissionVoteComplete(round.MissionVotes, round.TeamSize) {
		return transition
	}

	result := tally.CountMissionVotes(round.MissionVotes)
	team.IsActive = false
	round.Result = result.Result
	round.Status = types.RoundStatusCompleted
	if result.Result == types.RoundResultSuccess {
		game.SuccessCount++
	} else {
		game.SabotageCount++
	}

	transition.Resolution = Resolution{
		Kind:         ResolutionMissionCompleted,
		MissionTally: &result,
	}
	transition.Events = append(transition.Events, messages.NewEvent(messages.MessageTypeServerMissionVoteResult, &messages.ServerMissionVoteResult{
		RoundNumber:  round.RoundNumber,
		SuccessVotes: result.Successes,
		FailVotes:    result.Failures,
	}))
	return transition
}

func currentRound(game *types.Game) *types.Round {
	if !game.IsInProgress() {
		return nil
	}
	return game.CurrentRound()
}
