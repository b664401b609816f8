package tally

import (
	"github.com/cbodonnell/firefades/pkg/game/constants"
	"github.com/cbodonnell/firefades/pkg/game/types"
)

// TeamTally is the outcome of counting the votes on a proposed team.
type TeamTally struct {
	// Approvals includes the leader's implicit approval
	Approvals  int
	Rejections int
	Approved   bool
}

// CountTeamVotes counts the votes on a team. A team is approved when the
// approvals, plus the leader's implicit approval, outnumber the rejections.
func CountTeamVotes(votes []types.TeamVote) TeamTally {
	tally := TeamTally{
		Approvals: constants.LeaderImplicitApprovals,
	}
	for _, vote := range votes {
		if vote.Approved {
			tally.Approvals++
		} else {
			tally.Rejections++
		}
	}
	tally.Approved = tally.Approvals > tally.Rejections
	return tally
}

// RequiredTeamVotes returns how many explicit votes resolve a team proposal:
// every player except the leader.
func RequiredTeamVotes(playerCount int) int {
	return playerCount - 1
}

// TeamVoteComplete returns true once every non-leader player has voted.
func TeamVoteComplete(votes []types.TeamVote, playerCount int) bool {
	return len(votes) >= RequiredTeamVotes(playerCount)
}

// HasVotedOnTeam returns true if the seat already voted on the team.
func HasVotedOnTeam(votes []types.TeamVote, seat int) bool {
	for _, vote := range votes {
		if vote.Seat == seat {
			return true
		}
	}
	return false
}

// MissionTally is the outcome of counting the secret votes of a mission.
type MissionTally struct {
	Successes int
	Failures  int
	Result    types.RoundResult
}

// CountMissionVotes counts the votes of a mission. A single failure sabotages it.
func CountMissionVotes(votes []types.MissionVote) MissionTally {
	tally := MissionTally{}
	for _, vote := range votes {
		if vote.Success {
			tally.Successes++
		} else {
			tally.Failures++
		}
	}
	if tally.Failures == 0 {
		tally.Result = types.RoundResultSuccess
	} else {
		tally.Result = types.RoundResultSabotage
	}
	return tally
}

// MissionVoteComplete returns true once every team member has voted.
func MissionVoteComplete(votes []types.MissionVote, teamSize int) bool {
	return len(votes) >= teamSize
}

// HasVotedOnMission returns true if the seat already voted on the mission.
func HasVotedOnMission(votes []types.MissionVote, seat int) bool {
	for _, vote := range votes {
		if vote.Seat == seat {
			return true
		}
	}
	return false
}
