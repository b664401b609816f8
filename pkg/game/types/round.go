package types

// TeamVote is a single approval vote on a proposed team.
type TeamVote struct {
	Seat     int  `json:"seat"`
	Approved bool `json:"approved"`
}

// MissionVote is a single secret vote cast by a mission team member.
type MissionVote struct {
	Seat    int  `json:"seat"`
	Success bool `json:"success"`
}

// Team is a leader's proposal for a round. Rejected and resolved teams
// are kept inactive for audit.
type Team struct {
	ID       int        `json:"id"`
	Members  []int      `json:"members"`
	IsActive bool       `json:"isActive"`
	Votes    []TeamVote `json:"votes"`
}

func (t *Team) Copy() *Team {
	return &Team{
		ID:       t.ID,
		Members:  append([]int(nil), t.Members...),
		IsActive: t.IsActive,
		Votes:    append([]TeamVote(nil), t.Votes...),
	}
}

// HasMember returns true if the seat is on the team.
func (t *Team) HasMember(seat int) bool {
	for _, member := range t.Members {
		if member == seat {
			return true
		}
	}
	return false
}

type Round struct {
	RoundNumber  int           `json:"roundNumber"`
	LeaderSeat   int           `json:"leaderSeat"`
	TeamSize     int           `json:"teamSize"`
	Status       RoundStatus   `json:"status"`
	Result       RoundResult   `json:"result"`
	Teams        []*Team       `json:"teams"`
	MissionVotes []MissionVote `json:"missionVotes"`
}

func NewRound(roundNumber int, leaderSeat int, teamSize int) *Round {
	return &Round{
		RoundNumber: roundNumber,
		LeaderSeat:  leaderSeat,
		TeamSize:    teamSize,
		Status:      RoundStatusTeamSelection,
		Result:      RoundResultUnknown,
		Teams:       make([]*Team, 0),
	}
}

func (r *Round) Copy() *Round {
	copy := &Round{
		RoundNumber:  r.RoundNumber,
		LeaderSeat:   r.LeaderSeat,
		TeamSize:     r.TeamSize,
		Status:       r.Status,
		Result:       r.Result,
		Teams:        make([]*Team, 0, len(r.Teams)),
		MissionVotes: append([]MissionVote(nil), r.MissionVotes...),
	}
	for _, team := range r.Teams {
		copy.Teams = append(copy.Teams, team.Copy())
	}
	return copy
}

// ActiveTeam returns the round's active team, or nil if there is none.
func (r *Round) ActiveTeam() *Team {
	for _, team := range r.Teams {
		if team.IsActive {
			return team
		}
	}
	return nil
}

// DeactivateTeams marks every team of the round inactive.
func (r *Round) DeactivateTeams() {
	for _, team := range r.Teams {
		team.IsActive = false
	}
}

func (r *Round) RequiresTeamSelection() bool {
	return r.Status == RoundStatusTeamSelection
}

func (r *Round) IsVotingPhase() bool {
	return r.Status == RoundStatusVoteOnTeam
}

func (r *Round) IsMissionPhase() bool {
	return r.Status == RoundStatusSecretChoices
}

func (r *Round) IsCompleted() bool {
	return r.Status == RoundStatusCompleted
}
