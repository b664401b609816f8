package game

import (
	"github.com/cbodonnell/firefades/pkg/game/types"
)

type ActionType string

const (
	ActionTypeJoin          ActionType = "join"
	ActionTypeLeave         ActionType = "leave"
	ActionTypeStart         ActionType = "start"
	ActionTypeProposeTeam   ActionType = "propose_team"
	ActionTypeVoteOnTeam    ActionType = "vote_team"
	ActionTypeVoteOnMission ActionType = "vote_mission"
	ActionTypeConnect       ActionType = "connect"
	ActionTypeDisconnect    ActionType = "disconnect"
	ActionTypeSnapshot      ActionType = "snapshot"
)

// Action is a request from a player, processed in order by the game's session.
type Action struct {
	Type     ActionType
	Identity types.Identity
	// Seats is the proposed team for ActionTypeProposeTeam
	Seats []int
	// Approved is the team vote for ActionTypeVoteOnTeam
	Approved bool
	// Success is the mission vote for ActionTypeVoteOnMission
	Success bool

	reply    chan actionReply
	callback func(Result, error)
}

// WithCallback registers a function the session calls with the outcome of
// an action queued through Enqueue. It runs on the session goroutine and
// must not block.
func (a *Action) WithCallback(callback func(Result, error)) *Action {
	a.callback = callback
	return a
}

// Result reports how a session handled an action.
type Result struct {
	// Accepted is false when the action was ignored as invalid for the
	// current state of the game.
	Accepted bool
	// Game is a copy of the game after the action.
	Game *types.Game
}

type actionReply struct {
	result Result
	err    error
}

func NewJoinAction(identity types.Identity) *Action {
	return &Action{Type: ActionTypeJoin, Identity: identity}
}

func NewLeaveAction(identity types.Identity) *Action {
	return &Action{Type: ActionTypeLeave, Identity: identity}
}

func NewStartAction(identity types.Identity) *Action {
	return &Action{Type: ActionTypeStart, Identity: identity}
}

func NewProposeTeamAction(identity types.Identity, seats []int) *Action {
	return &Action{Type: ActionTypeProposeTeam, Identity: identity, Seats: seats}
}

func NewVoteOnTeamAction(identity types.Identity, approved bool) *Action {
	return &Action{Type: ActionTypeVoteOnTeam, Identity: identity, Approved: approved}
}

func NewVoteOnMissionAction(identity types.Identity, success bool) *Action {
	return &Action{Type: ActionTypeVoteOnMission, Identity: identity, Success: success}
}

func NewConnectAction(identity types.Identity) *Action {
	return &Action{Type: ActionTypeConnect, Identity: identity}
}

func NewDisconnectAction(identity types.Identity) *Action {
	return &Action{Type: ActionTypeDisconnect, Identity: identity}
}

func NewSnapshotAction(identity types.Identity) *Action {
	return &Action{Type: ActionTypeSnapshot, Identity: identity}
}
