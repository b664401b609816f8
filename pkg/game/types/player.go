package types

type Player struct {
	// Seat is the 1-based position of the player at the table
	Seat        int        `json:"seat"`
	Role        PlayerRole `json:"role"`
	IsConnected bool       `json:"isConnected"`
	// HasLeft is set when the player explicitly leaves a started game
	HasLeft     bool       `json:"hasLeft,omitempty"`
	Identity    Identity   `json:"identity"`
}

func NewPlayer(seat int, identity Identity) *Player {
	return &Player{
		Seat:        seat,
		Role:        PlayerRoleHuman,
		IsConnected: true,
		Identity:    identity,
	}
}

func (p *Player) Copy() *Player {
	copy := *p
	return &copy
}

func (p *Player) IsShapeshifter() bool {
	return p.Role == PlayerRoleShapeshifter
}
