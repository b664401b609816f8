package types

import (
	"sort"

	"github.com/cbodonnell/firefades/pkg/game/constants"
	"github.com/cbodonnell/firefades/pkg/game/rules"
)

type Game struct {
	ID                           string     `json:"id"`
	Code                         string     `json:"code"`
	Status                       GameStatus `json:"status"`
	Winner                       GameResult `json:"winner"`
	EndReason                    string     `json:"endReason,omitempty"`
	LeaderSeat                   int        `json:"leaderSeat"`
	RoundCounter                 int        `json:"roundCounter"`
	SuccessCount                 int        `json:"successCount"`
	SabotageCount                int        `json:"sabotageCount"`
	ConsecutiveRejectedProposals int        `json:"consecutiveRejectedProposals"`
	// TeamCounter is the ID of the most recently proposed team
	TeamCounter int `json:"teamCounter"`
	// Players is ordered by seat
	Players []*Player `json:"players"`
	// Rounds is ordered by round number
	Rounds []*Round `json:"rounds"`
}

func NewGame(id string, code string) *Game {
	return &Game{
		ID:         id,
		Code:       code,
		Status:     GameStatusLobby,
		Winner:     GameResultUnknown,
		LeaderSeat: constants.FirstSeat,
		Players:    make([]*Player, 0),
		Rounds:     make([]*Round, 0),
	}
}

// Copy returns a deep copy of the game.
func (g *Game) Copy() *Game {
	copy := *g
	copy.Players = make([]*Player, 0, len(g.Players))
	for _, player := range g.Players {
		copy.Players = append(copy.Players, player.Copy())
	}
	copy.Rounds = make([]*Round, 0, len(g.Rounds))
	for _, round := range g.Rounds {
		copy.Rounds = append(copy.Rounds, round.Copy())
	}
	return &copy
}

func (g *Game) IsActive() bool {
	return g.Status == GameStatusLobby || g.Status == GameStatusInProgress
}

func (g *Game) IsInLobby() bool {
	return g.Status == GameStatusLobby
}

func (g *Game) IsInProgress() bool {
	return g.Status == GameStatusInProgress
}

func (g *Game) IsFinished() bool {
	return g.Status == GameStatusFinished
}

func (g *Game) HasEnoughPlayers() bool {
	return len(g.Players) >= constants.MinPlayerCount
}

func (g *Game) IsFull() bool {
	return len(g.Players) >= constants.MaxPlayerCount
}

func (g *Game) HasReachedMaxRejections() bool {
	return g.ConsecutiveRejectedProposals >= constants.MaxConsecutiveRejections
}

func (g *Game) HasWinner() bool {
	return g.SuccessCount >= constants.PointsNeededToWin || g.SabotageCount >= constants.PointsNeededToWin
}

func (g *Game) NextLeaderSeat() int {
	return rules.NextLeaderSeat(g.LeaderSeat, len(g.Players))
}

// CurrentRound returns the round with the highest number, or nil before the game starts.
func (g *Game) CurrentRound() *Round {
	var current *Round
	for _, round := range g.Rounds {
		if current == nil || round.RoundNumber > current.RoundNumber {
			current = round
		}
	}
	return current
}

func (g *Game) PlayerBySeat(seat int) *Player {
	for _, player := range g.Players {
		if player.Seat == seat {
			return player
		}
	}
	return nil
}

func (g *Game) PlayerByUserID(userID string) *Player {
	if userID == "" {
		return nil
	}
	for _, player := range g.Players {
		if player.Identity.UserID == userID {
			return player
		}
	}
	return nil
}

func (g *Game) Leader() *Player {
	return g.PlayerBySeat(g.LeaderSeat)
}

// NextAvailableSeat returns the lowest seat not taken by a player.
func (g *Game) NextAvailableSeat() int {
	taken := make(map[int]bool, len(g.Players))
	for _, player := range g.Players {
		taken[player.Seat] = true
	}
	seat := constants.FirstSeat
	for taken[seat] {
		seat++
	}
	return seat
}

// AddPlayer seats a new player at the lowest free seat.
func (g *Game) AddPlayer(identity Identity) *Player {
	player := NewPlayer(g.NextAvailableSeat(), identity)
	g.Players = append(g.Players, player)
	g.sortPlayers()
	return player
}

// RemovePlayer removes the player in the given seat. It returns false if the seat is empty.
func (g *Game) RemovePlayer(seat int) bool {
	for i, player := range g.Players {
		if player.Seat == seat {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return true
		}
	}
	return false
}

// PackSeats renumbers seats 1..N in the current seat order, closing any gaps
// left by players who left the lobby.
func (g *Game) PackSeats() {
	g.sortPlayers()
	for i, player := range g.Players {
		player.Seat = constants.FirstSeat + i
	}
}

// IsValidSeat returns true if a player sits in the seat.
func (g *Game) IsValidSeat(seat int) bool {
	return g.PlayerBySeat(seat) != nil
}

func (g *Game) Shapeshifters() []*Player {
	shapeshifters := make([]*Player, 0)
	for _, player := range g.Players {
		if player.IsShapeshifter() {
			shapeshifters = append(shapeshifters, player)
		}
	}
	return shapeshifters
}

func (g *Game) sortPlayers() {
	sort.SliceStable(g.Players, func(i, j int) bool {
		return g.Players[i].Seat < g.Players[j].Seat
	})
}
