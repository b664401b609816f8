package game

import (
	"strings"

	"github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/messages"
)

const shortIDLength = 6

// NormalizeCode trims and upper-cases a connection code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PlayerSummariesFromGame lists the public view of every player, in seat order.
func PlayerSummariesFromGame(game *types.Game) []messages.PlayerSummary {
	players := make([]messages.PlayerSummary, 0, len(game.Players))
	for _, player := range game.Players {
		players = append(players, messages.PlayerSummary{
			UserID:      player.Identity.UserID,
			Nickname:    player.Identity.Nickname,
			Seat:        player.Seat,
			IsConnected: player.IsConnected,
		})
	}
	return players
}

func withDefaultNickname(identity types.Identity) types.Identity {
	if strings.TrimSpace(identity.Nickname) != "" {
		return identity
	}
	short := identity.UserID
	if len(short) > shortIDLength {
		short = short[:shortIDLength]
	}
	identity.Nickname = "Player#" + short
	return identity
}
