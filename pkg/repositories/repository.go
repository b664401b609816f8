package repositories

import (
	"context"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
)

// Repository persists Game aggregates keyed by their connection code.
type Repository interface {
	Close(ctx context.Context) error
	// SaveGame inserts or replaces the game stored under game.Code.
	SaveGame(ctx context.Context, game *gametypes.Game) error
	LoadGame(ctx context.Context, code string) (*gametypes.Game, error)
	// LoadActiveGames returns every game in the lobby or in progress.
	LoadActiveGames(ctx context.Context) ([]*gametypes.Game, error)
	DeleteGame(ctx context.Context, code string) error
}
