package repositories

import (
	"context"
	"sort"
	"sync"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
)

// InMemoryRepository keeps games in process memory. Nothing survives a restart.
type InMemoryRepository struct {
	lock  sync.RWMutex
	games map[string]*gametypes.Game
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		games: make(map[string]*gametypes.Game),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) SaveGame(ctx context.Context, game *gametypes.Game) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.games[game.Code] = game.Copy()
	return nil
}

func (r *InMemoryRepository) LoadGame(ctx context.Context, code string) (*gametypes.Game, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	game, ok := r.games[code]
	if !ok {
		return nil, &ErrNotFound{}
	}
	return game.Copy(), nil
}

func (r *InMemoryRepository) LoadActiveGames(ctx context.Context) ([]*gametypes.Game, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	games := make([]*gametypes.Game, 0)
	for _, game := range r.games {
		if game.IsActive() {
			games = append(games, game.Copy())
		}
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].Code < games[j].Code
	})
	return games, nil
}

func (r *InMemoryRepository) DeleteGame(ctx context.Context, code string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.games, code)
	return nil
}
