package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
)

type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "not found"
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}

// encodeGame serializes the full aggregate. Every backend stores games as a
// single JSON document next to a few indexed columns.
func encodeGame(game *gametypes.Game) ([]byte, error) {
	b, err := json.Marshal(game)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game %s: %v", game.Code, err)
	}
	return b, nil
}

func decodeGame(b []byte) (*gametypes.Game, error) {
	game := &gametypes.Game{}
	if err := json.Unmarshal(b, game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %v", err)
	}
	return game, nil
}
