package repositories

import (
	"context"
	"fmt"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/redis/go-redis/v9"
)

const (
	redisGameKeyPrefix  = "firefades:game:"
	redisActiveGamesKey = "firefades:games:active"
)

// RedisRepository stores each game as a JSON string and tracks the codes of
// active games in a set.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository connects to the server described by a redis:// URL.
func NewRedisRepository(ctx context.Context, url string) (Repository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %v", err)
	}

	return &RedisRepository{
		client: client,
	}, nil
}

func redisGameKey(code string) string {
	return redisGameKeyPrefix + code
}

func (r *RedisRepository) Close(ctx context.Context) error {
	return r.client.Close()
}

func (r *RedisRepository) SaveGame(ctx context.Context, game *gametypes.Game) error {
	data, err := encodeGame(game)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisGameKey(game.Code), data, 0)
		if game.IsActive() {
			pipe.SAdd(ctx, redisActiveGamesKey, game.Code)
		} else {
			pipe.SRem(ctx, redisActiveGamesKey, game.Code)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save game: %v", err)
	}

	return nil
}

func (r *RedisRepository) LoadGame(ctx context.Context, code string) (*gametypes.Game, error) {
	data, err := r.client.Get(ctx, redisGameKey(code)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to get game: %v", err)
	}

	return decodeGame(data)
}

func (r *RedisRepository) LoadActiveGames(ctx context.Context) ([]*gametypes.Game, error) {
	codes, err := r.client.SMembers(ctx, redisActiveGamesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active games: %v", err)
	}

	games := make([]*gametypes.Game, 0, len(codes))
	if len(codes) == 0 {
		return games, nil
	}

	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		keys = append(keys, redisGameKey(code))
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %v", err)
	}

	for _, value := range values {
		s, ok := value.(string)
		if !ok {
			// deleted between SMEMBERS and MGET
			continue
		}
		game, err := decodeGame([]byte(s))
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	return games, nil
}

func (r *RedisRepository) DeleteGame(ctx context.Context, code string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, redisGameKey(code))
		pipe.SRem(ctx, redisActiveGamesKey, code)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete game: %v", err)
	}

	return nil
}
