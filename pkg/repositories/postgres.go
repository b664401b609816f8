package repositories

import (
	"context"
	"fmt"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository backed by a connection pool.
// The games table is expected to exist (see migrations/postgres).
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	pool, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}
	return &PostgresRepository{
		pool: pool,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return pool, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) SaveGame(ctx context.Context, game *gametypes.Game) error {
	data, err := encodeGame(game)
	if err != nil {
		return err
	}

	q := `
	INSERT INTO games (code, game_id, status, data, created_at) VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (code) DO UPDATE SET game_id = $2, status = $3, data = $4, updated_at = now();
	`
	_, err = r.pool.Exec(ctx, q, game.Code, game.ID, string(game.Status), data)
	if err != nil {
		return fmt.Errorf("failed to insert game: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadGame(ctx context.Context, code string) (*gametypes.Game, error) {
	q := `
	SELECT data FROM games WHERE code = $1;
	`
	var data []byte
	if err := r.pool.QueryRow(ctx, q, code).Scan(&data); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan game: %v", err)
	}

	return decodeGame(data)
}

func (r *PostgresRepository) LoadActiveGames(ctx context.Context) ([]*gametypes.Game, error) {
	q := `
	SELECT data FROM games WHERE status = ANY($1) ORDER BY code;
	`
	statuses := []string{string(gametypes.GameStatusLobby), string(gametypes.GameStatusInProgress)}
	rows, err := r.pool.Query(ctx, q, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %v", err)
	}
	defer rows.Close()

	games := make([]*gametypes.Game, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan game: %v", err)
		}
		game, err := decodeGame(data)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %v", err)
	}

	return games, nil
}

func (r *PostgresRepository) DeleteGame(ctx context.Context, code string) error {
	q := `
	DELETE FROM games WHERE code = $1;
	`
	if _, err := r.pool.Exec(ctx, q, code); err != nil {
		return fmt.Errorf("failed to delete game: %v", err)
	}

	return nil
}
