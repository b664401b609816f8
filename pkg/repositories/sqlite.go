package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and applies every migration
// found in the migrations directory, in file name order.
func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	dir, err := os.ReadDir(migrations)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}
	sort.Slice(dir, func(i, j int) bool {
		return dir[i].Name() < dir[j].Name()
	})

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveGame(ctx context.Context, game *gametypes.Game) error {
	data, err := encodeGame(game)
	if err != nil {
		return err
	}

	q := `
	INSERT OR REPLACE INTO games (code, game_id, status, data, updated_at)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err = r.db.ExecContext(ctx, q, game.Code, game.ID, string(game.Status), data, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert game: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadGame(ctx context.Context, code string) (*gametypes.Game, error) {
	q := `
	SELECT data FROM games WHERE code = ?;
	`
	var data []byte
	if err := r.db.QueryRowContext(ctx, q, code).Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan game: %v", err)
	}

	return decodeGame(data)
}

func (r *SQLiteRepository) LoadActiveGames(ctx context.Context) ([]*gametypes.Game, error) {
	q := `
	SELECT data FROM games WHERE status IN (?, ?) ORDER BY code;
	`
	rows, err := r.db.QueryContext(ctx, q, string(gametypes.GameStatusLobby), string(gametypes.GameStatusInProgress))
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

func (r *SQLiteRepository) DeleteGame(ctx context.Context, code string) error {
	q := `
	DELETE FROM games WHERE code = ?;
	`
	if _, err := r.db.ExecContext(ctx, q, code); err != nil {
		return fmt.Errorf("failed to delete game: %v", err)
	}

	return nil
}
