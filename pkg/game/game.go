package game

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/cbodonnell/firefades/pkg/game/constants"
	"github.com/cbodonnell/firefades/pkg/game/roles"
	"github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/metrics"
	"github.com/cbodonnell/firefades/pkg/queue"
	"github.com/cbodonnell/firefades/pkg/repositories"
	"github.com/google/uuid"
)

const maxCodeAttempts = 20

// ErrManagerNotStarted is returned when a game is created before Start.
var ErrManagerNotStarted = errors.New("game manager not started")

// GameManager is the registry of running game sessions, keyed by connection code.
type GameManager struct {
	lock            sync.RWMutex
	createLock      sync.Mutex
	sessions        map[string]*GameSession
	repository      repositories.Repository
	broadcaster     Broadcaster
	archiveQueue    queue.Queue[ArchiveRequest]
	director        *Director
	actionQueueSize int
	ctx             context.Context
	wg              sync.WaitGroup
	generateCode    func() (string, error)
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	Repository   repositories.Repository
	Broadcaster  Broadcaster
	ArchiveQueue queue.Queue[ArchiveRequest]
	// RandomSource picks shapeshifters. Defaults to roles.DefaultRandomSource.
	RandomSource roles.RandomSource
	// ActionQueueSize bounds each session's pending actions.
	ActionQueueSize int
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	return &GameManager{
		sessions:        make(map[string]*GameSession),
		repository:      opts.Repository,
		broadcaster:     opts.Broadcaster,
		archiveQueue:    opts.ArchiveQueue,
		director:        NewDirector(NewDirectorOptions{RandomSource: opts.RandomSource}),
		actionQueueSize: opts.ActionQueueSize,
		generateCode:    randomCode,
	}
}

// Start restores the active games found in the repository. Sessions run
// until ctx is done or their game ends.
func (gm *GameManager) Start(ctx context.Context) error {
	gm.lock.Lock()
	gm.ctx = ctx
	gm.lock.Unlock()

	games, err := gm.repository.LoadActiveGames(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active games: %v", err)
	}
	for _, game := range games {
		gm.lock.Lock()
		gm.startSession(game)
		gm.lock.Unlock()
	}
	log.Info("Restored %d active games", len(games))

	return nil
}

// Wait blocks until every session goroutine has returned.
func (gm *GameManager) Wait() {
	gm.wg.Wait()
}

// CreateGame creates a lobby with a fresh code and seats the creator.
func (gm *GameManager) CreateGame(ctx context.Context, identity types.Identity) (*types.Game, error) {
	if identity.UserID == "" {
		return nil, fmt.Errorf("identity is required to create a game")
	}

	gm.lock.RLock()
	started := gm.ctx != nil
	gm.lock.RUnlock()
	if !started {
		return nil, ErrManagerNotStarted
	}

	gm.createLock.Lock()
	defer gm.createLock.Unlock()

	code, err := gm.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	game := types.NewGame(uuid.New().String(), code)
	game.AddPlayer(withDefaultNickname(identity))
	if err := gm.repository.SaveGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %v", err)
	}

	gm.lock.Lock()
	defer gm.lock.Unlock()
	session := gm.startSession(game.Copy())
	session.logger.Info("Game created by %s", identity.UserID)

	return game, nil
}

// Submit routes an action to the game's session and waits for the result.
func (gm *GameManager) Submit(ctx context.Context, code string, action *Action) (Result, error) {
	session, ok := gm.session(code)
	if !ok {
		return Result{}, ErrGameNotFound
	}
	return session.Submit(ctx, action)
}

// Enqueue routes an action to the game's session without waiting.
func (gm *GameManager) Enqueue(code string, action *Action) error {
	session, ok := gm.session(code)
	if !ok {
		return ErrGameNotFound
	}
	return session.Enqueue(action)
}

// Snapshot returns a copy of the game, read in order with pending actions.
func (gm *GameManager) Snapshot(ctx context.Context, code string) (*types.Game, error) {
	result, err := gm.Submit(ctx, code, NewSnapshotAction(types.Identity{}))
	if err != nil {
		return nil, err
	}
	return result.Game, nil
}

func (gm *GameManager) HasGame(code string) bool {
	_, ok := gm.session(code)
	return ok
}

func (gm *GameManager) ActiveSessions() int {
	gm.lock.RLock()
	defer gm.lock.RUnlock()
	return len(gm.sessions)
}

func (gm *GameManager) session(code string) (*GameSession, bool) {
	gm.lock.RLock()
	defer gm.lock.RUnlock()
	session, ok := gm.sessions[NormalizeCode(code)]
	return session, ok
}

// startSession must be called with gm.lock held.
func (gm *GameManager) startSession(game *types.Game) *GameSession {
	session := NewGameSession(NewGameSessionOptions{
		Game:            game,
		Repository:      gm.repository,
		Broadcaster:     gm.broadcaster,
		ArchiveQueue:    gm.archiveQueue,
		Director:        gm.director,
		ActionQueueSize: gm.actionQueueSize,
		OnClose:         gm.removeSession,
	})
	gm.sessions[game.Code] = session
	metrics.ActiveSessions.Set(float64(len(gm.sessions)))

	gm.wg.Add(1)
	go func() {
		defer gm.wg.Done()
		session.Start(gm.ctx)
	}()

	return session
}

func (gm *GameManager) removeSession(session *GameSession) {
	gm.lock.Lock()
	defer gm.lock.Unlock()
	if current, ok := gm.sessions[session.Code()]; ok && current == session {
		delete(gm.sessions, session.Code())
	}
	metrics.ActiveSessions.Set(float64(len(gm.sessions)))
}

func (gm *GameManager) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := gm.generateCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate game code: %v", err)
		}
		if gm.HasGame(code) {
			continue
		}
		_, err = gm.repository.LoadGame(ctx, code)
		if repositories.IsNotFound(err) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check game code: %v", err)
		}
	}
	return "", fmt.Errorf("failed to find a free game code after %d attempts", maxCodeAttempts)
}

func randomCode() (string, error) {
	charCount := big.NewInt(int64(len(constants.GameCodeChars)))
	code := make([]byte, constants.GameCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, charCount)
		if err != nil {
			return "", err
		}
		code[i] = constants.GameCodeChars[n.Int64()]
	}
	return string(code), nil
}
