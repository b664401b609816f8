package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cbodonnell/firefades/pkg/game/rounds"
	"github.com/cbodonnell/firefades/pkg/game/rules"
	"github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/messages"
	"github.com/cbodonnell/firefades/pkg/metrics"
	"github.com/cbodonnell/firefades/pkg/queue"
	"github.com/cbodonnell/firefades/pkg/repositories"
)

// ErrGameNotFound is returned for actions on a code with no running session.
var ErrGameNotFound = errors.New("game not found")

// Broadcaster delivers a message to every connection subscribed to a game.
type Broadcaster interface {
	Broadcast(gameCode string, msg *messages.Message)
}

// ArchiveRequest asks for the stored copy of a finished or abandoned game to be cleaned up.
type ArchiveRequest struct {
	GameID string
	Code   string
	Status types.GameStatus
	Winner types.GameResult
	Reason string
}

// GameSession is the single writer of one game. Actions are queued and
// applied one at a time: each is applied to a copy of the game, the copy is
// saved, and only then does it replace the current state and get broadcast.
type GameSession struct {
	code         string
	game         *types.Game
	actions      queue.Queue[*Action]
	repository   repositories.Repository
	broadcaster  Broadcaster
	archiveQueue queue.Queue[ArchiveRequest]
	director     *Director
	logger       *log.Logger
	onClose      func(*GameSession)

	// mu orders pushes against close so nothing is queued after the final drain
	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

type NewGameSessionOptions struct {
	Game            *types.Game
	Repository      repositories.Repository
	Broadcaster     Broadcaster
	ArchiveQueue    queue.Queue[ArchiveRequest]
	Director        *Director
	ActionQueueSize int
	// OnClose is called once when the session stops accepting actions.
	OnClose func(*GameSession)
}

func NewGameSession(opts NewGameSessionOptions) *GameSession {
	return &GameSession{
		code:         opts.Game.Code,
		game:         opts.Game,
		actions:      queue.NewInMemoryQueue[*Action](opts.ActionQueueSize),
		repository:   opts.Repository,
		broadcaster:  opts.Broadcaster,
		archiveQueue: opts.ArchiveQueue,
		director:     opts.Director,
		logger:       log.WithFields(log.Fields{"game": opts.Game.Code}),
		onClose:      opts.OnClose,
		done:         make(chan struct{}),
	}
}

func (s *GameSession) Code() string {
	return s.code
}

// Done is closed when the session has stopped.
func (s *GameSession) Done() <-chan struct{} {
	return s.done
}

// Start processes queued actions until the game finishes or ctx is done.
func (s *GameSession) Start(ctx context.Context) {
	defer s.close()
	for {
		action, err := s.actions.Dequeue(ctx)
		if err != nil {
			s.logger.Debug("Session stopped: %v", err)
			return
		}
		if finished := s.handle(ctx, action); finished {
			return
		}
	}
}

// Submit queues an action and waits for the session to process it.
func (s *GameSession) Submit(ctx context.Context, action *Action) (Result, error) {
	action.reply = make(chan actionReply, 1)
	if err := s.push(action); err != nil {
		return Result{}, err
	}

	select {
	case reply := <-action.reply:
		return reply.result, reply.err
	case <-s.done:
		select {
		case reply := <-action.reply:
			return reply.result, reply.err
		default:
			return Result{}, ErrGameNotFound
		}
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Enqueue queues an action without waiting for its result.
func (s *GameSession) Enqueue(action *Action) error {
	return s.push(action)
}

func (s *GameSession) push(action *Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return ErrGameNotFound
	default:
	}
	return s.actions.Enqueue(action)
}

// outcome is what applying an action to a game produced.
type outcome struct {
	accepted  bool
	events    []messages.Event
	abandoned bool
}

func (s *GameSession) handle(ctx context.Context, action *Action) bool {
	if action.Type == ActionTypeSnapshot {
		s.reply(action, Result{Accepted: true, Game: s.game.Copy()}, nil)
		return false
	}

	next := s.game.Copy()
	out, err := s.apply(next, action)
	if err != nil {
		metrics.ActionsTotal.WithLabelValues(string(action.Type), metrics.OutcomeError).Inc()
		s.logger.Debug("Action %s from %s failed: %v", action.Type, action.Identity.UserID, err)
		s.reply(action, Result{Game: s.game.Copy()}, err)
		return false
	}
	if !out.accepted {
		metrics.ActionsTotal.WithLabelValues(string(action.Type), metrics.OutcomeIgnored).Inc()
		s.logger.Trace("Ignored action %s from %s", action.Type, action.Identity.UserID)
		s.reply(action, Result{Game: s.game.Copy()}, nil)
		return false
	}

	if !out.abandoned {
		if err := s.repository.SaveGame(ctx, next); err != nil {
			metrics.ActionsTotal.WithLabelValues(string(action.Type), metrics.OutcomeError).Inc()
			s.logger.Error("Failed to save game after %s: %v", action.Type, err)
			s.reply(action, Result{Game: s.game.Copy()}, fmt.Errorf("failed to save game: %w", err))
			return false
		}
	}

	s.game = next
	metrics.ActionsTotal.WithLabelValues(string(action.Type), metrics.OutcomeAccepted).Inc()
	s.broadcast(out.events)

	finished := next.IsFinished() || out.abandoned
	if finished {
		s.archive(next)
	}
	s.reply(action, Result{Accepted: true, Game: next.Copy()}, nil)
	return finished
}

func (s *GameSession) apply(game *types.Game, action *Action) (outcome, error) {
	switch action.Type {
	case ActionTypeJoin:
		return s.join(game, action.Identity)
	case ActionTypeLeave:
		return s.leave(game, action.Identity), nil
	case ActionTypeStart:
		if game.PlayerByUserID(action.Identity.UserID) == nil {
			return outcome{}, rules.InvalidState("only seated players can start game %s", game.Code)
		}
		events, err := s.director.StartGame(game)
		if err != nil {
			return outcome{}, err
		}
		return outcome{accepted: true, events: events}, nil
	case ActionTypeProposeTeam:
		player := game.PlayerByUserID(action.Identity.UserID)
		if player == nil {
			return outcome{}, nil
		}
		return s.resolve(game, rounds.ProposeTeam(game, player.Seat, action.Seats))
	case ActionTypeVoteOnTeam:
		player := game.PlayerByUserID(action.Identity.UserID)
		if player == nil {
			return outcome{}, nil
		}
		return s.resolve(game, rounds.VoteOnTeam(game, player.Seat, action.Approved))
	case ActionTypeVoteOnMission:
		player := game.PlayerByUserID(action.Identity.UserID)
		if player == nil {
			return outcome{}, nil
		}
		return s.resolve(game, rounds.VoteOnMission(game, player.Seat, action.Success))
	case ActionTypeConnect, ActionTypeDisconnect:
		player := game.PlayerByUserID(action.Identity.UserID)
		connected := action.Type == ActionTypeConnect
		if player == nil || player.IsConnected == connected {
			return outcome{}, nil
		}
		player.IsConnected = connected
		return outcome{accepted: true}, nil
	default:
		return outcome{}, fmt.Errorf("unknown action type: %s", action.Type)
	}
}

func (s *GameSession) resolve(game *types.Game, transition rounds.Transition) (outcome, error) {
	if !transition.Accepted {
		return outcome{}, nil
	}
	events, err := s.director.Resolve(game, transition.Resolution)
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		accepted: true,
		events:   append(transition.Events, events...),
	}, nil
}

func (s *GameSession) join(game *types.Game, identity types.Identity) (outcome, error) {
	if player := game.PlayerByUserID(identity.UserID); player != nil {
		player.IsConnected = true
		player.HasLeft = false
		return outcome{accepted: true, events: []messages.Event{playerJoinedEvent(game)}}, nil
	}
	if identity.UserID == "" || !game.IsInLobby() {
		return outcome{}, nil
	}
	if game.IsFull() {
		return outcome{}, rules.InvalidState("game %s is full", game.Code)
	}

	game.AddPlayer(withDefaultNickname(identity))
	return outcome{accepted: true, events: []messages.Event{playerJoinedEvent(game)}}, nil
}

func (s *GameSession) leave(game *types.Game, identity types.Identity) outcome {
	player := game.PlayerByUserID(identity.UserID)
	if player == nil {
		return outcome{}
	}

	abandoned := false
	switch {
	case game.IsInLobby():
		game.RemovePlayer(player.Seat)
		abandoned = len(game.Players) == 0
	case game.IsInProgress():
		// seats are stable once the game has started
		if player.HasLeft {
			return outcome{}
		}
		player.IsConnected = false
		player.HasLeft = true
		abandoned = allPlayersLeft(game)
	default:
		return outcome{}
	}

	return outcome{
		accepted:  true,
		events:    []messages.Event{playerLeftEvent(game, identity.UserID)},
		abandoned: abandoned,
	}
}

func allPlayersLeft(game *types.Game) bool {
	for _, player := range game.Players {
		if !player.HasLeft {
			return false
		}
	}
	return true
}

func (s *GameSession) broadcast(events []messages.Event) {
	for _, event := range events {
		msg, err := event.ToMessage(s.code)
		if err != nil {
			s.logger.Error("Failed to encode %s event: %v", event.Type, err)
			continue
		}
		s.broadcaster.Broadcast(s.code, msg)
	}
}

func (s *GameSession) archive(game *types.Game) {
	if game.IsFinished() {
		metrics.GamesFinishedTotal.WithLabelValues(string(game.Winner)).Inc()
		s.logger.Info("Game finished, winner %s: %s", game.Winner, game.EndReason)
	} else {
		s.logger.Info("Game abandoned")
	}

	req := ArchiveRequest{
		GameID: game.ID,
		Code:   game.Code,
		Status: game.Status,
		Winner: game.Winner,
		Reason: game.EndReason,
	}
	if err := s.archiveQueue.Enqueue(req); err != nil {
		s.logger.Error("Failed to queue archive request: %v", err)
	}
}

func (s *GameSession) reply(action *Action, result Result, err error) {
	if action.callback != nil {
		action.callback(result, err)
	}
	if action.reply != nil {
		action.reply <- actionReply{result: result, err: err}
	}
}

// close stops the session and fails every action still queued.
func (s *GameSession) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		close(s.done)
		s.mu.Unlock()
		for _, action := range s.actions.ReadAll() {
			s.reply(action, Result{}, ErrGameNotFound)
		}
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

func playerJoinedEvent(game *types.Game) messages.Event {
	return messages.NewEvent(messages.MessageTypeServerPlayerJoined, &messages.ServerPlayerJoined{
		Players:      PlayerSummariesFromGame(game),
		TotalPlayers: len(game.Players),
	})
}

func playerLeftEvent(game *types.Game, userID string) messages.Event {
	return messages.NewEvent(messages.MessageTypeServerPlayerLeft, &messages.ServerPlayerLeft{
		LeftUserID:   userID,
		Players:      PlayerSummariesFromGame(game),
		TotalPlayers: len(game.Players),
	})
}
