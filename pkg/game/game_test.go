package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	mocks "github.com/cbodonnell/firefades/mocks/github.com/cbodonnell/firefades/pkg/repositories"
	"github.com/cbodonnell/firefades/pkg/game/constants"
	"github.com/cbodonnell/firefades/pkg/game/rules"
	"github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/messages"
	"github.com/cbodonnell/firefades/pkg/queue"
	"github.com/cbodonnell/firefades/pkg/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	lock     sync.Mutex
	messages []*messages.Message
}

func (b *recordingBroadcaster) Broadcast(gameCode string, msg *messages.Message) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *recordingBroadcaster) ofType(t messages.MessageType) []*messages.Message {
	b.lock.Lock()
	defer b.lock.Unlock()
	out := make([]*messages.Message, 0)
	for _, msg := range b.messages {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

func (b *recordingBroadcaster) types() []messages.MessageType {
	b.lock.Lock()
	defer b.lock.Unlock()
	out := make([]messages.MessageType, 0, len(b.messages))
	for _, msg := range b.messages {
		out = append(out, msg.Type)
	}
	return out
}

func (b *recordingBroadcaster) reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.messages = nil
}

type testManager struct {
	*GameManager
	repository   repositories.Repository
	broadcaster  *recordingBroadcaster
	archiveQueue *queue.InMemoryQueue[ArchiveRequest]
}

func newTestManager(t *testing.T, repository repositories.Repository) *testManager {
	t.Helper()
	if repository == nil {
		repository = repositories.NewInMemoryRepository()
	}
	broadcaster := &recordingBroadcaster{}
	archiveQueue := queue.NewInMemoryQueue[ArchiveRequest](16)
	gm := NewGameManager(NewGameManagerOptions{
		Repository:      repository,
		Broadcaster:     broadcaster,
		ArchiveQueue:    archiveQueue,
		RandomSource:    firstSeatsSource{},
		ActionQueueSize: 64,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		gm.Wait()
	})
	require.NoError(t, gm.Start(ctx))

	return &testManager{
		GameManager:  gm,
		repository:   repository,
		broadcaster:  broadcaster,
		archiveQueue: archiveQueue,
	}
}

func identity(i int) types.Identity {
	return types.Identity{UserID: fmt.Sprintf("user-%d", i)}
}

// newStartedGame creates a game, seats playerCount players and starts it.
// Seat i belongs to user-i.
func (m *testManager) newStartedGame(t *testing.T, playerCount int) string {
	t.Helper()
	ctx := context.Background()
	game, err := m.CreateGame(ctx, identity(1))
	require.NoError(t, err)
	for i := 2; i <= playerCount; i++ {
		result, err := m.Submit(ctx, game.Code, NewJoinAction(identity(i)))
		require.NoError(t, err)
		require.True(t, result.Accepted)
	}
	result, err := m.Submit(ctx, game.Code, NewStartAction(identity(1)))
	require.NoError(t, err)
	require.True(t, result.Accepted)
	m.broadcaster.reset()
	return game.Code
}

func (m *testManager) submit(t *testing.T, code string, action *Action) Result {
	t.Helper()
	result, err := m.Submit(context.Background(), code, action)
	require.NoError(t, err)
	return result
}

// playRound has the current leader propose the first teamSize seats, every
// other player approve, and the team vote with the given mission result.
func (m *testManager) playRound(t *testing.T, code string, success bool) Result {
	t.Helper()
	game, err := m.Snapshot(context.Background(), code)
	require.NoError(t, err)
	round := game.CurrentRound()

	seats := make([]int, 0, round.TeamSize)
	for seat := 1; seat <= round.TeamSize; seat++ {
		seats = append(seats, seat)
	}
	require.True(t, m.submit(t, code, NewProposeTeamAction(identity(game.LeaderSeat), seats)).Accepted)
	for _, player := range game.Players {
		if player.Seat == game.LeaderSeat {
			continue
		}
		require.True(t, m.submit(t, code, NewVoteOnTeamAction(identity(player.Seat), true)).Accepted)
	}

	var result Result
	for _, seat := range seats {
		result = m.submit(t, code, NewVoteOnMissionAction(identity(seat), success))
		require.True(t, result.Accepted)
	}
	return result
}

func decodePayload[T any](t *testing.T, msg *messages.Message) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	return payload
}

func TestGameManager_CreateGame(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	game, err := m.CreateGame(ctx, types.Identity{UserID: "abcdef123456"})
	require.NoError(t, err)

	assert.Len(t, game.Code, constants.GameCodeLength)
	for _, c := range game.Code {
		assert.Contains(t, constants.GameCodeChars, string(c))
	}
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, types.GameStatusLobby, game.Status)
	require.Len(t, game.Players, 1)
	assert.Equal(t, 1, game.Players[0].Seat)
	assert.Equal(t, "Player#abcdef", game.Players[0].Identity.Nickname)
	assert.True(t, m.HasGame(game.Code))
	assert.Equal(t, 1, m.ActiveSessions())

	stored, err := m.repository.LoadGame(ctx, game.Code)
	require.NoError(t, err)
	assert.Equal(t, game.ID, stored.ID)

	_, err = m.CreateGame(ctx, types.Identity{})
	assert.Error(t, err)
}

func TestGameManager_CreateGame_SkipsTakenCodes(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	taken := types.NewGame("old", "AAAAAA")
	require.NoError(t, m.repository.SaveGame(ctx, taken))

	codes := []string{"AAAAAA", "BBBBBB"}
	m.generateCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	game, err := m.CreateGame(ctx, identity(1))
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", game.Code)
}

func TestGameManager_CreateGame_NotStarted(t *testing.T) {
	gm := NewGameManager(NewGameManagerOptions{Repository: repositories.NewInMemoryRepository()})
	_, err := gm.CreateGame(context.Background(), identity(1))
	assert.ErrorIs(t, err, ErrManagerNotStarted)
}

func TestGameManager_UnknownGame(t *testing.T) {
	m := newTestManager(t, nil)

	_, err := m.Submit(context.Background(), "ZZZZZZ", NewJoinAction(identity(1)))
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.ErrorIs(t, m.Enqueue("ZZZZZZ", NewDisconnectAction(identity(1))), ErrGameNotFound)
	_, err = m.Snapshot(context.Background(), "ZZZZZZ")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameManager_NormalizesCodes(t *testing.T) {
	m := newTestManager(t, nil)
	game, err := m.CreateGame(context.Background(), identity(1))
	require.NoError(t, err)

	messy := fmt.Sprintf("  %s ", strings.ToLower(game.Code))
	result := m.submit(t, messy, NewJoinAction(identity(2)))
	assert.True(t, result.Accepted)
	assert.Len(t, result.Game.Players, 2)
}

func TestGameManager_Lobby(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	game, err := m.CreateGame(ctx, identity(1))
	require.NoError(t, err)
	code := game.Code

	result := m.submit(t, code, NewJoinAction(identity(2)))
	require.True(t, result.Accepted)
	result = m.submit(t, code, NewJoinAction(identity(3)))
	require.True(t, result.Accepted)
	assert.Equal(t, 3, result.Game.PlayerByUserID("user-3").Seat)

	joined := m.broadcaster.ofType(messages.MessageTypeServerPlayerJoined)
	require.Len(t, joined, 2)
	payload := decodePayload[messages.ServerPlayerJoined](t, joined[1])
	assert.Equal(t, 3, payload.TotalPlayers)

	// leaving frees the seat for the next newcomer
	result = m.submit(t, code, NewLeaveAction(identity(2)))
	require.True(t, result.Accepted)
	assert.Nil(t, result.Game.PlayerByUserID("user-2"))
	left := m.broadcaster.ofType(messages.MessageTypeServerPlayerLeft)
	require.Len(t, left, 1)
	assert.Equal(t, "user-2", decodePayload[messages.ServerPlayerLeft](t, left[0]).LeftUserID)

	result = m.submit(t, code, NewJoinAction(identity(4)))
	require.True(t, result.Accepted)
	assert.Equal(t, 2, result.Game.PlayerByUserID("user-4").Seat)

	// rejoining keeps the seat
	result = m.submit(t, code, NewJoinAction(identity(3)))
	require.True(t, result.Accepted)
	assert.Len(t, result.Game.Players, 3)
	assert.Equal(t, 3, result.Game.PlayerByUserID("user-3").Seat)

	// leaving a game you are not in is ignored
	result = m.submit(t, code, NewLeaveAction(identity(9)))
	assert.False(t, result.Accepted)
}

func TestGameManager_JoinFullLobby(t *testing.T) {
	m := newTestManager(t, nil)
	game, err := m.CreateGame(context.Background(), identity(1))
	require.NoError(t, err)
	for i := 2; i <= constants.MaxPlayerCount; i++ {
		require.True(t, m.submit(t, game.Code, NewJoinAction(identity(i))).Accepted)
	}

	result, err := m.Submit(context.Background(), game.Code, NewJoinAction(identity(11)))
	assert.True(t, rules.IsInvalidState(err))
	assert.False(t, result.Accepted)
	assert.Len(t, result.Game.Players, constants.MaxPlayerCount)
}

func TestGameManager_LastPlayerLeavesLobby(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	game, err := m.CreateGame(ctx, identity(1))
	require.NoError(t, err)

	result := m.submit(t, game.Code, NewLeaveAction(identity(1)))
	require.True(t, result.Accepted)

	req, err := m.archiveQueue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.Code, req.Code)
	assert.Equal(t, types.GameStatusLobby, req.Status)
	assert.Eventually(t, func() bool { return !m.HasGame(game.Code) }, time.Second, 5*time.Millisecond)
	assert.Empty(t, m.broadcaster.ofType(messages.MessageTypeServerGameEnded))
}

func TestGameManager_StartGame(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	game, err := m.CreateGame(ctx, identity(1))
	require.NoError(t, err)

	_, err = m.Submit(ctx, game.Code, NewStartAction(identity(1)))
	assert.True(t, rules.IsInvalidState(err), "too few players")

	require.True(t, m.submit(t, game.Code, NewJoinAction(identity(2))).Accepted)

	_, err = m.Submit(ctx, game.Code, NewStartAction(identity(7)))
	assert.True(t, rules.IsInvalidState(err), "not seated")

	result := m.submit(t, game.Code, NewStartAction(identity(2)))
	require.True(t, result.Accepted)
	assert.Equal(t, types.GameStatusInProgress, result.Game.Status)
	assert.Len(t, result.Game.Shapeshifters(), 1)

	started := m.broadcaster.ofType(messages.MessageTypeServerGameStarted)
	require.Len(t, started, 1)
	assert.Equal(t, messages.ServerGameStarted{RoundNumber: 1, LeaderSeat: 1}, decodePayload[messages.ServerGameStarted](t, started[0]))
	// roles are never broadcast
	assert.NotContains(t, string(started[0].Payload), "shapeshifter")

	_, err = m.Submit(ctx, game.Code, NewStartAction(identity(1)))
	assert.True(t, rules.IsInvalidState(err), "already started")

	// newcomers cannot join a started game
	result = m.submit(t, game.Code, NewJoinAction(identity(3)))
	assert.False(t, result.Accepted)
	assert.Len(t, result.Game.Players, 2)
}

func TestGameManager_FivePlayerScenario(t *testing.T) {
	m := newTestManager(t, nil)
	code := m.newStartedGame(t, 5)

	require.True(t, m.submit(t, code, NewProposeTeamAction(identity(1), []int{1, 2})).Accepted)
	proposed := m.broadcaster.ofType(messages.MessageTypeServerTeamProposed)
	require.Len(t, proposed, 1)
	assert.Equal(t, []int{1, 2}, decodePayload[messages.ServerTeamProposed](t, proposed[0]).Members)

	require.True(t, m.submit(t, code, NewVoteOnTeamAction(identity(2), true)).Accepted)
	require.True(t, m.submit(t, code, NewVoteOnTeamAction(identity(3), true)).Accepted)
	require.True(t, m.submit(t, code, NewVoteOnTeamAction(identity(4), false)).Accepted)
	result := m.submit(t, code, NewVoteOnTeamAction(identity(5), true))
	require.True(t, result.Accepted)

	voteResults := m.broadcaster.ofType(messages.MessageTypeServerTeamVoteResult)
	require.Len(t, voteResults, 1)
	assert.Equal(t, messages.ServerTeamVoteResult{
		TeamID:        1,
		Approvals:     4,
		Rejections:    1,
		Approved:      true,
		AttemptNumber: 1,
	}, decodePayload[messages.ServerTeamVoteResult](t, voteResults[0]))
	assert.Equal(t, types.RoundStatusSecretChoices, result.Game.CurrentRound().Status)
	assert.Len(t, m.broadcaster.ofType(messages.MessageTypeServerMissionStarted), 1)

	// only team members vote on the mission
	assert.False(t, m.submit(t, code, NewVoteOnMissionAction(identity(3), false)).Accepted)
	require.True(t, m.submit(t, code, NewVoteOnMissionAction(identity(1), true)).Accepted)
	result = m.submit(t, code, NewVoteOnMissionAction(identity(2), true))
	require.True(t, result.Accepted)

	first := result.Game.Rounds[0]
	assert.Equal(t, types.RoundStatusCompleted, first.Status)
	assert.Equal(t, types.RoundResultSuccess, first.Result)
	assert.Equal(t, 1, result.Game.SuccessCount)
	assert.Equal(t, 2, result.Game.RoundCounter)
	assert.Equal(t, 2, result.Game.LeaderSeat)

	missionResults := m.broadcaster.ofType(messages.MessageTypeServerMissionVoteResult)
	require.Len(t, missionResults, 1)
	assert.Equal(t, messages.ServerMissionVoteResult{RoundNumber: 1, SuccessVotes: 2, FailVotes: 0}, decodePayload[messages.ServerMissionVoteResult](t, missionResults[0]))

	nextRound := m.broadcaster.ofType(messages.MessageTypeServerStartNextRound)
	require.Len(t, nextRound, 1)
	assert.Equal(t, messages.ServerStartNextRound{RoundNumber: 2, LeaderSeat: 2}, decodePayload[messages.ServerStartNextRound](t, nextRound[0]))

	// the write-through copy matches the session
	stored, err := m.repository.LoadGame(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.SuccessCount)
	assert.Equal(t, 2, stored.RoundCounter)
}

func TestGameManager_DuplicateVoteIgnored(t *testing.T) {
	m := newTestManager(t, nil)
	code := m.newStartedGame(t, 5)

	require.True(t, m.submit(t, code, NewProposeTeamAction(identity(1), []int{1, 2})).Accepted)
	require.True(t, m.submit(t, code, NewVoteOnTeamAction(identity(2), true)).Accepted)

	result := m.submit(t, code, NewVoteOnTeamAction(identity(2), false))
	assert.False(t, result.Accepted)
	assert.Len(t, result.Game.CurrentRound().ActiveTeam().Votes, 1)
	assert.Len(t, m.broadcaster.ofType(messages.MessageTypeServerPlayerVoted), 1)

	// the leader only has the implicit approval
	assert.False(t, m.submit(t, code, NewVoteOnTeamAction(identity(1), true)).Accepted)
	// not the leader
	assert.False(t, m.submit(t, code, NewProposeTeamAction(identity(2), []int{1, 2})).Accepted)
}

func TestGameManager_ConcurrentVotesResolveOnce(t *testing.T) {
	m := newTestManager(t, nil)
	code := m.newStartedGame(t, constants.MaxPlayerCount)

	require.True(t, m.submit(t, code, NewProposeTeamAction(identity(1), []int{1, 2, 3})).Accepted)

	var wg sync.WaitGroup
	for i := 2; i <= constants.MaxPlayerCount; i++ {
		for attempt := 0; attempt < 3; attempt++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := m.Submit(context.Background(), code, NewVoteOnTeamAction(identity(i), i%2 == 0))
				assert.NoError(t, err)
			}(i)
		}
	}
	wg.Wait()

	assert.Len(t, m.broadcaster.ofType(messages.MessageTypeServerPlayerVoted), constants.MaxPlayerCount-1)
	voteResults := m.broadcaster.ofType(messages.MessageTypeServerTeamVoteResult)
	require.Len(t, voteResults, 1)
	payload := decodePayload[messages.ServerTeamVoteResult](t, voteResults[0])
	// seats 2,4,6,8,10 approve plus the leader, seats 3,5,7,9 reject
	assert.Equal(t, 6, payload.Approvals)
	assert.Equal(t, 4, payload.Rejections)
	assert.True(t, payload.Approved)
}

func TestGameManager_RejectionLimit(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	code := m.newStartedGame(t, 3)

	var result Result
	for attempt := 1; attempt <= constants.MaxConsecutiveRejections; attempt++ {
		game, err := m.Snapshot(ctx, code)
		require.NoError(t, err)
		require.True(t, m.submit(t, code, NewProposeTeamAction(identity(game.LeaderSeat), []int{1, 2})).Accepted)
		for _, player := range game.Players {
			if player.Seat == game.LeaderSeat {
				continue
			}
			result = m.submit(t, code, NewVoteOnTeamAction(identity(player.Seat), false))
			require.True(t, result.Accepted)
		}
	}

	assert.Equal(t, types.GameStatusFinished, result.Game.Status)
	assert.Equal(t, types.GameResultShapeshifter, result.Game.Winner)
	assert.Equal(t, constants.ReasonTooManyRejections, result.Game.EndReason)
	assert.Len(t, result.Game.Rounds, 1)

	sent := m.broadcaster.types()
	require.GreaterOrEqual(t, len(sent), 2)
	assert.Equal(t, messages.MessageTypeServerTeamVoteResult, sent[len(sent)-2])
	assert.Equal(t, messages.MessageTypeServerGameEnded, sent[len(sent)-1])

	voteResults := m.broadcaster.ofType(messages.MessageTypeServerTeamVoteResult)
	require.Len(t, voteResults, constants.MaxConsecutiveRejections)
	assert.Equal(t, constants.MaxConsecutiveRejections, decodePayload[messages.ServerTeamVoteResult](t, voteResults[4]).AttemptNumber)
	assert.Empty(t, m.broadcaster.ofType(messages.MessageTypeServerStartNextRound))

	ended := m.broadcaster.ofType(messages.MessageTypeServerGameEnded)
	require.Len(t, ended, 1)
	assert.Equal(t, messages.ServerGameEnded{Winner: "shapeshifter", Reason: "too many rejected proposals"}, decodePayload[messages.ServerGameEnded](t, ended[0]))
}

func TestGameManager_HumansWin(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	code := m.newStartedGame(t, 5)

	m.playRound(t, code, true)
	m.playRound(t, code, true)
	result := m.playRound(t, code, true)

	assert.Equal(t, types.GameStatusFinished, result.Game.Status)
	assert.Equal(t, types.GameResultHuman, result.Game.Winner)
	assert.Equal(t, constants.PointsNeededToWin, result.Game.SuccessCount)
	assert.Len(t, result.Game.Rounds, 3)
	assert.Len(t, m.broadcaster.ofType(messages.MessageTypeServerStartNextRound), 2)
	assert.Len(t, m.broadcaster.ofType(messages.MessageTypeServerGameEnded), 1)

	// exactly one archive request
	req, err := m.archiveQueue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, ArchiveRequest{
		GameID: result.Game.ID,
		Code:   code,
		Status: types.GameStatusFinished,
		Winner: types.GameResultHuman,
		Reason: constants.ReasonMissionsSucceeded,
	}, req)
	assert.Equal(t, 0, m.archiveQueue.Size())

	assert.Eventually(t, func() bool { return !m.HasGame(code) }, time.Second, 5*time.Millisecond)
	_, err = m.Submit(ctx, code, NewVoteOnMissionAction(identity(1), true))
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameManager_ShapeshiftersWinBySabotage(t *testing.T) {
	m := newTestManager(t, nil)
	code := m.newStartedGame(t, 5)

	m.playRound(t, code, false)
	m.playRound(t, code, true)
	m.playRound(t, code, false)
	result := m.playRound(t, code, false)

	assert.Equal(t, types.GameStatusFinished, result.Game.Status)
	assert.Equal(t, types.GameResultShapeshifter, result.Game.Winner)
	assert.Equal(t, constants.ReasonMissionsSabotaged, result.Game.EndReason)
	assert.Equal(t, 1, result.Game.SuccessCount)
	assert.Equal(t, 3, result.Game.SabotageCount)
}

func TestGameManager_LeaveInProgress(t *testing.T) {
	m := newTestManager(t, nil)
	code := m.newStartedGame(t, 3)

	result := m.submit(t, code, NewLeaveAction(identity(2)))
	require.True(t, result.Accepted)
	player := result.Game.PlayerByUserID("user-2")
	require.NotNil(t, player)
	assert.False(t, player.IsConnected)
	assert.Equal(t, 2, player.Seat)
	assert.Len(t, m.broadcaster.ofType(messages.MessageTypeServerPlayerLeft), 1)

	// the seat still votes
	require.True(t, m.submit(t, code, NewProposeTeamAction(identity(1), []int{1, 2})).Accepted)
	assert.True(t, m.submit(t, code, NewVoteOnTeamAction(identity(2), true)).Accepted)

	// rejoining reattaches
	result = m.submit(t, code, NewJoinAction(identity(2)))
	require.True(t, result.Accepted)
	assert.True(t, result.Game.PlayerByUserID("user-2").IsConnected)
}

func TestGameManager_AllPlayersLeaveInProgress(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()
	code := m.newStartedGame(t, 3)

	// a dropped connection is not a leave
	require.NoError(t, m.Enqueue(code, NewDisconnectAction(identity(3))))
	for i := 1; i <= 2; i++ {
		require.True(t, m.submit(t, code, NewLeaveAction(identity(i))).Accepted)
	}
	assert.False(t, m.submit(t, code, NewLeaveAction(identity(1))).Accepted, "already left")
	assert.True(t, m.HasGame(code))
	assert.Equal(t, 0, m.archiveQueue.Size())

	result := m.submit(t, code, NewLeaveAction(identity(3)))
	require.True(t, result.Accepted)
	assert.Len(t, m.broadcaster.ofType(messages.MessageTypeServerPlayerLeft), 3)

	req, err := m.archiveQueue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, code, req.Code)
	assert.Equal(t, types.GameStatusInProgress, req.Status)
	assert.Empty(t, req.Winner)
	assert.Eventually(t, func() bool { return !m.HasGame(code) }, time.Second, 5*time.Millisecond)
	assert.Empty(t, m.broadcaster.ofType(messages.MessageTypeServerGameEnded))

	_, err = m.Submit(ctx, code, NewJoinAction(identity(1)))
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameManager_ConnectionLiveness(t *testing.T) {
	m := newTestManager(t, nil)
	code := m.newStartedGame(t, 2)

	require.NoError(t, m.Enqueue(code, NewDisconnectAction(identity(2))))
	game, err := m.Snapshot(context.Background(), code)
	require.NoError(t, err)
	assert.False(t, game.PlayerByUserID("user-2").IsConnected)

	result := m.submit(t, code, NewDisconnectAction(identity(2)))
	assert.False(t, result.Accepted, "already disconnected")

	result = m.submit(t, code, NewConnectAction(identity(2)))
	assert.True(t, result.Accepted)
	assert.True(t, result.Game.PlayerByUserID("user-2").IsConnected)
	assert.Empty(t, m.broadcaster.types())
}

func TestGameManager_RestoresActiveGames(t *testing.T) {
	ctx := context.Background()
	repository := repositories.NewInMemoryRepository()
	lobby := newLobbyGame(2)
	lobby.Code = "REST01"
	require.NoError(t, repository.SaveGame(ctx, lobby))
	finished := newLobbyGame(2)
	finished.Code = "DONE01"
	finished.Status = types.GameStatusFinished
	require.NoError(t, repository.SaveGame(ctx, finished))

	m := newTestManager(t, repository)
	assert.True(t, m.HasGame("REST01"))
	assert.False(t, m.HasGame("DONE01"))

	result := m.submit(t, "rest01", NewStartAction(identity(1)))
	assert.True(t, result.Accepted)
}

func TestGameManager_SaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	repository := mocks.NewRepository(t)
	lobby := newLobbyGame(2)
	lobby.Code = "FAIL01"
	repository.EXPECT().LoadActiveGames(mock.Anything).Return([]*types.Game{lobby}, nil)
	repository.EXPECT().SaveGame(mock.Anything, mock.Anything).Return(assert.AnError).Once()

	m := newTestManager(t, repository)

	_, err := m.Submit(ctx, "FAIL01", NewStartAction(identity(1)))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, m.broadcaster.types())

	game, err := m.Snapshot(ctx, "FAIL01")
	require.NoError(t, err)
	assert.Equal(t, types.GameStatusLobby, game.Status)
	assert.Empty(t, game.Rounds)
	for _, player := range game.Players {
		assert.Equal(t, types.PlayerRoleHuman, player.Role)
	}
}

func TestGameSession_QueueFull(t *testing.T) {
	session := NewGameSession(NewGameSessionOptions{
		Game:            newLobbyGame(2),
		Repository:      repositories.NewInMemoryRepository(),
		Broadcaster:     &recordingBroadcaster{},
		ArchiveQueue:    queue.NewInMemoryQueue[ArchiveRequest](1),
		Director:        NewDirector(NewDirectorOptions{}),
		ActionQueueSize: 1,
	})

	require.NoError(t, session.Enqueue(NewConnectAction(identity(1))))
	assert.ErrorIs(t, session.Enqueue(NewConnectAction(identity(2))), queue.ErrQueueFull)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := session.Submit(ctx, NewSnapshotAction(identity(1)))
	assert.ErrorIs(t, err, queue.ErrQueueFull)
}

func TestGameSession_StoppedSessionRejectsActions(t *testing.T) {
	session := NewGameSession(NewGameSessionOptions{
		Game:         newLobbyGame(2),
		Repository:   repositories.NewInMemoryRepository(),
		Broadcaster:  &recordingBroadcaster{},
		ArchiveQueue: queue.NewInMemoryQueue[ArchiveRequest](1),
		Director:     NewDirector(NewDirectorOptions{}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session.Start(ctx)

	<-session.Done()
	_, err := session.Submit(context.Background(), NewSnapshotAction(identity(1)))
	assert.ErrorIs(t, err, ErrGameNotFound)
	assert.ErrorIs(t, session.Enqueue(NewConnectAction(identity(1))), ErrGameNotFound)
}

func TestGameSession_CloseRacingEnqueue(t *testing.T) {
	for i := 0; i < 50; i++ {
		session := NewGameSession(NewGameSessionOptions{
			Game:            newLobbyGame(2),
			Repository:      repositories.NewInMemoryRepository(),
			Broadcaster:     &recordingBroadcaster{},
			ArchiveQueue:    queue.NewInMemoryQueue[ArchiveRequest](1),
			Director:        NewDirector(NewDirectorOptions{}),
			ActionQueueSize: 64,
		})

		var wg sync.WaitGroup
		var mu sync.Mutex
		settled := 0
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				action := NewConnectAction(identity(1)).WithCallback(func(Result, error) {
					mu.Lock()
					settled++
					mu.Unlock()
				})
				if err := session.Enqueue(action); err != nil {
					assert.ErrorIs(t, err, ErrGameNotFound)
					mu.Lock()
					settled++
					mu.Unlock()
				}
			}()
		}
		// the session is never started, so only close settles queued actions
		session.close()
		wg.Wait()

		mu.Lock()
		assert.Equal(t, 8, settled, "every action is either rejected or answered")
		mu.Unlock()
		assert.Equal(t, 0, session.actions.Size())
	}
}

func TestGameManager_EnqueueWithCallback(t *testing.T) {
	m := newTestManager(t, nil)
	game, err := m.CreateGame(context.Background(), identity(1))
	require.NoError(t, err)

	done := make(chan Result, 1)
	require.NoError(t, m.Enqueue(game.Code, NewJoinAction(identity(2)).WithCallback(func(result Result, err error) {
		assert.NoError(t, err)
		done <- result
	})))

	select {
	case result := <-done:
		assert.True(t, result.Accepted)
		assert.Len(t, result.Game.Players, 2)
	case <-time.After(time.Second):
		t.Fatal("callback not called")
	}
}
