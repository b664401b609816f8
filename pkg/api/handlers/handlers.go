package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/cbodonnell/firefades/pkg/api/middleware"
	authproviders "github.com/cbodonnell/firefades/pkg/auth/providers"
	"github.com/cbodonnell/firefades/pkg/game"
	"github.com/cbodonnell/firefades/pkg/game/rules"
	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/messages"
	"github.com/cbodonnell/firefades/pkg/version"
	"github.com/gorilla/mux"
)

const MaxNicknameLength = 16

var nicknameRegex = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

// GameService is the part of the game manager the API drives.
type GameService interface {
	CreateGame(ctx context.Context, identity gametypes.Identity) (*gametypes.Game, error)
	Submit(ctx context.Context, code string, action *game.Action) (game.Result, error)
	Snapshot(ctx context.Context, code string) (*gametypes.Game, error)
}

// SessionIssuer hands out tokens for players without an account.
type SessionIssuer interface {
	IssueAnonymousToken(name string) (string, *authproviders.TokenClaims, error)
}

type SessionResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Nickname string `json:"nickname,omitempty"`
}

// RoundView is the public state of a round. Mission votes are secret and
// only their count is shown.
type RoundView struct {
	RoundNumber      int                   `json:"roundNumber"`
	LeaderSeat       int                   `json:"leaderSeat"`
	TeamSize         int                   `json:"teamSize"`
	Status           gametypes.RoundStatus `json:"status"`
	Result           gametypes.RoundResult `json:"result"`
	ActiveTeam       *gametypes.Team       `json:"activeTeam,omitempty"`
	MissionVotesCast int                   `json:"missionVotesCast"`
}

// GameView is a game as one player may see it: everyone's seat and
// liveness but only the caller's own role.
type GameView struct {
	ID                           string                   `json:"id"`
	Code                         string                   `json:"code"`
	Status                       gametypes.GameStatus     `json:"status"`
	Winner                       gametypes.GameResult     `json:"winner"`
	EndReason                    string                   `json:"endReason,omitempty"`
	LeaderSeat                   int                      `json:"leaderSeat"`
	RoundCounter                 int                      `json:"roundCounter"`
	SuccessCount                 int                      `json:"successCount"`
	SabotageCount                int                      `json:"sabotageCount"`
	ConsecutiveRejectedProposals int                      `json:"consecutiveRejectedProposals"`
	Players                      []messages.PlayerSummary `json:"players"`
	CurrentRound                 *RoundView               `json:"currentRound,omitempty"`
	You                          *PlayerView              `json:"you,omitempty"`
}

type PlayerView struct {
	Seat int                  `json:"seat"`
	Role gametypes.PlayerRole `json:"role"`
}

// NewGameView builds the view of game for the given user.
func NewGameView(g *gametypes.Game, userID string) *GameView {
	view := &GameView{
		ID:                           g.ID,
		Code:                         g.Code,
		Status:                       g.Status,
		Winner:                       g.Winner,
		EndReason:                    g.EndReason,
		LeaderSeat:                   g.LeaderSeat,
		RoundCounter:                 g.RoundCounter,
		SuccessCount:                 g.SuccessCount,
		SabotageCount:                g.SabotageCount,
		ConsecutiveRejectedProposals: g.ConsecutiveRejectedProposals,
		Players:                      game.PlayerSummariesFromGame(g),
	}
	if round := g.CurrentRound(); round != nil {
		view.CurrentRound = &RoundView{
			RoundNumber:      round.RoundNumber,
			LeaderSeat:       round.LeaderSeat,
			TeamSize:         round.TeamSize,
			Status:           round.Status,
			Result:           round.Result,
			ActiveTeam:       round.ActiveTeam(),
			MissionVotesCast: len(round.MissionVotes),
		}
	}
	if player := g.PlayerByUserID(userID); player != nil {
		view.You = &PlayerView{Seat: player.Seat}
		// roles are dealt when the game starts
		if !g.IsInLobby() {
			view.You.Role = player.Role
		}
	}
	return view
}

func HandleIssueAnonymousSession(issuer SessionIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nickname := r.FormValue("nickname")
		if nickname != "" {
			if len(nickname) > MaxNicknameLength {
				http.Error(w, "Nickname must be at most 16 characters", http.StatusBadRequest)
				return
			}
			if !nicknameRegex.MatchString(nickname) {
				http.Error(w, "Nickname cannot contain special characters", http.StatusBadRequest)
				return
			}
		}

		token, claims, err := issuer.IssueAnonymousToken(nickname)
		if err != nil {
			log.Error("failed to issue anonymous token: %v", err)
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, &SessionResponse{
			Token:    token,
			UserID:   claims.UID,
			Nickname: claims.Name,
		})
	}
}

func HandleCreateGame(games GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrError(w, r)
		if !ok {
			return
		}

		created, err := games.CreateGame(r.Context(), identity)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, NewGameView(created, identity.UserID))
	}
}

func HandleGetGame(games GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrError(w, r)
		if !ok {
			return
		}

		snapshot, err := games.Snapshot(r.Context(), mux.Vars(r)["code"])
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, NewGameView(snapshot, identity.UserID))
	}
}

func HandleJoinGame(games GameService) http.HandlerFunc {
	return handleAction(games, game.NewJoinAction, "Game has already started")
}

func HandleLeaveGame(games GameService) http.HandlerFunc {
	return handleAction(games, game.NewLeaveAction, "Not seated in this game")
}

func HandleStartGame(games GameService) http.HandlerFunc {
	return handleAction(games, game.NewStartAction, "Game cannot be started")
}

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version.Get(),
		})
	}
}

// handleAction submits an action for the caller and responds with the
// resulting view. An ignored action is a conflict with the game's state.
func handleAction(games GameService, newAction func(gametypes.Identity) *game.Action, ignored string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrError(w, r)
		if !ok {
			return
		}

		result, err := games.Submit(r.Context(), mux.Vars(r)["code"], newAction(identity))
		if err != nil {
			writeGameError(w, err)
			return
		}
		if !result.Accepted {
			http.Error(w, ignored, http.StatusConflict)
			return
		}

		writeJSON(w, http.StatusOK, NewGameView(result.Game, identity.UserID))
	}
}

func identityOrError(w http.ResponseWriter, r *http.Request) (gametypes.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		log.Error("failed to get identity from context")
		http.Error(w, "Failed to get identity from context", http.StatusInternalServerError)
	}
	return identity, ok
}

func writeGameError(w http.ResponseWriter, err error) {
	var ruleErr *rules.Error
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		http.Error(w, "Game not found", http.StatusNotFound)
	case rules.IsInvalidState(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &ruleErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error("game request failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
