package types

type GameStatus string

const (
	GameStatusLobby      GameStatus = "lobby"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinished   GameStatus = "finished"
)

type GameResult string

const (
	GameResultUnknown      GameResult = "unknown"
	GameResultHuman        GameResult = "human"
	GameResultShapeshifter GameResult = "shapeshifter"
)

type PlayerRole string

const (
	PlayerRoleHuman        PlayerRole = "human"
	PlayerRoleShapeshifter PlayerRole = "shapeshifter"
)

type RoundStatus string

const (
	RoundStatusTeamSelection RoundStatus = "team_selection"
	RoundStatusVoteOnTeam    RoundStatus = "vote_on_team"
	RoundStatusSecretChoices RoundStatus = "secret_choices"
	RoundStatusCompleted     RoundStatus = "completed"
)

type RoundResult string

const (
	RoundResultUnknown  RoundResult = "unknown"
	RoundResultSuccess  RoundResult = "success"
	RoundResultSabotage RoundResult = "sabotage"
)

// Identity references the user behind a player, either an anonymous
// session or an authenticated account.
type Identity struct {
	UserID    string `json:"userId"`
	Nickname  string `json:"nickname"`
	Anonymous bool   `json:"anonymous"`
}
