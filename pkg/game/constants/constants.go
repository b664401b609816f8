package constants

const (
	// PointsNeededToWin is the number of successful or sabotaged missions that ends the game
	PointsNeededToWin int = 3
	// MaxConsecutiveRejections is the number of back-to-back rejected team proposals
	// after which the shapeshifters win
	MaxConsecutiveRejections int = 5
	// LeaderImplicitApprovals is added to every team approval tally for the leader,
	// who never casts an explicit team vote
	LeaderImplicitApprovals int = 1

	// MinPlayerCount is the minimum number of players needed to start a game
	MinPlayerCount int = 2
	// MaxPlayerCount is the maximum number of players in a game
	MaxPlayerCount int = 10

	// FirstRoundNumber is the number of the first round of a game
	FirstRoundNumber int = 1
	// MaxRoundNumber is the number of the last possible round of a game
	MaxRoundNumber int = 5
	// FirstSeat is the seat of the first player and of the first leader
	FirstSeat int = 1

	// GameCodeLength is the length of a game connection code
	GameCodeLength int = 6
	// GameCodeChars are the characters used for game connection codes
	GameCodeChars string = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// ReasonTooManyRejections is the end reason when the rejection limit is reached
	ReasonTooManyRejections string = "too many rejected proposals"
	// ReasonMissionsSucceeded is the end reason when the humans reach the win threshold
	ReasonMissionsSucceeded string = "3 successful missions"
	// ReasonMissionsSabotaged is the end reason when the shapeshifters reach the win threshold
	ReasonMissionsSabotaged string = "3 sabotaged missions"
)
