package messages

import (
	"encoding/json"
	"fmt"
)

const (
	// MessageBufferSize represents the maximum size of a message
	MessageBufferSize = 1024
)

type MessageType string

// Client message types
const (
	MessageTypeClientJoinLobby     MessageType = "join"
	MessageTypeClientLeaveLobby    MessageType = "leave"
	MessageTypeClientStartGame     MessageType = "start"
	MessageTypeClientProposeTeam   MessageType = "propose_team"
	MessageTypeClientVoteOnTeam    MessageType = "vote_team"
	MessageTypeClientVoteOnMission MessageType = "vote_mission"
)

// Server message types, broadcast to every participant of a game
const (
	MessageTypeServerPlayerJoined         MessageType = "PlayerJoined"
	MessageTypeServerPlayerLeft           MessageType = "PlayerLeft"
	MessageTypeServerGameStarted          MessageType = "GameStarted"
	MessageTypeServerTeamProposed         MessageType = "TeamProposed"
	MessageTypeServerPlayerVoted          MessageType = "PlayerVoted"
	MessageTypeServerTeamVoteResult       MessageType = "TeamVoteResult"
	MessageTypeServerMissionStarted       MessageType = "MissionStarted"
	MessageTypeServerMissionVoteSubmitted MessageType = "MissionVoteSubmitted"
	MessageTypeServerMissionVoteResult    MessageType = "MissionVoteResult"
	MessageTypeServerStartNextRound       MessageType = "StartNextRound"
	MessageTypeServerGameEnded            MessageType = "GameEnded"
	MessageTypeServerError                MessageType = "Error"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	Type     MessageType     `json:"type"`
	GameCode string          `json:"gameCode"`
	Payload  json.RawMessage `json:"payload"`
}

// Event is an outbound state change produced by the game, before it is
// encoded into a Message.
type Event struct {
	Type    MessageType
	Payload interface{}
}

func NewEvent(t MessageType, payload interface{}) Event {
	return Event{
		Type:    t,
		Payload: payload,
	}
}

// ToMessage encodes the event payload as JSON for the given game.
func (e Event) ToMessage(gameCode string) (*Message, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %v", e.Type, err)
	}
	return &Message{
		Type:     e.Type,
		GameCode: gameCode,
		Payload:  payload,
	}, nil
}

// Client payloads

type ClientProposeTeam struct {
	Seats []int `json:"seats"`
}

type ClientVoteOnTeam struct {
	Approved bool `json:"approved"`
}

type ClientVoteOnMission struct {
	Success bool `json:"success"`
}

// Server payloads

type PlayerSummary struct {
	UserID      string `json:"userId"`
	Nickname    string `json:"nickname"`
	Seat        int    `json:"seat"`
	IsConnected bool   `json:"isConnected"`
}

type ServerPlayerJoined struct {
	Players      []PlayerSummary `json:"players"`
	TotalPlayers int             `json:"totalPlayers"`
}

type ServerPlayerLeft struct {
	LeftUserID   string          `json:"leftUserId"`
	Players      []PlayerSummary `json:"players"`
	TotalPlayers int             `json:"totalPlayers"`
}

type ServerGameStarted struct {
	RoundNumber int `json:"roundNumber"`
	LeaderSeat  int `json:"leaderSeat"`
}

type ServerTeamProposed struct {
	TeamID     int   `json:"teamId"`
	LeaderSeat int   `json:"leaderSeat"`
	Members    []int `json:"members"`
	TeamSize   int   `json:"teamSize"`
}

type ServerPlayerVoted struct {
	Seat     int  `json:"seat"`
	Approved bool `json:"approved"`
}

type ServerTeamVoteResult struct {
	TeamID        int  `json:"teamId"`
	Approvals     int  `json:"approvals"`
	Rejections    int  `json:"rejections"`
	Approved      bool `json:"approved"`
	AttemptNumber int  `json:"attemptNumber"`
}

type ServerMissionStarted struct {
	TeamID      int `json:"teamId"`
	RoundNumber int `json:"roundNumber"`
}

type ServerMissionVoteSubmitted struct {
	Seat int `json:"seat"`
}

type ServerMissionVoteResult struct {
	RoundNumber  int `json:"roundNumber"`
	SuccessVotes int `json:"successVotes"`
	FailVotes    int `json:"failVotes"`
}

type ServerStartNextRound struct {
	RoundNumber int `json:"roundNumber"`
	LeaderSeat  int `json:"leaderSeat"`
}

type ServerGameEnded struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

type ServerError struct {
	Message string `json:"message"`
}
