package workers

import (
	"github.com/cbodonnell/firefades/pkg/game"
	"github.com/cbodonnell/firefades/pkg/messages"
)

// GameRouter queues actions on running game sessions.
type GameRouter interface {
	Enqueue(code string, action *game.Action) error
}

// Subscriptions tracks which connections receive a game's events.
type Subscriptions interface {
	Subscribe(clientID uint32, gameCode string) error
	Unsubscribe(clientID uint32, gameCode string)
	UnsubscribeAll(gameCode string)
	SendToClient(clientID uint32, msg *messages.Message) error
}
