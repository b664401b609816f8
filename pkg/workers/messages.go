package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cbodonnell/firefades/pkg/game"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/messages"
	"github.com/cbodonnell/firefades/pkg/network"
	"github.com/cbodonnell/firefades/pkg/queue"
)

type ClientMessageWorker struct {
	messageQueue  queue.Queue[*network.ClientMessage]
	gameRouter    GameRouter
	subscriptions Subscriptions
}

type NewClientMessageWorkerOptions struct {
	MessageQueue  queue.Queue[*network.ClientMessage]
	GameRouter    GameRouter
	Subscriptions Subscriptions
}

// NewClientMessageWorker creates a new ClientMessageWorker.
// The worker turns inbound client messages into game actions and queues them
// on the target session without waiting, so a slow game never holds up
// messages for the others.
func NewClientMessageWorker(opts NewClientMessageWorkerOptions) *ClientMessageWorker {
	return &ClientMessageWorker{
		messageQueue:  opts.MessageQueue,
		gameRouter:    opts.GameRouter,
		subscriptions: opts.Subscriptions,
	}
}

func (w *ClientMessageWorker) Start(ctx context.Context) {
	for {
		clientMessage, err := w.messageQueue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Failed to dequeue client message: %v", err)
			continue
		}
		if err := w.handle(clientMessage); err != nil {
			log.Debug("Rejected %s message from client %d: %v", clientMessage.Message.Type, clientMessage.ClientID, err)
			w.sendError(clientMessage.ClientID, clientMessage.Message.GameCode, err)
		}
	}
}

func (w *ClientMessageWorker) handle(clientMessage *network.ClientMessage) error {
	msg := clientMessage.Message
	code := game.NormalizeCode(msg.GameCode)
	if code == "" {
		return fmt.Errorf("missing game code")
	}

	var action *game.Action
	identity := clientMessage.Identity
	switch msg.Type {
	case messages.MessageTypeClientJoinLobby:
		// subscribe first so the joining client sees its own PlayerJoined
		if err := w.subscriptions.Subscribe(clientMessage.ClientID, code); err != nil {
			return err
		}
		action = game.NewJoinAction(identity).WithCallback(func(result game.Result, err error) {
			if err != nil || !result.Accepted {
				w.subscriptions.Unsubscribe(clientMessage.ClientID, code)
			}
			if err != nil {
				w.sendError(clientMessage.ClientID, code, err)
			}
		})
		if err := w.gameRouter.Enqueue(code, action); err != nil {
			w.subscriptions.Unsubscribe(clientMessage.ClientID, code)
			return err
		}
		return nil
	case messages.MessageTypeClientLeaveLobby:
		action = game.NewLeaveAction(identity).WithCallback(func(result game.Result, err error) {
			if err != nil {
				w.sendError(clientMessage.ClientID, code, err)
				return
			}
			if result.Accepted {
				w.subscriptions.Unsubscribe(clientMessage.ClientID, code)
			}
		})
		return w.gameRouter.Enqueue(code, action)
	case messages.MessageTypeClientStartGame:
		action = game.NewStartAction(identity)
	case messages.MessageTypeClientProposeTeam:
		payload := &messages.ClientProposeTeam{}
		if err := decodePayload(msg, payload); err != nil {
			return err
		}
		action = game.NewProposeTeamAction(identity, payload.Seats)
	case messages.MessageTypeClientVoteOnTeam:
		payload := &messages.ClientVoteOnTeam{}
		if err := decodePayload(msg, payload); err != nil {
			return err
		}
		action = game.NewVoteOnTeamAction(identity, payload.Approved)
	case messages.MessageTypeClientVoteOnMission:
		payload := &messages.ClientVoteOnMission{}
		if err := decodePayload(msg, payload); err != nil {
			return err
		}
		action = game.NewVoteOnMissionAction(identity, payload.Success)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}

	action.WithCallback(func(result game.Result, err error) {
		if err != nil {
			w.sendError(clientMessage.ClientID, code, err)
		}
	})
	return w.gameRouter.Enqueue(code, action)
}

// sendError reports a failure to the client. Actions on unknown games are
// dropped silently like any other invalid live-play action.
func (w *ClientMessageWorker) sendError(clientID uint32, code string, cause error) {
	if errors.Is(cause, game.ErrGameNotFound) {
		return
	}
	msg, err := messages.NewEvent(messages.MessageTypeServerError, messages.ServerError{Message: cause.Error()}).ToMessage(code)
	if err != nil {
		log.Error("Failed to encode error message: %v", err)
		return
	}
	if err := w.subscriptions.SendToClient(clientID, msg); err != nil {
		log.Debug("Failed to send error to client %d: %v", clientID, err)
	}
}

func decodePayload(msg *messages.Message, v interface{}) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("missing %s payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v", msg.Type, err)
	}
	return nil
}
