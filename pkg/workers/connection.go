package workers

import (
	"context"
	"errors"

	"github.com/cbodonnell/firefades/pkg/game"
	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/network"
)

type ConnectionEventWorker struct {
	clientEventChan <-chan network.ClientEvent
	gameRouter      GameRouter
}

type NewConnectionEventWorkerOptions struct {
	ClientEventChan <-chan network.ClientEvent
	GameRouter      GameRouter
}

// NewConnectionEventWorker creates a new ConnectionEventWorker.
// The worker processes client events like connect and disconnect
// and queues liveness updates on every game the client is subscribed to.
func NewConnectionEventWorker(opts NewConnectionEventWorkerOptions) *ConnectionEventWorker {
	return &ConnectionEventWorker{
		clientEventChan: opts.ClientEventChan,
		gameRouter:      opts.GameRouter,
	}
}

func (w *ConnectionEventWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.clientEventChan:
			switch event.Type {
			case network.ClientEventTypeConnect:
				w.enqueue(event, game.NewConnectAction)
			case network.ClientEventTypeDisconnect:
				w.enqueue(event, game.NewDisconnectAction)
			default:
				log.Error("Unknown client event type: %v", event.Type)
			}
		}
	}
}

func (w *ConnectionEventWorker) enqueue(event network.ClientEvent, newAction func(identity gametypes.Identity) *game.Action) {
	for _, code := range event.GameCodes {
		if err := w.gameRouter.Enqueue(code, newAction(event.Identity)); err != nil {
			if errors.Is(err, game.ErrGameNotFound) {
				log.Debug("Client %d event for unknown game %s", event.ClientID, code)
				continue
			}
			log.Error("Failed to enqueue client %d event for game %s: %v", event.ClientID, code, err)
		}
	}
}
