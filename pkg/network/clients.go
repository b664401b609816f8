package network

import (
	"fmt"
	"math/rand/v2"
	"sync"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/messages"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// ClientEventChannelSize represents the size of the client event channel
	ClientEventChannelSize = 1024
	// ClientSendBufferSize is how many outbound messages may wait for a slow client
	ClientSendBufferSize = 256
)

type Encoding int

const (
	// EncodingBinary frames are zstd compressed flatbuffers
	EncodingBinary Encoding = iota
	// EncodingJSON frames are plain JSON text
	EncodingJSON
)

// Client represents a connected client
type Client struct {
	ID       uint32
	Identity gametypes.Identity
	Encoding Encoding
	send     chan *messages.Message
	games    map[string]bool
}

// Send returns the channel of messages waiting to be written to the client.
// It is closed when the client disconnects.
func (c *Client) Send() <-chan *messages.Message {
	return c.send
}

// ClientEvent represents an event that happened to a client
type ClientEvent struct {
	ClientID uint32
	Type     ClientEventType
	Identity gametypes.Identity
	// GameCodes are the games the client was subscribed to
	GameCodes []string
}

// ClientEventType represents the type of a client event
type ClientEventType int

const (
	ClientEventTypeConnect ClientEventType = iota
	ClientEventTypeDisconnect
)

// ClientManager manages connected clients and the games they follow.
// It is the group broadcast transport for game events.
type ClientManager struct {
	clients         map[uint32]*Client
	subscriptions   map[string]map[uint32]bool
	clientsLock     sync.RWMutex
	clientEventChan chan ClientEvent
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:         make(map[uint32]*Client),
		subscriptions:   make(map[string]map[uint32]bool),
		clientEventChan: make(chan ClientEvent, ClientEventChannelSize),
	}
}

// GetClientEventChan returns a one-way channel for receiving client events
func (cm *ClientManager) GetClientEventChan() <-chan ClientEvent {
	return cm.clientEventChan
}

// ConnectClient adds a new client subscribed to the given games and returns it.
func (cm *ClientManager) ConnectClient(identity gametypes.Identity, encoding Encoding, gameCodes ...string) (*Client, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	client := &Client{
		ID:       clientID,
		Identity: identity,
		Encoding: encoding,
		send:     make(chan *messages.Message, ClientSendBufferSize),
		games:    make(map[string]bool),
	}
	cm.clients[clientID] = client
	for _, code := range gameCodes {
		cm.subscribe(client, code)
	}

	cm.emit(ClientEvent{
		ClientID:  clientID,
		Type:      ClientEventTypeConnect,
		Identity:  identity,
		GameCodes: subscribedCodes(client),
	})

	return client, nil
}

// DisconnectClient removes a client from the manager
func (cm *ClientManager) DisconnectClient(clientID uint32) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	client, ok := cm.clients[clientID]
	if !ok {
		return
	}

	codes := subscribedCodes(client)
	for _, code := range codes {
		cm.unsubscribe(client, code)
	}
	delete(cm.clients, clientID)
	close(client.send)

	cm.emit(ClientEvent{
		ClientID:  clientID,
		Type:      ClientEventTypeDisconnect,
		Identity:  client.Identity,
		GameCodes: codes,
	})
}

// Subscribe adds the client to the audience of a game.
func (cm *ClientManager) Subscribe(clientID uint32, gameCode string) error {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	client, ok := cm.clients[clientID]
	if !ok {
		return fmt.Errorf("client %d not found", clientID)
	}
	cm.subscribe(client, gameCode)
	return nil
}

// Unsubscribe removes the client from the audience of a game.
func (cm *ClientManager) Unsubscribe(clientID uint32, gameCode string) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	if client, ok := cm.clients[clientID]; ok {
		cm.unsubscribe(client, gameCode)
	}
}

// UnsubscribeAll drops every subscription to a game, e.g. once it has ended.
func (cm *ClientManager) UnsubscribeAll(gameCode string) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	for clientID := range cm.subscriptions[gameCode] {
		if client, ok := cm.clients[clientID]; ok {
			delete(client.games, gameCode)
		}
	}
	delete(cm.subscriptions, gameCode)
}

// Subscribers returns the IDs of the clients following a game.
func (cm *ClientManager) Subscribers(gameCode string) []uint32 {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()

	ids := make([]uint32, 0, len(cm.subscriptions[gameCode]))
	for clientID := range cm.subscriptions[gameCode] {
		ids = append(ids, clientID)
	}
	return ids
}

// Broadcast queues a message for every client subscribed to a game.
// Clients whose send buffer is full miss the message.
func (cm *ClientManager) Broadcast(gameCode string, msg *messages.Message) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()

	for clientID := range cm.subscriptions[gameCode] {
		client, ok := cm.clients[clientID]
		if !ok {
			continue
		}
		select {
		case client.send <- msg:
		default:
			log.Warn("Send buffer full for client %d, dropping %s message", clientID, msg.Type)
		}
	}
}

// SendToClient queues a message for a single client.
func (cm *ClientManager) SendToClient(clientID uint32, msg *messages.Message) error {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()

	client, ok := cm.clients[clientID]
	if !ok {
		return fmt.Errorf("client %d not found", clientID)
	}
	select {
	case client.send <- msg:
		return nil
	default:
		return fmt.Errorf("send buffer full for client %d", clientID)
	}
}

func (cm *ClientManager) Exists(clientID uint32) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

func (cm *ClientManager) subscribe(client *Client, gameCode string) {
	if gameCode == "" {
		return
	}
	client.games[gameCode] = true
	if cm.subscriptions[gameCode] == nil {
		cm.subscriptions[gameCode] = make(map[uint32]bool)
	}
	cm.subscriptions[gameCode][client.ID] = true
}

func (cm *ClientManager) unsubscribe(client *Client, gameCode string) {
	delete(client.games, gameCode)
	if subscribers, ok := cm.subscriptions[gameCode]; ok {
		delete(subscribers, client.ID)
		if len(subscribers) == 0 {
			delete(cm.subscriptions, gameCode)
		}
	}
}

// emit must not block while the lock is held
func (cm *ClientManager) emit(event ClientEvent) {
	select {
	case cm.clientEventChan <- event:
	default:
		log.Warn("Client event channel full, dropping event for client %d", event.ClientID)
	}
}

func subscribedCodes(client *Client) []string {
	codes := make([]string, 0, len(client.games))
	for code := range client.games {
		codes = append(codes, code)
	}
	return codes
}

// generateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
