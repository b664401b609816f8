package network

import (
	"context"
	"errors"
	"net/http"
	"strings"

	authproviders "github.com/cbodonnell/firefades/pkg/auth/providers"
	"github.com/cbodonnell/firefades/pkg/log"
	"github.com/cbodonnell/firefades/pkg/queue"
	"nhooyr.io/websocket"
)

const (
	// WSReadLimit bounds the size of a single inbound frame
	WSReadLimit = 64 * 1024
)

// WSServer accepts authenticated websocket connections, feeds their
// messages into the client message queue and writes broadcasts back.
type WSServer struct {
	authProvider   authproviders.AuthProvider
	clientManager  *ClientManager
	messageQueue   queue.Queue[*ClientMessage]
	originPatterns []string
}

type NewWSServerOptions struct {
	AuthProvider  authproviders.AuthProvider
	ClientManager *ClientManager
	MessageQueue  queue.Queue[*ClientMessage]
	// OriginPatterns lists the cross origin hosts allowed to connect
	OriginPatterns []string
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	return &WSServer{
		authProvider:   opts.AuthProvider,
		clientManager:  opts.ClientManager,
		messageQueue:   opts.MessageQueue,
		originPatterns: opts.OriginPatterns,
	}
}

// ServeHTTP authenticates the ?token= query parameter and upgrades the
// connection. Repeated ?game= parameters resubscribe a reconnecting client.
func (s *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	claims, err := s.authProvider.VerifyToken(r.Context(), query.Get("token"))
	if err != nil {
		log.Debug("Rejected websocket connection: %v", err)
		http.Error(w, "failed to verify token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		log.Error("Failed to accept websocket connection: %v", err)
		return
	}
	conn.SetReadLimit(WSReadLimit)

	encoding := EncodingBinary
	if query.Get("encoding") == "json" {
		encoding = EncodingJSON
	}

	identity := claims.Identity()
	codes := make([]string, 0)
	for _, code := range query["game"] {
		codes = append(codes, strings.ToUpper(strings.TrimSpace(code)))
	}

	client, err := s.clientManager.ConnectClient(identity, encoding, codes...)
	if err != nil {
		log.Error("Failed to connect client: %v", err)
		conn.Close(websocket.StatusInternalError, "failed to connect client")
		return
	}
	log.Info("Client %d connected as %s", client.ID, identity.UserID)

	s.handleWSConnection(r.Context(), conn, client)
}

// handleWSConnection handles a WebSocket connection until either side closes it.
func (s *WSServer) handleWSConnection(ctx context.Context, conn *websocket.Conn, client *Client) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.clientManager.DisconnectClient(client.ID)
		conn.Close(websocket.StatusNormalClosure, "")
		log.Info("Client %d disconnected", client.ID)
	}()

	go s.writeLoop(ctx, cancel, conn, client)

	for {
		message, err := ReadMessageFromWS(ctx, conn)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				log.Debug("Error reading websocket message from client %d: %v", client.ID, err)
			}
			return
		}

		clientMessage := &ClientMessage{
			ClientID: client.ID,
			Identity: client.Identity,
			Message:  message,
		}
		if err := s.messageQueue.Enqueue(clientMessage); err != nil {
			log.Error("Failed to enqueue message from client %d: %v", client.ID, err)
		}
	}
}

func (s *WSServer) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, client *Client) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.Send():
			if !ok {
				return
			}
			if err := WriteMessageToWS(ctx, conn, client.Encoding, msg); err != nil {
				log.Debug("Failed to write to client %d: %v", client.ID, err)
				return
			}
		}
	}
}
