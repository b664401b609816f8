package network

import (
	"context"
	"encoding/json"
	"fmt"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
	"github.com/cbodonnell/firefades/pkg/messages"
	"nhooyr.io/websocket"
)

// ClientMessage is an inbound message tagged with the client that sent it.
type ClientMessage struct {
	ClientID uint32
	Identity gametypes.Identity
	Message  *messages.Message
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, encoding Encoding, msg *messages.Message) error {
	var (
		b   []byte
		typ websocket.MessageType
		err error
	)
	switch encoding {
	case EncodingJSON:
		typ = websocket.MessageText
		b, err = json.Marshal(msg)
	default:
		typ = websocket.MessageBinary
		b, err = messages.SerializeMessage(msg)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := conn.Write(ctx, typ, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection. Binary
// frames are decoded with messages.DeserializeMessage, text frames as JSON.
func ReadMessageFromWS(ctx context.Context, conn *websocket.Conn) (*messages.Message, error) {
	typ, data, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}

	return decodeFrame(typ, data)
}

func decodeFrame(typ websocket.MessageType, data []byte) (*messages.Message, error) {
	if typ == websocket.MessageText {
		msg := &messages.Message{}
		if err := json.Unmarshal(data, msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %v", err)
		}
		return msg, nil
	}

	msg, err := messages.DeserializeMessage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}
	return msg, nil
}
