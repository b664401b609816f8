package messages

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

// Message table field slots, see message.fbs
const (
	messageFieldType     = 0
	messageFieldGameCode = 1
	messageFieldPayload  = 2
	messageFieldCount    = 3
)

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic(fmt.Sprintf("failed to create zstd encoder: %v", err))
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
	}
}

// SerializeMessage encodes a message as a zstd compressed flatbuffer.
func SerializeMessage(m *Message) ([]byte, error) {
	b, err := SerializeMessageFlatbuffer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}

	return encoder.EncodeAll(b, make([]byte, 0, len(b))), nil
}

// DeserializeMessage decodes a message produced by SerializeMessage.
func DeserializeMessage(data []byte) (*Message, error) {
	b, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress message: %v", err)
	}

	message, err := DeserializeMessageFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return message, nil
}

func SerializeMessageFlatbuffer(m *Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("message is nil")
	}

	builder := flatbuffers.NewBuilder(MessageBufferSize)

	payload := builder.CreateByteVector(m.Payload)
	gameCode := builder.CreateString(m.GameCode)
	messageType := builder.CreateString(string(m.Type))

	builder.StartObject(messageFieldCount)
	builder.PrependUOffsetTSlot(messageFieldType, messageType, 0)
	builder.PrependUOffsetTSlot(messageFieldGameCode, gameCode, 0)
	builder.PrependUOffsetTSlot(messageFieldPayload, payload, 0)
	messageOffset := builder.EndObject()
	builder.Finish(messageOffset)

	return builder.FinishedBytes(), nil
}

func DeserializeMessageFlatbuffer(b []byte) (message *Message, err error) {
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("buffer too short: %d bytes", len(b))
	}

	// malformed buffers index out of range inside the flatbuffers runtime
	defer func() {
		if r := recover(); r != nil {
			message = nil
			err = fmt.Errorf("malformed message buffer: %v", r)
		}
	}()

	table := &flatbuffers.Table{
		Bytes: b,
		Pos:   flatbuffers.GetUOffsetT(b),
	}

	message = &Message{
		Type:     MessageType(readByteVector(table, messageFieldType)),
		GameCode: string(readByteVector(table, messageFieldGameCode)),
	}
	if payload := readByteVector(table, messageFieldPayload); len(payload) > 0 {
		message.Payload = append([]byte(nil), payload...)
	}

	return message, nil
}

// readByteVector reads a string or [ubyte] field, returning nil when it is absent.
func readByteVector(table *flatbuffers.Table, field int) []byte {
	vtableOffset := flatbuffers.VOffsetT(4 + 2*field)
	o := flatbuffers.UOffsetT(table.Offset(vtableOffset))
	if o == 0 {
		return nil
	}
	return table.ByteVector(o + table.Pos)
}
