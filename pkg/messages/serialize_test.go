package messages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeMessage(t *testing.T) {
	type args struct {
		message *Message
	}
	tests := []struct {
		name string
		args args
	}{
		{
			name: "client vote",
			args: args{
				message: &Message{
					Type:     MessageTypeClientVoteOnTeam,
					GameCode: "ABC123",
					Payload:  json.RawMessage(`{"approved":true}`),
				},
			},
		},
		{
			name: "no payload",
			args: args{
				message: &Message{
					Type:     MessageTypeClientStartGame,
					GameCode: "XYZ789",
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := SerializeMessage(tt.args.message)
			require.NoError(t, err)

			got, err := DeserializeMessage(b)
			require.NoError(t, err)
			assert.Equal(t, tt.args.message, got)
		})
	}
}

func TestDeserializeMessage_Malformed(t *testing.T) {
	_, err := DeserializeMessage([]byte("not zstd"))
	assert.Error(t, err)

	_, err = DeserializeMessageFlatbuffer([]byte{1, 2})
	assert.Error(t, err)

	_, err = DeserializeMessageFlatbuffer([]byte{0xff, 0xff, 0xff, 0x7f, 0, 0, 0, 0})
	assert.Error(t, err)
}

func TestEvent_ToMessage(t *testing.T) {
	event := NewEvent(MessageTypeServerTeamVoteResult, &ServerTeamVoteResult{
		TeamID:        2,
		Approvals:     4,
		Rejections:    1,
		Approved:      true,
		AttemptNumber: 1,
	})

	msg, err := event.ToMessage("ABC123")
	require.NoError(t, err)
	assert.Equal(t, MessageTypeServerTeamVoteResult, msg.Type)
	assert.Equal(t, "ABC123", msg.GameCode)
	assert.JSONEq(t, `{"teamId":2,"approvals":4,"rejections":1,"approved":true,"attemptNumber":1}`, string(msg.Payload))
}
