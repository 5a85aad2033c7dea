package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

func TestParseClientMessage(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "answer message", data: `{"type":"answer","payload":{"text":"hi"}}`},
		{name: "unknown type", data: `{"type":"vote","payload":{}}`, wantErr: true},
		{name: "missing type", data: `{"payload":{}}`, wantErr: true},
		{name: "malformed json", data: `{"type":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseClientMessage([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ClientMessageAnswer, msg.Type)
		})
	}
}

func TestParseClientMessage_UnknownTypeSentinel(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"poll"}`))
	assert.ErrorIs(t, err, domain.ErrUnknownMessageType)
}

func TestAnswerText(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"answer","payload":{"text":"the pacing was good"}}`))
	require.NoError(t, err)

	text, err := msg.AnswerText()
	require.NoError(t, err)
	assert.Equal(t, "the pacing was good", text)
}

func TestAnswerText_EmptyTextRejected(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"answer","payload":{"text":""}}`))
	require.NoError(t, err)

	_, err = msg.AnswerText()
	assert.Error(t, err)
}

func TestAnswerText_MalformedPayload(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"answer","payload":"not an object"}`))
	require.NoError(t, err)

	_, err = msg.AnswerText()
	assert.Error(t, err)
}

func TestEncodeServerMessage_EnvelopeFields(t *testing.T) {
	snapshot := domain.SessionSnapshot{ID: "1234", Stage: domain.StageAwaitAnswers, AudienceCount: 2}

	data, err := EncodeServerMessage(snapshot, ServerMessageSync, nil)
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Contains(t, envelope, "type")
	assert.Contains(t, envelope, "session")
	assert.NotContains(t, envelope, "error")

	var session map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(envelope["session"], &session))
	assert.Contains(t, session, "audienceCount")
	assert.Contains(t, session, "stage")
}

func TestEncodeServerMessage_ErrorPayloadForcesErrorType(t *testing.T) {
	data, err := EncodeServerMessage(domain.SessionSnapshot{ID: "1234"}, ServerMessageSync, &ErrorPayload{Message: "too many answers, slow down"})
	require.NoError(t, err)

	var msg ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, ServerMessageError, msg.Type)
	require.NotNil(t, msg.Error)
	assert.Equal(t, "too many answers, slow down", msg.Error.Message)
}
