package ws

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/gofiber/contrib/websocket"
	"github.com/lk16/reversi/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	msgType int
	data    []byte
}

// fakeConn replays queued messages and returns io.EOF once they run out.
type fakeConn struct {
	incoming []fakeMessage
	written  [][]byte
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	if len(f.incoming) == 0 {
		return 0, nil, io.EOF
	}
	msg := f.incoming[0]
	f.incoming = f.incoming[1:]
	return msg.msgType, msg.data, nil
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.written = append(f.written, data)
	return nil
}

func textMessage(t *testing.T, event string, id int, data any) fakeMessage {
	rawData, err := json.Marshal(data)
	require.NoError(t, err)

	msg, err := json.Marshal(Incoming{Event: event, ID: id, Data: rawData})
	require.NoError(t, err)

	return fakeMessage{msgType: websocket.TextMessage, data: msg}
}

type analysisReply struct {
	ID    int             `json:"id"`
	Data  models.Analysis `json:"data"`
	Error string          `json:"error"`
}

func TestHandler_AnalyzeAndMove(t *testing.T) {
	position := models.PositionPayload{Rows: 8, Cols: 8, Turn: "B"}

	conn := &fakeConn{incoming: []fakeMessage{
		textMessage(t, EventAnalyzeRequest, 1, position),
		textMessage(t, EventMoveRequest, 2, models.MovePayload{Position: position, Row: 3, Col: 4}),
		textMessage(t, EventMoveRequest, 3, models.MovePayload{Position: position, Row: 1, Col: 1}),
	}}

	err := NewHandler(conn).Handle()
	require.True(t, errors.Is(err, io.EOF))
	require.Len(t, conn.written, 3)

	var analyzed analysisReply
	require.NoError(t, json.Unmarshal(conn.written[0], &analyzed))
	require.Equal(t, 1, analyzed.ID)
	require.Empty(t, analyzed.Error)
	require.Len(t, analyzed.Data.Moves, 4)

	var moved analysisReply
	require.NoError(t, json.Unmarshal(conn.written[1], &moved))
	require.Equal(t, 2, moved.ID)
	require.Equal(t, "White", moved.Data.Turn)
	require.Equal(t, 4, moved.Data.BlackCount)

	var rejected analysisReply
	require.NoError(t, json.Unmarshal(conn.written[2], &rejected))
	require.Equal(t, 3, rejected.ID)
	require.Contains(t, rejected.Error, "invalid move")
}

func TestHandler_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name    string
		message fakeMessage
		wantErr string
	}{
		{
			name:    "binary message",
			message: fakeMessage{msgType: websocket.BinaryMessage, data: []byte("{}")},
			wantErr: "unexpected message type",
		},
		{
			name:    "bad json",
			message: fakeMessage{msgType: websocket.TextMessage, data: []byte("{")},
			wantErr: "unmarshal error",
		},
		{
			name:    "missing event",
			message: fakeMessage{msgType: websocket.TextMessage, data: []byte(`{"id": 1}`)},
			wantErr: "event field",
		},
		{
			name:    "unknown event",
			message: textMessage(t, "evaluation_request", 1, nil),
			wantErr: "unknown event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{incoming: []fakeMessage{tt.message}}
			err := NewHandler(conn).Handle()
			require.ErrorContains(t, err, tt.wantErr)
			require.Empty(t, conn.written)
		})
	}
}
