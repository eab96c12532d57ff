package ws_test

import (
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/tests"
	"github.com/lk16/reversi/internal/ws"
	"github.com/stretchr/testify/require"
)

// startServer serves the app on a random local port and returns the websocket URL.
func startServer(t *testing.T) string {
	t.Helper()

	app := tests.NewTestApp(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = app.Listener(ln)
	}()

	return "ws://" + ln.Addr().String() + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}

	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		var err error
		conn, _, err = dialer.Dial(url, nil) //nolint:bodyclose
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

type reply struct {
	ID    int             `json:"id"`
	Data  models.Analysis `json:"data"`
	Error string          `json:"error"`
}

func request(t *testing.T, conn *websocket.Conn, event string, id int, data any) reply {
	t.Helper()

	rawData, err := json.Marshal(data)
	require.NoError(t, err)

	require.NoError(t, conn.SetWriteDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.WriteJSON(ws.Incoming{Event: event, ID: id, Data: rawData}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var resp reply
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebsocket_PlayOpening(t *testing.T) {
	conn := dial(t, startServer(t))

	position := models.PositionPayload{Rows: 8, Cols: 8, Turn: "B"}

	analyzed := request(t, conn, ws.EventAnalyzeRequest, 1, position)
	require.Equal(t, 1, analyzed.ID)
	require.Empty(t, analyzed.Error)
	require.Len(t, analyzed.Data.Moves, 4)

	// Play the first listed move, the API reports moves 0-based.
	first := analyzed.Data.Moves[0]
	moved := request(t, conn, ws.EventMoveRequest, 2, models.MovePayload{
		Position: analyzed.Data.Position,
		Row:      first.Row + 1,
		Col:      first.Col + 1,
	})
	require.Equal(t, 2, moved.ID)
	require.Empty(t, moved.Error)
	require.Equal(t, "White", moved.Data.Turn)
	require.Equal(t, 4, moved.Data.BlackCount)
	require.Equal(t, 1, moved.Data.WhiteCount)

	rejected := request(t, conn, ws.EventMoveRequest, 3, models.MovePayload{Position: position, Row: 1, Col: 1})
	require.Equal(t, 3, rejected.ID)
	require.NotEmpty(t, rejected.Error)
}

func TestWebsocket_UnknownEventClosesConnection(t *testing.T) {
	conn := dial(t, startServer(t))

	require.NoError(t, conn.WriteJSON(ws.Incoming{Event: "nope", ID: 1}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestWebsocket_PlainHTTP(t *testing.T) {
	app := tests.NewTestApp(t)

	req, err := http.NewRequest(http.MethodGet, "/ws", nil)
	require.NoError(t, err)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
