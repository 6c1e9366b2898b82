package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func startServer(t *testing.T, cfg Config) (*Server, *quartz.Mock, string) {
	t.Helper()
	clock := quartz.NewMock(t)
	srv := NewServer("", cfg, testLogger(), clock)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
	})
	return srv, clock, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	welcome := readMessage(t, conn)
	require.Equal(t, MessageTypeWelcome, welcome.Type)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, typ MessageType, requestID, data string) {
	t.Helper()
	msg := Message{Type: typ, RequestID: requestID}
	if data != "" {
		msg.Data = json.RawMessage(data)
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func decode[T any](t *testing.T, msg Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}

func TestWelcome(t *testing.T) {
	t.Parallel()

	_, _, url := startServer(t, Config{})
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeWelcome, msg.Type)
	data := decode[WelcomeData](t, msg)
	assert.Len(t, data.Session, 26)
	assert.Len(t, data.Actions, game.NumActions)
	assert.Equal(t, "shoot-opponent", data.Actions[game.ShootOpponent])
	assert.Equal(t, game.ObservationSize, data.ObservationSize)
}

func TestResetAndStep(t *testing.T) {
	t.Parallel()

	_, _, url := startServer(t, Config{})
	conn := dial(t, url)

	local := env.New()
	want := local.Reset(7)

	send(t, conn, MessageTypeReset, "r1", `{"seed":7}`)
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeObservation, msg.Type)
	assert.Equal(t, "r1", msg.RequestID)
	obs := decode[ObservationData](t, msg)
	assert.Equal(t, int64(7), obs.Seed)
	assert.NotEmpty(t, obs.GameID)
	assert.Equal(t, want.HP, obs.HP)
	assert.Equal(t, want.Live, obs.Live)
	assert.Equal(t, want.Blank, obs.Blank)
	assert.Len(t, obs.Vector, game.ObservationSize)
	assert.Len(t, obs.Mask, game.NumActions)
	assert.Contains(t, obs.Legal, "shoot-self")

	_, wantReward, _, wantRes, err := local.Step(game.ShootOpponent)
	require.NoError(t, err)

	send(t, conn, MessageTypeStep, "r2", `{"action":"shoot-opponent"}`)
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeStepResult, msg.Type)
	step := decode[StepResultData](t, msg)
	assert.Equal(t, wantReward, step.Reward)
	assert.Equal(t, wantRes.Outcome.String(), step.Result.Outcome)
	assert.Equal(t, "ai", step.Result.Seat)

	// play to the end by index
	for i := 0; !step.Done; i++ {
		require.Less(t, i, 500, "game did not finish")
		send(t, conn, MessageTypeStep, "", `{"index":7}`)
		msg = readMessage(t, conn)
		require.Equal(t, MessageTypeStepResult, msg.Type)
		step = decode[StepResultData](t, msg)
	}
	require.NotNil(t, step.Episode)
	assert.True(t, step.Observation.Done)

	send(t, conn, MessageTypeStep, "r3", `{"action":"shoot-self"}`)
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, "game_over", decode[ErrorData](t, msg).Code)

	send(t, conn, MessageTypeEpisode, "r4", "")
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeEpisodeData, msg.Type)
	ep := decode[map[string]any](t, msg)
	assert.Equal(t, true, ep["done"])

	send(t, conn, MessageTypeEpisode, "r5", fmt.Sprintf(`{"gameId":%q}`, obs.GameID))
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeEpisodeData, msg.Type)
	assert.Equal(t, "r5", msg.RequestID)
}

func TestIllegalAction(t *testing.T) {
	t.Parallel()

	_, _, url := startServer(t, Config{})
	conn := dial(t, url)

	send(t, conn, MessageTypeReset, "", `{"seed":3}`)
	obs := decode[ObservationData](t, readMessage(t, conn))
	require.Empty(t, obs.Items, "first round starts with empty bags")

	send(t, conn, MessageTypeStep, "", `{"action":"use-beer"}`)
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeStepResult, msg.Type)
	step := decode[StepResultData](t, msg)
	assert.Equal(t, "illegal", step.Result.Outcome)
	assert.Equal(t, env.DefaultRewards().Illegal, step.Reward)
	assert.False(t, step.Result.TurnOver)
	assert.Equal(t, obs.HP, step.Observation.HP)
	assert.Equal(t, obs.Live, step.Observation.Live)
}

func TestProtocolErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		typ   MessageType
		data  string
		reset bool
		code  string
	}{
		{"step before reset", MessageTypeStep, `{"action":"shoot-self"}`, false, "not_reset"},
		{"observe before reset", MessageTypeObserve, "", false, "not_reset"},
		{"unknown type", MessageType("deal"), "", false, "unknown_message"},
		{"bad step data", MessageTypeStep, `"shoot"`, true, "invalid_message"},
		{"bad reset data", MessageTypeReset, `[1]`, false, "invalid_message"},
		{"unknown action", MessageTypeStep, `{"action":"dance"}`, true, "invalid_action"},
		{"index out of range", MessageTypeStep, `{"index":9}`, true, "invalid_action"},
		{"malformed game id", MessageTypeEpisode, `{"gameId":"game-1"}`, true, "invalid_message"},
		{"stale game id", MessageTypeEpisode, `{"gameId":"01h5n0et5q6mt3v7ms1234abcd"}`, true, "unknown_game"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, url := startServer(t, Config{})
			conn := dial(t, url)
			if tt.reset {
				send(t, conn, MessageTypeReset, "", "")
				require.Equal(t, MessageTypeObservation, readMessage(t, conn).Type)
			}

			send(t, conn, tt.typ, "req", tt.data)
			msg := readMessage(t, conn)
			require.Equal(t, MessageTypeError, msg.Type)
			assert.Equal(t, "req", msg.RequestID)
			assert.Equal(t, tt.code, decode[ErrorData](t, msg).Code)
		})
	}
}

func TestUnseededResetsFollowSequence(t *testing.T) {
	t.Parallel()

	_, _, url := startServer(t, Config{Seed: 11})
	conn := dial(t, url)

	seeds := map[int64]bool{}
	for range 3 {
		send(t, conn, MessageTypeReset, "", "")
		obs := decode[ObservationData](t, readMessage(t, conn))
		seeds[obs.Seed] = true
	}
	assert.Len(t, seeds, 3)
}

func TestMaxSessions(t *testing.T) {
	t.Parallel()

	srv, _, url := startServer(t, Config{MaxSessions: 1})
	dial(t, url)
	require.Eventually(t, func() bool { return srv.SessionCount() == 1 }, time.Second, 10*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestIdleTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv, clock, url := startServer(t, Config{IdleTimeout: 30 * time.Second})
	conn := dial(t, url)
	require.Equal(t, 1, srv.SessionCount())

	clock.Advance(30 * time.Second).MustWait(ctx)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Eventually(t, func() bool { return srv.SessionCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := NewServer("", Config{}, testLogger(), quartz.NewMock(t))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestStats(t *testing.T) {
	t.Parallel()

	srv, _, url := startServer(t, Config{})
	conn := dial(t, url)
	send(t, conn, MessageTypeReset, "", `{"seed":1}`)
	readMessage(t, conn)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Sessions)
	assert.Equal(t, int64(1), stats.GamesStarted)
	assert.Zero(t, stats.GamesFinished)
}

func TestNewServerDefaults(t *testing.T) {
	t.Parallel()

	srv := NewServer("", Config{}, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	assert.Equal(t, 5*time.Minute, srv.cfg.IdleTimeout)
	assert.Equal(t, 64, srv.cfg.MaxSessions)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
