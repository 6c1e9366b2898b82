package server

import (
	"encoding/json"
	"time"

	"github.com/lox/buckshot/internal/env"
	"github.com/lox/buckshot/internal/game"
)

// MessageType names a websocket message.
type MessageType string

// Client → Server
const (
	MessageTypeReset   MessageType = "reset"
	MessageTypeStep    MessageType = "step"
	MessageTypeObserve MessageType = "observe"
	MessageTypeEpisode MessageType = "episode"
)

// Server → Client
const (
	MessageTypeWelcome     MessageType = "welcome"
	MessageTypeObservation MessageType = "observation"
	MessageTypeStepResult  MessageType = "step_result"
	MessageTypeEpisodeData MessageType = "episode_data"
	MessageTypeError       MessageType = "error"
)

// Message is the envelope for every websocket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage wraps data in an envelope stamped with now.
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: now,
	}, nil
}

// ResetData starts a new game. A missing seed takes the next one from the
// server's sequence.
type ResetData struct {
	Seed *int64 `json:"seed,omitempty"`
}

// EpisodeRequestData optionally names the game the client expects the
// episode of, so a stale request is not answered with a newer game.
type EpisodeRequestData struct {
	GameID string `json:"gameId,omitempty"`
}

// StepData carries one AI action, either by name or by index into the
// action set.
type StepData struct {
	Action string `json:"action,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

type WelcomeData struct {
	Session         string   `json:"session"`
	Actions         []string `json:"actions"`
	ObservationSize int      `json:"observationSize"`
}

type ObservationData struct {
	GameID         string         `json:"gameId,omitempty"`
	Seed           int64          `json:"seed"`
	HP             int            `json:"hp"`
	OpponentHP     int            `json:"opponentHp"`
	MaxHP          int            `json:"maxHp"`
	Items          map[string]int `json:"items"`
	OpponentItems  map[string]int `json:"opponentItems"`
	Chamber        string         `json:"chamber"`
	Sawed          bool           `json:"sawed"`
	OpponentSawed  bool           `json:"opponentSawed"`
	InvertOdds     bool           `json:"invertOdds"`
	Live           int            `json:"live"`
	Blank          int            `json:"blank"`
	Fired          int            `json:"fired"`
	Round          int            `json:"round"`
	OpponentCuffed bool           `json:"opponentCuffed"`
	Done           bool           `json:"done"`
	Legal          []string       `json:"legal"`
	Mask           []bool         `json:"mask"`
	Vector         []float32      `json:"vector"`
}

type ResultData struct {
	Seat     string `json:"seat"`
	Action   string `json:"action,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
	Shell    string `json:"shell,omitempty"`
	Damage   int    `json:"damage,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
	TurnOver bool   `json:"turnOver,omitempty"`
	Reloaded bool   `json:"reloaded,omitempty"`
	Done     bool   `json:"done,omitempty"`
}

type StepResultData struct {
	Observation ObservationData `json:"observation"`
	Reward      float64         `json:"reward"`
	Done        bool            `json:"done"`
	Result      ResultData      `json:"result"`
	// Episode is attached once the game is over.
	Episode *env.Episode `json:"episode,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func inventoryData(inv game.Inventory) map[string]int {
	m := make(map[string]int, game.NumItems)
	for _, it := range game.AllItems() {
		if n := inv.Count(it); n > 0 {
			m[it.String()] = n
		}
	}
	return m
}

func observationData(obs game.Observation, ep env.Episode) ObservationData {
	legal := obs.LegalActions()
	names := make([]string, len(legal))
	for i, a := range legal {
		names[i] = a.String()
	}
	mask := obs.Mask()
	return ObservationData{
		GameID:         ep.GameID,
		Seed:           ep.Seed,
		HP:             obs.HP,
		OpponentHP:     obs.OpponentHP,
		MaxHP:          obs.MaxHP,
		Items:          inventoryData(obs.Items),
		OpponentItems:  inventoryData(obs.OpponentItems),
		Chamber:        obs.Chamber.String(),
		Sawed:          obs.Sawed,
		OpponentSawed:  obs.OpponentSawed,
		InvertOdds:     obs.InvertOdds,
		Live:           obs.Live,
		Blank:          obs.Blank,
		Fired:          obs.Fired,
		Round:          obs.Round,
		OpponentCuffed: obs.OpponentCuffed,
		Done:           obs.Done,
		Legal:          names,
		Mask:           mask[:],
		Vector:         obs.Vector(),
	}
}

func resultData(res game.Result) ResultData {
	d := ResultData{
		Seat:     res.Seat.String(),
		Skipped:  res.Skipped,
		TurnOver: res.TurnOver,
		Reloaded: res.Reloaded,
		Done:     res.Done,
		Damage:   res.Damage,
	}
	if !res.Skipped {
		d.Action = res.Action.String()
		d.Outcome = res.Outcome.String()
	}
	if _, known := res.Shell.Shell(); known {
		d.Shell = res.Shell.String()
	}
	return d
}

func actionNames() []string {
	names := make([]string, game.NumActions)
	for i := range names {
		names[i] = game.Action(i).String()
	}
	return names
}
