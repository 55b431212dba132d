package proto

import (
	"encoding/json"
	"strings"
	"testing"

	"gridchase/internal/level"
	"gridchase/internal/sim"
)

const fixtureYAML = `
name: proto-fixture
cellSize: 16
rows:
  - "#####"
  - "#. .#"
  - "#####"
passages:
  - { name: west, cell: {col: 1, row: 1}, pair: east }
  - { name: east, cell: {col: 3, row: 1}, pair: west }
player:
  spawn: {col: 2, row: 1}
  direction: left
  speed: 16
`

func TestClientCommand(t *testing.T) {
	t.Run("steer command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{Type: TypeSteer, Direction: "left"})
		if !ok {
			t.Fatalf("expected steer command to be recognized")
		}
		if cmd.Type != sim.CommandSteer {
			t.Fatalf("expected steer command type, got %q", cmd.Type)
		}
		if cmd.Steer == nil || cmd.Steer.Direction != "left" {
			t.Fatalf("unexpected steer payload: %+v", cmd.Steer)
		}
	})

	t.Run("steer command requires direction", func(t *testing.T) {
		if _, ok := ClientCommand(ClientMessage{Type: TypeSteer}); ok {
			t.Fatalf("expected empty steer to be rejected")
		}
	})

	t.Run("reset command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{Type: TypeReset})
		if !ok {
			t.Fatalf("expected reset command to be recognized")
		}
		if cmd.Type != sim.CommandReset {
			t.Fatalf("expected reset type, got %q", cmd.Type)
		}
		if cmd.Steer != nil {
			t.Fatalf("expected no payloads, got %+v", cmd)
		}
	})

	t.Run("non command payload", func(t *testing.T) {
		if _, ok := ClientCommand(ClientMessage{Type: TypeHeartbeat}); ok {
			t.Fatalf("expected heartbeat to be ignored")
		}
	})
}

func TestDecodeClientMessage(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"steer","direction":"up","seq":3}`))
	if err != nil {
		t.Fatalf("decode client message: %v", err)
	}
	if msg.Ver != Version {
		t.Fatalf("expected version to default to %d, got %d", Version, msg.Ver)
	}
	if msg.Type != TypeSteer || msg.Direction != "up" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.CommandSeq == nil || *msg.CommandSeq != 3 {
		t.Fatalf("expected seq 3, got %v", msg.CommandSeq)
	}

	if _, err := DecodeClientMessage([]byte(`{"ver":99,"type":"steer"}`)); err == nil {
		t.Fatalf("expected version mismatch to be rejected")
	}
	if _, err := DecodeClientMessage([]byte(`{not json`)); err == nil {
		t.Fatalf("expected malformed payload to be rejected")
	}
}

func TestEncodeStateFrameV1SetsVersionAndType(t *testing.T) {
	frame := StateFrameV1{
		Snapshot: sim.Snapshot{
			Tick:             42,
			Wave:             "patrol",
			Player:           sim.PlayerSnapshot{ID: "player", X: 24, Y: 24, Facing: "left", Alive: true},
			Chasers:          []sim.ChaserSnapshot{{ID: "amber", X: 40, Y: 24, Facing: "right", Mode: "pursuit"}},
			PelletsRemaining: 7,
		},
		ServerTime: 1234,
		Lives:      2,
		Score:      310,
		Round:      1,
		Events:     []string{"player_caught"},
	}

	encoded, err := EncodeStateFrameV1(frame)
	if err != nil {
		t.Fatalf("encode state frame v1: %v", err)
	}
	if frame.Ver != 0 {
		t.Fatalf("expected encode to operate on a copy, got version %d", frame.Ver)
	}

	var decoded struct {
		Ver    int      `json:"ver"`
		Type   string   `json:"type"`
		Tick   uint64   `json:"tick"`
		Wave   string   `json:"wave"`
		Lives  int64    `json:"lives"`
		Score  uint64   `json:"score"`
		Events []string `json:"events"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal encoded frame: %v", err)
	}
	if decoded.Ver != Version {
		t.Fatalf("expected version %d, got %d", Version, decoded.Ver)
	}
	if decoded.Type != TypeState {
		t.Fatalf("expected type %q, got %q", TypeState, decoded.Type)
	}
	if decoded.Tick != 42 || decoded.Wave != "patrol" {
		t.Fatalf("expected snapshot fields to flatten, got tick=%d wave=%q", decoded.Tick, decoded.Wave)
	}
	if decoded.Lives != 2 || decoded.Score != 310 {
		t.Fatalf("unexpected shell fields: lives=%d score=%d", decoded.Lives, decoded.Score)
	}
	if len(decoded.Events) != 1 || decoded.Events[0] != "player_caught" {
		t.Fatalf("unexpected events: %v", decoded.Events)
	}
}

func TestEncodeJoinResponseV1SetsVersions(t *testing.T) {
	resp := JoinResponseV1{
		ID:   "client-1",
		Seat: true,
		State: StateFrameV1{
			Snapshot: sim.Snapshot{Tick: 9},
		},
	}

	encoded, err := EncodeJoinResponseV1(resp)
	if err != nil {
		t.Fatalf("encode join response v1: %v", err)
	}

	var decoded struct {
		Ver   int    `json:"ver"`
		ID    string `json:"id"`
		Seat  bool   `json:"seat"`
		State struct {
			Ver  int    `json:"ver"`
			Type string `json:"type"`
			Tick uint64 `json:"tick"`
		} `json:"state"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal join response: %v", err)
	}
	if decoded.Ver != Version {
		t.Fatalf("expected version %d, got %d", Version, decoded.Ver)
	}
	if !decoded.Seat || decoded.ID != "client-1" {
		t.Fatalf("unexpected join fields: %+v", decoded)
	}
	if decoded.State.Ver != Version || decoded.State.Type != TypeState {
		t.Fatalf("expected embedded state frame to be versioned, got %+v", decoded.State)
	}
	if decoded.State.Tick != 9 {
		t.Fatalf("expected state tick 9, got %d", decoded.State.Tick)
	}
}

func TestNewLevelInfoProjectsGeometry(t *testing.T) {
	lvl, err := level.LoadFromReader(strings.NewReader(fixtureYAML))
	if err != nil {
		t.Fatalf("load fixture level: %v", err)
	}

	info := NewLevelInfo(lvl)
	if info.Name != "proto-fixture" {
		t.Fatalf("expected level name to carry over, got %q", info.Name)
	}
	if info.Cols != 5 || info.Rows != 3 {
		t.Fatalf("expected 5x3 grid, got %dx%d", info.Cols, info.Rows)
	}
	if info.CellSize != 16 {
		t.Fatalf("expected cell size 16, got %v", info.CellSize)
	}
	if len(info.Walls) != 12 {
		t.Fatalf("expected 12 wall cells, got %d", len(info.Walls))
	}
	if len(info.Passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(info.Passages))
	}
	if info.Passages[0].Name != "west" || info.Passages[0].Dest != (CellV1{Col: 3, Row: 1}) {
		t.Fatalf("unexpected passage projection: %+v", info.Passages[0])
	}
}
