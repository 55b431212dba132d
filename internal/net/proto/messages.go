package proto

import (
	"encoding/json"
	"fmt"

	"gridchase/internal/level"
	"gridchase/internal/sim"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for outbound websocket payloads.
	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
	typeSeat          = "seat"
	typeState         = "state"
)

// Client message type identifiers.
const (
	TypeSteer     = "steer"
	TypeReset     = "reset"
	TypeHeartbeat = "heartbeat"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeState = typeState
	TypeSeat  = typeSeat
)

// ClientMessage captures an inbound websocket message from a client.
type ClientMessage struct {
	Ver        int     `json:"ver,omitempty"`
	Type       string  `json:"type"`
	Direction  string  `json:"direction,omitempty"`
	SentAt     int64   `json:"sentAt,omitempty"`
	CommandSeq *uint64 `json:"seq,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// ClientCommand converts a websocket message into the simulation command it
// carries. Origin metadata is stamped by the hub when the command is staged.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypeSteer:
		if msg.Direction == "" {
			return sim.Command{}, false
		}
		return sim.Command{
			Type:  sim.CommandSteer,
			Steer: &sim.SteerCommand{Direction: msg.Direction},
		}, true
	case TypeReset:
		return sim.Command{Type: sim.CommandReset}, true
	default:
		return sim.Command{}, false
	}
}

// CommandAck describes an acknowledgement of a staged command.
type CommandAck struct {
	Seq  uint64
	Tick uint64
}

// EncodeCommandAck renders a command acknowledgement response.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
		Tick uint64 `json:"tick,omitempty"`
	}{
		Ver:  Version,
		Type: typeCommandAck,
		Seq:  msg.Seq,
	}
	if msg.Tick > 0 {
		frame.Tick = msg.Tick
	}
	return json.Marshal(frame)
}

// CommandReject notifies the client that a command was refused.
type CommandReject struct {
	Seq    uint64
	Reason string
	Retry  bool
}

// EncodeCommandReject renders a command rejection response.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry,omitempty"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		Seq:    msg.Seq,
		Reason: msg.Reason,
	}
	if msg.Retry {
		frame.Retry = true
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement payload.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}

// SeatGrant tells a client it now holds the control seat.
type SeatGrant struct {
	ClientID string
}

// EncodeSeatGrant renders a seat handover notification.
func EncodeSeatGrant(msg SeatGrant) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		ID   string `json:"id"`
	}{
		Ver:  Version,
		Type: typeSeat,
		ID:   msg.ClientID,
	}
	return json.Marshal(frame)
}

// StateFrameV1 captures the version 1 websocket state payload layout. The
// embedded snapshot fields flatten into the frame.
type StateFrameV1 struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	sim.Snapshot
	ServerTime int64    `json:"serverTime"`
	Lives      int64    `json:"lives"`
	Score      uint64   `json:"score"`
	Round      uint64   `json:"round"`
	Events     []string `json:"events,omitempty"`
}

// EncodeStateFrameV1 renders a versioned state frame.
func EncodeStateFrameV1(msg StateFrameV1) ([]byte, error) {
	if msg.Type == "" {
		msg.Type = typeState
	}
	msg.Ver = Version
	return json.Marshal(msg)
}

// CellV1 is a discrete maze coordinate on the wire.
type CellV1 struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// PassageV1 describes one teleport sensor and its destination.
type PassageV1 struct {
	Name string `json:"name"`
	Cell CellV1 `json:"cell"`
	Dest CellV1 `json:"dest"`
}

// LevelInfoV1 carries the immutable level geometry a renderer needs.
type LevelInfoV1 struct {
	Name     string      `json:"name"`
	Cols     int         `json:"cols"`
	Rows     int         `json:"rows"`
	CellSize float64     `json:"cellSize"`
	Walls    []CellV1    `json:"walls"`
	Passages []PassageV1 `json:"passages,omitempty"`
}

// NewLevelInfo projects a compiled level onto its wire form.
func NewLevelInfo(lvl *level.Level) LevelInfoV1 {
	if lvl == nil {
		return LevelInfoV1{}
	}
	info := LevelInfoV1{
		Name:     lvl.Name,
		Cols:     lvl.Tiles.Cols(),
		Rows:     lvl.Tiles.Rows(),
		CellSize: lvl.CellSize,
	}
	for _, cell := range lvl.Tiles.WallCells() {
		info.Walls = append(info.Walls, CellV1{Col: cell.Col, Row: cell.Row})
	}
	for _, link := range lvl.Passages {
		info.Passages = append(info.Passages, PassageV1{
			Name: link.Name,
			Cell: CellV1{Col: link.Cell.Col, Row: link.Cell.Row},
			Dest: CellV1{Col: link.Dest.Col, Row: link.Dest.Row},
		})
	}
	return info
}

// JoinResponseV1 captures the version 1 join response layout.
type JoinResponseV1 struct {
	Ver   int          `json:"ver"`
	ID    string       `json:"id"`
	Seat  bool         `json:"seat"`
	Level LevelInfoV1  `json:"level"`
	State StateFrameV1 `json:"state"`
}

// EncodeJoinResponseV1 renders a versioned join response payload.
func EncodeJoinResponseV1(msg JoinResponseV1) ([]byte, error) {
	msg.Ver = Version
	if msg.State.Type == "" {
		msg.State.Type = typeState
	}
	msg.State.Ver = Version
	return json.Marshal(msg)
}
