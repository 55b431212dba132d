package ws

import (
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"gridchase/internal/net/proto"
	"gridchase/internal/sim"
)

// Hub is the session registry the websocket handler drives. Subscribe
// returns the session wrapper plus the latest encoded state frame so a
// client sees the maze before the next broadcast.
type Hub interface {
	Subscribe(clientID string, conn *websocket.Conn) (*Session, []byte, bool)
	Disconnect(clientID string, reason string)
	Stage(clientID string, msg proto.ClientMessage) (sim.Command, bool, string)
	Heartbeat(clientID string, receivedAt time.Time, sentAt int64) (time.Duration, bool)
}

type HandlerConfig struct {
	Logger *log.Logger
}

type Handler struct {
	hub      Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	clientID := r.URL.Query().Get("id")
	if clientID == "" {
		nethttp.Error(w, "missing id", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", clientID, err)
		return
	}

	h.Serve(clientID, conn)
}

// Serve runs the read loop for one client connection until it drops.
func (h *Handler) Serve(clientID string, conn *websocket.Conn) {
	if h == nil || h.hub == nil || conn == nil {
		return
	}

	session, frame, ok := h.hub.Subscribe(clientID, conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown client")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	if len(frame) > 0 {
		if err := session.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.hub.Disconnect(clientID, "write_failed")
			return
		}
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(clientID, "read_failed")
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", clientID, err)
			continue
		}

		normalizedSeq := uint64(0)
		if msg.CommandSeq != nil && *msg.CommandSeq > 0 {
			normalizedSeq = *msg.CommandSeq
		}

		write := func(data []byte, err error) bool {
			if err != nil {
				h.logger.Printf("failed to marshal response for %s: %v", clientID, err)
				return true
			}
			if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
				h.hub.Disconnect(clientID, "write_failed")
				return false
			}
			return true
		}

		sendDuplicateAck := func() bool {
			if normalizedSeq == 0 {
				return true
			}
			return write(proto.EncodeCommandAck(proto.CommandAck{Seq: normalizedSeq}))
		}

		sendCommandAck := func(cmd sim.Command) bool {
			if normalizedSeq == 0 {
				return true
			}
			ack := proto.CommandAck{Seq: normalizedSeq, Tick: cmd.OriginTick}
			if !write(proto.EncodeCommandAck(ack)) {
				return false
			}
			session.StoreLastCommandSeq(normalizedSeq)
			return true
		}

		sendCommandReject := func(reason string) bool {
			if normalizedSeq == 0 {
				return true
			}
			reject := proto.CommandReject{
				Seq:    normalizedSeq,
				Reason: reason,
				Retry:  reason == sim.CommandRejectQueueLimit,
			}
			return write(proto.EncodeCommandReject(reject))
		}

		switch msg.Type {
		case proto.TypeSteer, proto.TypeReset:
			if normalizedSeq > 0 {
				if last := session.LastCommandSeq(); last > 0 && normalizedSeq <= last {
					if !sendDuplicateAck() {
						return
					}
					continue
				}
			}
			cmd, ok, reason := h.hub.Stage(clientID, msg)
			if normalizedSeq > 0 {
				if ok {
					if !sendCommandAck(cmd) {
						return
					}
				} else if !sendCommandReject(reason) {
					return
				}
			}
			if !ok && normalizedSeq == 0 {
				h.logger.Printf("%s rejected for %s: %s", msg.Type, clientID, reason)
			}
		case proto.TypeHeartbeat:
			now := time.Now()
			rtt, ok := h.hub.Heartbeat(clientID, now, msg.SentAt)
			if !ok {
				continue
			}

			hb := proto.Heartbeat{
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			if !write(proto.EncodeHeartbeat(hb)) {
				return
			}
		default:
			h.logger.Printf("unknown message type %q from %s", msg.Type, clientID)
		}
	}
}
