package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single websocket write may block before the
// connection is treated as dead.
const writeWait = 10 * time.Second

// Session wraps a live websocket connection with serialized writes and the
// highest command sequence acknowledged so far.
type Session struct {
	conn           *websocket.Conn
	mu             sync.Mutex
	lastCommandSeq atomic.Uint64
}

func NewSession(conn *websocket.Conn) *Session {
	return &Session{conn: conn}
}

// WriteMessage sends a single frame. Writes are serialized because the hub
// broadcasts from the tick loop while the read loop answers acks.
func (s *Session) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

func (s *Session) LastCommandSeq() uint64 {
	return s.lastCommandSeq.Load()
}

func (s *Session) StoreLastCommandSeq(seq uint64) {
	s.lastCommandSeq.Store(seq)
}

func (s *Session) Close() error {
	return s.conn.Close()
}
