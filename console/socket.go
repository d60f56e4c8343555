package console

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/cscript/internal"
)

// Socket is a Console over a websocket connection. Each text message is a
// line of input, and each printed value is sent as a text message.
type Socket struct {
	conn *websocket.Conn
	c    chunker
	next string
	err  error

	// mu serializes writes, which websocket connections require.
	mu sync.Mutex
}

// NewSocket creates a Socket console on an established connection.
func NewSocket(conn *websocket.Conn) *Socket {
	return &Socket{conn: conn}
}

// HasNext reads messages until a chunk is complete or the connection closes.
func (s *Socket) HasNext() bool {
	if s.next != "" {
		return true
	}
	for s.err == nil {
		typ, msg, err := s.conn.ReadMessage()
		if err != nil {
			s.err = err
			if s.c.pending() {
				s.next = s.c.flush()
				return true
			}
			return false
		}
		if typ != websocket.TextMessage {
			continue
		}
		if src, ok := s.c.add(string(msg)); ok {
			s.next = src
			return true
		}
	}
	return false
}

// Next returns the chunk HasNext read.
func (s *Socket) Next() string {
	r := s.next
	s.next = ""
	return r
}

// Print sends the display form of v.
func (s *Socket) Print(v internal.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(internal.Display(v))); err != nil && s.err == nil {
		s.err = err
	}
}

// Close sends a close message and closes the connection. If sending the close
// message fails, that error is returned unless closing fails too.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	werr := s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err := s.conn.Close(); err != nil {
		return err
	}
	return werr
}

// Handler serves a Shell per websocket connection. setup runs on each new
// Shell before its loop starts, typically to evaluate bootstrap scripts.
func Handler(log logrus.FieldLogger, setup func(*internal.Shell) error) http.Handler {
	up := websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).WithField("remote", r.RemoteAddr).Warn("websocket upgrade failed")
			return
		}
		sh := internal.NewShell(NewSocket(conn), log.WithField("remote", r.RemoteAddr))
		if setup != nil {
			if err := setup(sh); err != nil {
				sh.Report(err)
				if err := sh.Console.Close(); err != nil {
					sh.Log.WithError(err).Debug("closing connection after setup failure")
				}
				return
			}
		}
		if err := sh.Run(); err != nil {
			sh.Log.WithError(err).Debug("connection closed")
		}
	})
}
