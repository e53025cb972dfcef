// Package inspect serves the live camera pose over HTTP and a websocket so
// preset look-at targets can be picked while touring a model.
package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"scene-tour/controls"
	"scene-tour/core"
)

// Pose is one frame's camera and controller state.
type Pose struct {
	Frame    uint64                 `json:"frame"`
	Position [3]float32             `json:"position"`
	Target   [3]float32             `json:"target"`
	Index    int                    `json:"index"`
	Presets  [3][3]float32          `json:"presets"`
	Armed    bool                   `json:"armed"`
	Flags    controls.MovementFlags `json:"flags"`
	Model    string                 `json:"model,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

const writeTimeout = 2 * time.Second

// Server fans the latest published Pose out to websocket clients. Publish
// never blocks the caller; clients that fall behind only see the newest pose.
type Server struct {
	log      core.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	latest []byte

	clientsMu sync.Mutex
	clients   map[*client]struct{}
	closed    bool // set once Run returns; no new clients after that

	wake chan struct{}
}

func NewServer(log core.Logger) *Server {
	if log == nil {
		log = core.Discard
	}
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		wake:    make(chan struct{}, 1),
	}
}

// Publish records p as the latest pose and schedules a broadcast.
func (s *Server) Publish(p Pose) {
	data, err := json.Marshal(p)
	if err != nil {
		s.log.Errorf("inspect: marshal pose: %v", err)
		return
	}
	s.mu.Lock()
	s.latest = data
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Server) snapshot() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Run broadcasts published poses until ctx is done.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.closeClients()
			return
		case <-s.wake:
			if data := s.snapshot(); data != nil {
				s.broadcast(data)
			}
		}
	}
}

func (s *Server) broadcast(data []byte) {
	s.clientsMu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.Unlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			s.log.Warnf("inspect: websocket write: %v", err)
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *client) {
	s.clientsMu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.clientsMu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.closed = true
	for c := range s.clients {
		c.conn.Close()
		delete(s.clients, c)
	}
}

// Handler serves GET /pose (latest pose as JSON, 204 before the first
// frame) and GET /ws (pose stream).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/pose", s.handlePose)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handlePose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data := s.snapshot()
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) isClosed() bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return s.closed
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.isClosed() {
		http.Error(w, "inspector stopped", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("inspect: websocket upgrade: %v", err)
		return
	}
	c := &client{conn: conn}

	// Run may have stopped while the upgrade was in flight.
	s.clientsMu.Lock()
	if s.closed {
		s.clientsMu.Unlock()
		conn.Close()
		return
	}
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
	s.log.Debugf("inspect: client %s connected", r.RemoteAddr)

	if data := s.snapshot(); data != nil {
		if err := c.write(data); err != nil {
			s.drop(c)
			return
		}
	}

	// Reads only detect the client going away.
	defer func() {
		s.drop(c)
		s.log.Debugf("inspect: client %s disconnected", r.RemoteAddr)
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ListenAndServe serves Handler on addr and runs the broadcaster until ctx
// is done. The listener is bound before it returns, so a bad address fails
// immediately.
func (s *Server) ListenAndServe(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	go s.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("inspect: serve: %v", err)
		}
	}()
	return ln.Addr(), nil
}
