package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	// sendQueue is how many messages may wait for a slow host before
	// further ones are dropped.
	sendQueue = 64
)

var (
	ErrPeerBusy   = errors.New("peer send queue full")
	ErrPeerClosed = errors.New("peer closed")
)

// Peer is one connected host webview. Messages for it are queued and
// written by its own goroutine, so a stalled host never blocks a sender.
type Peer struct {
	ID   string
	conn *websocket.Conn
	out  chan Message
	done chan struct{}
	once sync.Once
}

func newPeer(id string, conn *websocket.Conn) *Peer {
	return &Peer{
		ID:   id,
		conn: conn,
		out:  make(chan Message, sendQueue),
		done: make(chan struct{}),
	}
}

// send queues msg without blocking.
func (p *Peer) send(msg Message) error {
	select {
	case <-p.done:
		return ErrPeerClosed
	default:
	}
	select {
	case p.out <- msg:
		return nil
	default:
		return ErrPeerBusy
	}
}

// writeLoop is the only writer of the connection.
func (p *Peer) writeLoop() {
	for {
		select {
		case <-p.done:
			return
		case msg := <-p.out:
			if err := p.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				p.close()
				return
			}
			if err := p.conn.WriteJSON(msg); err != nil {
				log.Printf("[BRIDGE] Error sending %s to %s: %v", msg.Type, p.ID, err)
				p.close()
				return
			}
		}
	}
}

// close stops the writer and closes the connection, which ends the read
// loop too.
func (p *Peer) close() {
	p.once.Do(func() {
		close(p.done)
		if p.conn != nil {
			p.conn.Close()
		}
	})
}

// Server carries bridge messages over websockets. Each connection gets its
// own read loop; replies go back on the same connection.
type Server struct {
	bridge   *Bridge
	upgrader websocket.Upgrader

	peers map[string]*Peer
	mu    sync.RWMutex
}

func NewServer(b *Bridge) *Server {
	return &Server{
		bridge: b,
		upgrader: websocket.Upgrader{
			// The host webview loads the viewer from a local origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		peers: make(map[string]*Peer),
	}
}

func (s *Server) add(p *Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[p.ID] = p
	log.Printf("[BRIDGE] Host connected: %s (%s)", p.ID, p.conn.RemoteAddr())
}

func (s *Server) remove(p *Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, p.ID)
	log.Printf("[BRIDGE] Host disconnected: %s", p.ID)
}

func (s *Server) closeAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.peers {
		p.close()
	}
}

// Peers returns the number of connected hosts.
func (s *Server) Peers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

// Broadcast sends msg to every connected host.
func (s *Server) Broadcast(msg Message) {
	s.mu.RLock()
	peers := make([]*Peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.RUnlock()

	for _, p := range peers {
		if err := p.send(msg); err != nil {
			log.Printf("[BRIDGE] Error sending %s to %s: %v", msg.Type, p.ID, err)
		}
	}
}

// Notify broadcasts a value-carrying event with no request id.
func (s *Server) Notify(typ string, value any) {
	msg := Message{Type: typ}
	if value != nil {
		data, err := json.Marshal(value)
		if err != nil {
			log.Printf("[BRIDGE] Cannot encode %s: %v", typ, err)
			return
		}
		msg.Value = data
	}
	s.Broadcast(msg)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[BRIDGE] Upgrade failed: %v", err)
		return
	}
	p := newPeer(uuid.NewString(), conn)
	s.add(p)
	defer s.remove(p)
	defer p.close()
	go p.writeLoop()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[BRIDGE] Read from %s: %v", p.ID, err)
			}
			return
		}
		log.Printf("[BRIDGE] Received '%s' from %s", msg.Type, p.ID)
		reply := s.bridge.Dispatch(r.Context(), msg)
		if err := p.send(reply); err != nil {
			log.Printf("[BRIDGE] Reply to %s: %v", p.ID, err)
			return
		}
	}
}

// ListenAndServe serves the bridge at /bridge on addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/bridge", s)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		// Shutdown does not touch hijacked connections.
		s.closeAll()
	}()

	log.Printf("[BRIDGE] Listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve bridge: %w", err)
	}
	return nil
}
