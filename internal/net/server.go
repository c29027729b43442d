package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"signpad/internal/config"
	"signpad/internal/logging"
	"signpad/internal/sample"
	"signpad/internal/session"
	"signpad/internal/surface"
)

// PadPath is the websocket endpoint remote pads connect to.
const PadPath = "/pad"

// MaxFrameSize caps one inbound frame. An input event is well under 1KB.
const MaxFrameSize = 4096

// Peer is one connected remote pad and the session it owns.
type Peer struct {
	Conn    *websocket.Conn
	Session *session.Session
}

// PeerManager tracks live remote pads.
type PeerManager struct {
	peers map[string]*Peer
	mu    sync.RWMutex
}

// NewPeerManager creates an empty manager.
func NewPeerManager() *PeerManager {
	return &PeerManager{peers: make(map[string]*Peer)}
}

// Add registers a peer under its session id.
func (pm *PeerManager) Add(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.peers[peer.Session.ID()] = peer
	logging.Logger().Info("[pad] connected", "session", peer.Session.ID(),
		"remote", peer.Conn.RemoteAddr().String())
}

// Remove forgets a peer.
func (pm *PeerManager) Remove(id string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, ok := pm.peers[id]; ok {
		delete(pm.peers, id)
		logging.Logger().Info("[pad] disconnected", "session", id)
	}
}

// Count returns the number of live peers.
func (pm *PeerManager) Count() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// CloseAll sends a going-away close frame to every peer.
func (pm *PeerManager) CloseAll() {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, p := range pm.peers {
		_ = p.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
}

// Server accepts remote pads over websocket. Each connection owns its own
// capture session, driven only from that connection's goroutine.
type Server struct {
	cfg      config.Config
	upgrader websocket.Upgrader
	peers    *PeerManager

	// OnSaved receives every saved signature. It runs on the connection's
	// goroutine.
	OnSaved func(sessionID string, png []byte)
}

// NewServer creates a pad server using cfg for every session.
func NewServer(cfg config.Config) *Server {
	return &Server{
		cfg:   cfg,
		peers: NewPeerManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Pads are served from phones on the LAN, not from our origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Peers returns the live peer registry.
func (s *Server) Peers() *PeerManager { return s.peers }

// Handler returns an http.Handler serving PadPath.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(PadPath, s)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		s.peers.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logging.Logger().Info("[pad] listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeHTTP upgrades the request and runs the pad loop. Optional query
// parameters w and h give the remote surface size in the device's units.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bounds, err := boundsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, err := session.New(s.cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if bounds.W > 0 && bounds.H > 0 {
		sess.SetBounds(bounds)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Warn("[pad] upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(MaxFrameSize)

	s.peers.Add(&Peer{Conn: conn, Session: sess})
	defer s.peers.Remove(sess.ID())

	hello := stateReply(sess)
	hello.Type = ReplyHello
	hello.Width, hello.Height = sess.Surface().Width(), sess.Surface().Height()
	if err := conn.WriteJSON(hello); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				logging.Logger().Warn("[pad] frame too large, dropping peer", "session", sess.ID())
			} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Logger().Warn("[pad] read failed", "session", sess.ID(), "err", err)
			}
			return
		}
		if err := conn.WriteJSON(s.handle(sess, data)); err != nil {
			logging.Logger().Warn("[pad] write failed", "session", sess.ID(), "err", err)
			return
		}
	}
}

func (s *Server) handle(sess *session.Session, data []byte) Reply {
	var ev sample.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Reply{Type: ReplyError, Session: sess.ID(), Error: err.Error()}
	}

	png, err := sess.Apply(ev)
	if err != nil {
		return Reply{Type: ReplyError, Session: sess.ID(), Error: err.Error()}
	}
	if ev.Kind != sample.KindSave {
		return stateReply(sess)
	}
	if png == nil {
		return Reply{Type: ReplyDisabled, Session: sess.ID(), State: sess.State().String()}
	}
	if s.OnSaved != nil {
		s.OnSaved(sess.ID(), png)
	}
	reply := stateReply(sess)
	reply.Type = ReplySaved
	reply.Data = surface.EncodeDataURI("image/png", png)
	return reply
}

func stateReply(sess *session.Session) Reply {
	return Reply{
		Type:       ReplyState,
		Session:    sess.ID(),
		State:      sess.State().String(),
		HasContent: sess.HasContent(),
	}
}

func boundsFromQuery(r *http.Request) (sample.Rect, error) {
	q := r.URL.Query()
	var rect sample.Rect
	for name, dst := range map[string]*float64{"w": &rect.W, "h": &rect.H} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return sample.Rect{}, fmt.Errorf("bad %s=%q", name, v)
		}
		*dst = f
	}
	return rect, nil
}
