package folio

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/rotator"
	"github.com/eringen/folio/viewport"
)

const (
	liveWriteWait  = 10 * time.Second
	liveMaxMessage = 1024
	liveQueue      = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// liveRequest is the incoming message format.
type liveRequest struct {
	Type  string `json:"type"` // "resize"
	Width int    `json:"width"`
}

type helloEvent struct {
	Type    string `json:"type"`
	Session string `json:"session"`
}

type layoutEvent struct {
	Type   string `json:"type"`
	Mobile bool   `json:"mobile"`
}

type taglineEvent struct {
	Type          string `json:"type"`
	Index         int    `json:"index"`
	Text          string `json:"text"`
	Transitioning bool   `json:"transitioning"`
}

// liveSession is one open page view. It owns a Window fed by the client's
// resize messages, a Detector over it and, on the home page, a Rotator.
type liveSession struct {
	id       string
	conn     *websocket.Conn
	window   *viewport.Window
	detector *viewport.Detector
	rot      *rotator.Rotator
	out      chan any
	write    func(msg any) error
	ctx      context.Context
	cancel   context.CancelFunc

	// measured is set once the client has reported a width. It is only
	// touched by the reading goroutine, which also drives the detector.
	measured bool

	closeOnce sync.Once
}

// send queues msg for the writer. It gives up once the session is closing.
func (s *liveSession) send(msg any) {
	select {
	case s.out <- msg:
	case <-s.ctx.Done():
	}
}

func (s *liveSession) writeLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.out:
			if err := s.write(msg); err != nil {
				// Closing the connection unblocks the reader, which tears
				// the session down.
				s.close()
				return
			}
		}
	}
}

// close stops the rotator, releases the detector and closes the connection.
// It is safe to call from any goroutine, more than once.
func (s *liveSession) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		if s.rot != nil {
			s.rot.Stop()
		}
		s.detector.Close()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(time.Second))
		s.conn.Close()
	})
}

// liveHub tracks open sessions so shutdown can close them.
type liveHub struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
	closed   bool
}

func newLiveHub() *liveHub {
	return &liveHub{sessions: make(map[string]*liveSession)}
}

func (h *liveHub) add(s *liveSession) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s.id] = s
	return true
}

func (h *liveHub) remove(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Count returns the number of open sessions.
func (h *liveHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *liveHub) closeAll() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*liveSession, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// LiveSessions returns the number of open live connections.
func (a *App) LiveSessions() int {
	return a.hub.Count()
}

func (a *App) newLiveSession(conn *websocket.Conn, page string) (*liveSession, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &liveSession{
		id:     uuid.NewString(),
		conn:   conn,
		window: viewport.NewWindow(),
		out:    make(chan any, liveQueue),
		ctx:    ctx,
		cancel: cancel,
	}
	s.write = func(msg any) error {
		conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		return conn.WriteJSON(msg)
	}
	s.detector = viewport.NewDetector(s.window, func(mobile bool) {
		if s.measured {
			s.send(layoutEvent{Type: "layout", Mobile: mobile})
		}
	})

	if site := a.Site(); page == "home" && site != nil && len(site.Roles) > 0 {
		rot, err := rotator.New(site.Roles,
			rotator.WithScheduler(a.sched),
			rotator.WithOnChange(func(st rotator.State) {
				s.send(taglineEvent{Type: "tagline", Index: st.Index, Text: st.Text, Transitioning: st.Transitioning})
			}),
		)
		if err != nil {
			s.detector.Close()
			cancel()
			return nil, err
		}
		s.rot = rot
	}
	return s, nil
}

func (a *App) handleLive(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		c.Logger().Debugf("live: upgrade: %v", err)
		return nil
	}
	conn.SetReadLimit(liveMaxMessage)

	s, err := a.newLiveSession(conn, c.QueryParam("page"))
	if err != nil {
		c.Logger().Errorf("live: new session: %v", err)
		conn.Close()
		return nil
	}
	defer a.hub.remove(s.id)
	defer s.close()
	if a.liveHook != nil {
		a.liveHook(s)
	}
	if !a.hub.add(s) {
		return nil
	}

	go s.writeLoop()
	if s.rot != nil {
		s.rot.Start()
	}
	s.send(helloEvent{Type: "hello", Session: s.id})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Logger().Debugf("live: read: %v", err)
			}
			return nil
		}

		var req liveRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			continue
		}
		switch req.Type {
		case "resize":
			if req.Width <= 0 {
				continue
			}
			s.window.Resize(req.Width)
			// Later flips are reported by the detector.
			if !s.measured {
				s.measured = true
				s.send(layoutEvent{Type: "layout", Mobile: s.detector.IsMobile()})
			}
		}
	}
}
