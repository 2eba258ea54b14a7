// Package hub runs story sessions for remote renderers over websockets.
// Each connection owns exactly one session.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"StoryBuilder/internal/remix"
	"StoryBuilder/internal/script"
	"StoryBuilder/internal/session"
	"StoryBuilder/internal/story"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Handler upgrades requests and serves one session per connection.
type Handler struct {
	teller   story.Teller
	script   *script.Script
	logger   *slog.Logger
	origins  map[string]bool
	upgrader websocket.Upgrader
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithAllowedOrigins accepts browser connections from the given origins in
// addition to the server's own host.
func WithAllowedOrigins(origins ...string) HandlerOption {
	return func(h *Handler) {
		for _, o := range origins {
			if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
				h.origins[strings.ToLower(o)] = true
			}
		}
	}
}

// NewHandler creates the websocket handler. A nil teller always yields the
// placeholder story; a nil script uses script.Default.
func NewHandler(teller story.Teller, sc *script.Script, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if sc == nil {
		sc = script.Default()
	}
	h := &Handler{teller: teller, script: sc, logger: logger, origins: map[string]bool{}}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin admits non-browser clients (no Origin header), the server's own
// host and the configured origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.origins[strings.ToLower(origin)] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{
		id:     uuid.NewString(),
		ws:     ws,
		send:   make(chan []byte, 16),
		ctx:    ctx,
		cancel: cancel,
	}
	c.logger = h.logger.With("session_id", c.id)
	c.session = session.New(
		announcer{next: story.NewPipeline(h.teller, c.logger), before: c.push},
		session.WithScript(h.script),
		session.WithLogger(c.logger),
	)

	c.logger.Info("websocket session started")
	go c.writePump()
	c.push()
	c.readPump()
}

// announcer pushes the awaiting state before the story is composed.
type announcer struct {
	next   session.Composer
	before func()
}

func (a announcer) Compose(ctx context.Context, words []string, template string) (story.Result, error) {
	a.before()
	return a.next.Compose(ctx, words, template)
}

type conn struct {
	id      string
	ws      *websocket.Conn
	send    chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	session *session.Session

	mu    sync.Mutex
	remix *remix.Engine

	// held from snapshot to enqueue so updates leave in the order they were taken
	pushMu sync.Mutex
}

func (c *conn) readPump() {
	defer func() {
		c.cancel()
		_ = c.ws.Close()
		c.logger.Info("websocket session closed")
	}()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		var in Intent
		if err := json.Unmarshal(message, &in); err != nil {
			c.logger.Warn("ignoring malformed intent", "error", err)
			continue
		}
		c.apply(in)
	}
}

// apply runs one intent. Intents that do not fit the session state are no-ops,
// but the client still gets the current state back.
func (c *conn) apply(in Intent) {
	c.logger.Debug("intent", "type", in.Type)

	switch in.Type {
	case IntentChoose:
		c.session.Choose(in.Index)
	case IntentAcknowledge:
		c.session.AcknowledgeWrongAnswer()
	case IntentAdvance:
		c.session.AdvancePastMessage()
	case IntentReveal:
		go c.reveal()
		return
	case IntentRemix:
		if c.session.EnterRemixMode() {
			text, _ := c.session.LatestStory()
			c.mu.Lock()
			c.remix = remix.New(c.session.SelectedWords(), text)
			c.mu.Unlock()
		}
	case IntentSubstitute:
		c.mu.Lock()
		if c.remix != nil {
			c.remix.Substitute(in.CategoryID, in.Text)
		}
		c.mu.Unlock()
	case IntentRestart:
		c.session.Restart()
		c.mu.Lock()
		c.remix = nil
		c.mu.Unlock()
	default:
		c.logger.Warn("unknown intent", "type", in.Type)
	}
	c.push()
}

func (c *conn) reveal() {
	ok, err := c.session.RevealStory(c.ctx)
	if err != nil {
		c.logger.Error("failed to reveal story", "error", err)
	}
	if ok || err != nil {
		c.push()
	}
}

func (c *conn) update() Update {
	u := Update{
		Type:      "state",
		SessionID: c.id,
		State:     c.session.Snapshot(),
		Choices:   c.session.Choices(),
	}
	if st, ok := c.session.CurrentStep(); ok {
		u.Step = stepView(st)
	}
	u.Progress.Answered, u.Progress.Total = c.session.Progress()

	c.mu.Lock()
	if c.remix != nil {
		u.Remix = remixView(c.remix)
	}
	c.mu.Unlock()
	return u
}

// push queues the current state for the client.
func (c *conn) push() {
	c.pushMu.Lock()
	defer c.pushMu.Unlock()

	data, err := json.Marshal(c.update())
	if err != nil {
		c.logger.Error("failed to marshal update", "error", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case message := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("failed to write message", "error", err)
				c.cancel()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn("failed to send ping", "error", err)
				c.cancel()
				return
			}
		case <-c.ctx.Done():
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
