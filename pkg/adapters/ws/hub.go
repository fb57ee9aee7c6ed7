package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aretw0/questline/internal/logging"
	"github.com/aretw0/questline/pkg/answers"
	"github.com/aretw0/questline/pkg/domain"
	"github.com/aretw0/questline/pkg/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32

	// DefaultRoom is joined when the connection names none.
	DefaultRoom = "default"
	// DefaultName is the display name until the participant picks one.
	DefaultName = "???"
	// DefaultRoomSize bounds the participants of a room.
	DefaultRoomSize = 32
	maxChatLen      = 512
)

// Message types.
const (
	TypeWelcome  = "welcome"
	TypeJoin     = "join"
	TypeLeave    = "leave"
	TypeProperty = "property"
	TypeName     = "name"
	TypeChat     = "chat"
	TypeFull     = "full"
)

// Properties a participant may publish.
var publishable = map[string]bool{"left": true, "top": true, "texture": true, "frame": true}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the single envelope exchanged in both directions.
type Message struct {
	Type         string        `json:"type"`
	ID           string        `json:"id,omitempty"`
	Name         string        `json:"name,omitempty"`
	Key          string        `json:"key,omitempty"`
	Value        string        `json:"value,omitempty"`
	Text         string        `json:"text,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

// Participant is the public state of a connection.
type Participant struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// NameSource is where display names come from: an answer store.
type NameSource interface {
	Listen(key string, fn answers.Listener) (cancel func())
}

type member struct {
	Participant
	send chan Message
}

type room struct {
	id      string
	members map[string]*member
}

// Hub owns the rooms.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room

	sessions *session.Manager
	roomSize int
	logger   *slog.Logger
}

// Option configures the Hub.
type Option func(*Hub)

// WithLogger configures the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = l
	}
}

// WithRoomSize bounds the participants of a room.
func WithRoomSize(n int) Option {
	return func(h *Hub) {
		h.roomSize = n
	}
}

// WithSessions lets connections bind their display name to a session.
func WithSessions(m *session.Manager) Option {
	return func(h *Hub) {
		h.sessions = m
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:    make(map[string]*room),
		roomSize: DefaultRoomSize,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// join adds a member and queues its welcome, or returns false when the room is full.
func (h *Hub) join(roomID string, m *member) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{id: roomID, members: make(map[string]*member)}
		h.rooms[roomID] = r
	}
	if len(r.members) >= h.roomSize {
		if len(r.members) == 0 {
			delete(h.rooms, roomID)
		}
		return false
	}
	m.send <- Message{Type: TypeWelcome, ID: m.ID, Name: m.Name, Participants: r.snapshot()}
	r.members[m.ID] = m
	r.broadcast(Message{Type: TypeJoin, ID: m.ID, Name: m.Name}, m.ID)
	return true
}

func (h *Hub) leave(roomID, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return
	}
	m, ok := r.members[id]
	if !ok {
		return
	}
	delete(r.members, id)
	close(m.send)
	r.broadcast(Message{Type: TypeLeave, ID: id}, "")
	if len(r.members) == 0 {
		delete(h.rooms, roomID)
	}
}

// update applies fn to the member and broadcasts msg to the room, skipping except.
func (h *Hub) update(roomID, id string, msg Message, except string, fn func(*member)) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	m, ok := r.members[id]
	if !ok {
		return false
	}
	if fn != nil {
		fn(m)
	}
	r.broadcast(msg, except)
	return true
}

// Rename sets the display name of a participant and tells the room. Unknown participants are ignored.
func (h *Hub) Rename(roomID, id, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	h.update(roomID, id, Message{Type: TypeName, ID: id, Name: name}, "", func(m *member) {
		m.Name = name
	})
}

// BindName renames the participant whenever the player_name answer of src changes.
func (h *Hub) BindName(roomID, id string, src NameSource) (cancel func()) {
	return src.Listen(domain.PlayerNameKey, func(_ context.Context, _, value string) {
		h.Rename(roomID, id, value)
	})
}

// Participants lists a room in id order.
func (h *Hub) Participants(roomID string) []Participant {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	return r.snapshot()
}

func (r *room) snapshot() []Participant {
	out := make([]Participant, 0, len(r.members))
	for _, m := range r.members {
		p := Participant{ID: m.ID, Name: m.Name, Properties: make(map[string]string, len(m.Properties))}
		for k, v := range m.Properties {
			p.Properties[k] = v
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// broadcast must be called with the hub lock held. Slow members lose the message.
func (r *room) broadcast(msg Message, except string) {
	for id, m := range r.members {
		if id == except {
			continue
		}
		select {
		case m.send <- msg:
		default:
		}
	}
}

// ServeHTTP upgrades the connection and relays until it closes.
// Query parameters: room, name and session (a questline session id).
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomID := q.Get("room")
	if roomID == "" {
		roomID = DefaultRoom
	}
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		name = DefaultName
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	m := &member{
		Participant: Participant{ID: uuid.NewString(), Name: name, Properties: make(map[string]string)},
		send:        make(chan Message, sendBuffer),
	}
	logger := h.logger.With("room", roomID, "participant", m.ID)

	unbind := h.bindSession(r.Context(), q.Get("session"), roomID, m, logger)
	defer unbind()

	if !h.join(roomID, m) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(Message{Type: TypeFull, Text: "room full"})
		return
	}
	defer h.leave(roomID, m.ID)
	logger.Info("participant joined")

	done := make(chan struct{})
	go h.writePump(conn, m.send, done, logger)
	h.readPump(conn, roomID, m.ID, logger)
	logger.Info("participant left")
	h.leave(roomID, m.ID)
	<-done
}

// bindSession resolves the initial name from the session and follows its player_name answer.
func (h *Hub) bindSession(ctx context.Context, sessionID, roomID string, m *member, logger *slog.Logger) func() {
	if h.sessions == nil || sessionID == "" {
		return func() {}
	}
	var cancel func()
	err := h.sessions.Do(ctx, sessionID, func(_ context.Context, g *session.Game) error {
		if _, ok := g.Answers.Get(domain.PlayerNameKey); ok {
			m.Name = g.PlayerName()
		}
		cancel = h.BindName(roomID, m.ID, g.Answers)
		return nil
	})
	if err != nil {
		logger.Warn("cannot bind session", "session_id", sessionID, "error", err)
		return func() {}
	}
	return func() {
		err := h.sessions.Do(context.Background(), sessionID, func(context.Context, *session.Game) error {
			cancel()
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Warn("cannot unbind session", "session_id", sessionID, "error", err)
		}
	}
}

func (h *Hub) readPump(conn *websocket.Conn, roomID, id string, logger *slog.Logger) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				logger.Debug("read failed", "error", err)
			}
			return
		}
		switch msg.Type {
		case TypeProperty:
			if !publishable[msg.Key] {
				logger.Warn("property ignored", "key", msg.Key)
				continue
			}
			h.update(roomID, id, Message{Type: TypeProperty, ID: id, Key: msg.Key, Value: msg.Value}, id, func(m *member) {
				m.Properties[msg.Key] = msg.Value
			})
		case TypeName:
			h.Rename(roomID, id, msg.Name)
		case TypeChat:
			text := strings.TrimSpace(msg.Text)
			if text == "" || len(text) > maxChatLen {
				continue
			}
			h.update(roomID, id, Message{Type: TypeChat, ID: id, Text: text}, "", nil)
		default:
			logger.Debug("unknown message type", "type", msg.Type)
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, send <-chan Message, done chan<- struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
