package overlay

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"padkey/internal/input"
	"padkey/internal/protocol"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256

	// Events queued by Notify before the hub loop picks them up
	broadcastBuffer = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The overlay is served from a local webview whose origin varies by platform
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans overlay events out to connected front-ends and dispatches their commands
type Hub struct {
	commands   Commands
	clients    map[*client]bool
	clientsMu  sync.RWMutex
	broadcast  chan protocol.Message
	register   chan *client
	unregister chan *client
	shutdown   chan struct{}
	stopOnce   sync.Once
}

// client represents a connected overlay. send is never closed; done is
// closed when readPump exits and stops writePump.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	addr string
}

// NewHub creates a hub dispatching inbound commands to cmds
func NewHub(cmds Commands) *Hub {
	return &Hub{
		commands:   cmds,
		clients:    make(map[*client]bool),
		broadcast:  make(chan protocol.Message, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		shutdown:   make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			// the greeting must come after everything already queued
			h.flush()
			h.clientsMu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.clientsMu.Unlock()
			log.Printf("Overlay: client connected from %s. Total clients: %d", c.addr, n)
			h.greet(c)

		case c := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				log.Printf("Overlay: client disconnected from %s. Total clients: %d", c.addr, len(h.clients))
			}
			h.clientsMu.Unlock()

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)

		case <-h.shutdown:
			h.clientsMu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				c.conn.Close()
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

// flush delivers every queued event to the current clients
func (h *Hub) flush() {
	for {
		select {
		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		default:
			return
		}
	}
}

// Stop ends Run and disconnects all clients
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.shutdown) })
}

// Notify queues ev for every connected client without blocking. Events are
// delivered in the order Notify was called; when the queue is full the
// event is dropped.
func (h *Hub) Notify(ev Event) {
	msg := ev.Message()
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("Overlay: event queue full, dropping %s", msg.Type)
	}
}

// ClientCount returns the number of connected overlays
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// greet sends the current activation and visibility state to a new client
func (h *Hub) greet(c *client) {
	if h.commands == nil {
		return
	}
	st := h.commands.Status()
	for _, ev := range []Event{ActiveChanged{Active: st.Active}, VisibilityChanged{Visible: st.OverlayOpen}} {
		data, err := json.Marshal(ev.Message())
		if err != nil {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) broadcastMessage(msg protocol.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Overlay: failed to marshal %s: %v", msg.Type, err)
		return
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("Overlay: client %s is not keeping up, disconnecting", c.addr)
			delete(h.clients, c)
			c.conn.Close()
		}
	}
}

// ServeWS upgrades the request and attaches the connection to the hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Overlay: failed to upgrade connection: %v", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		addr: r.RemoteAddr,
	}

	select {
	case h.register <- c:
	case <-h.shutdown:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump reads commands from the overlay until the connection closes
func (c *client) readPump() {
	defer func() {
		close(c.done)
		select {
		case c.hub.unregister <- c:
		case <-c.hub.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Overlay: read error: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump writes queued messages and keeps the connection alive with pings
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *client) handleMessage(data []byte) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		log.Printf("Overlay: %v", err)
		return
	}
	cmds := c.hub.commands
	if cmds == nil {
		return
	}

	switch env.Type {
	case protocol.TypeHello:
		var p protocol.HelloPayload
		if err := env.Decode(&p); err != nil {
			c.replyError(env.Type, err)
			return
		}
		log.Printf("Overlay: front-end window %#x registered from %s", p.Window, c.addr)
		cmds.SetOverlayWindow(input.Window(p.Window))

	case protocol.TypeSendKey:
		var p protocol.KeyPayload
		if err := env.Decode(&p); err != nil {
			c.replyError(env.Type, err)
			return
		}
		if err := cmds.SendKey(p); err != nil {
			log.Printf("Overlay: send_key failed: %v", err)
			c.replyError(env.Type, err)
		}

	case protocol.TypeOpenOverlay:
		cmds.OpenOverlay()

	case protocol.TypeCloseOverlay:
		cmds.CloseOverlay()

	case protocol.TypeToggleActive:
		cmds.ToggleActive()

	case protocol.TypeVisibilityAck:
		var p protocol.VisibilityPayload
		if err := env.Decode(&p); err == nil {
			log.Printf("Overlay: visibility acknowledged (visible=%v)", p.Visible)
		}

	default:
		log.Printf("Overlay: ignoring unknown message type %q", env.Type)
	}
}

func (c *client) replyError(req protocol.MessageType, err error) {
	data, merr := json.Marshal(protocol.Message{
		Type:    protocol.TypeError,
		Payload: protocol.ErrorPayload{Request: req, Message: err.Error()},
	})
	if merr != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
