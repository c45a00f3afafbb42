// Package liveserver streams decoded characters and sample metrics from
// any of this module's demodulators to browser clients over a websocket,
// generalizing the teacher's PCM/spectrum broadcast hub to this repo's
// decode-event stream.
package liveserver

import (
	"encoding/binary"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types for the binary live-decode wire framing:
// [type:1][timestamp:8][payload...].
const (
	TypeText          byte = 0x01
	TypeBaudError     byte = 0x02
	TypeFrequencyLock byte = 0x03
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client is one connected websocket session.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts decode events to every connected client. The zero value
// is not usable; construct with NewHub.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
}

// NewHub returns an empty, ready-to-use Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]*client)}
}

// ServeWS upgrades an HTTP request to a websocket connection and registers
// it as a broadcast recipient until the connection closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[liveserver] upgrade failed: %v", err)
		return
	}

	c := &client{id: uuid.New(), conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	log.Printf("[liveserver] client %s connected (%d total)", c.id, h.ClientCount())

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer h.disconnect(c)
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			h.disconnect(c)
			return
		}
	}
}

func (h *Hub) disconnect(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
	log.Printf("[liveserver] client %s disconnected (%d total)", c.id, h.ClientCount())
}

// ClientCount reports the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast frames a message and enqueues it on every connected client,
// dropping it for any client whose send buffer is full rather than
// blocking the decode loop.
func (h *Hub) broadcast(msgType byte, payload []byte) {
	frame := make([]byte, 9+len(payload))
	frame[0] = msgType
	binary.BigEndian.PutUint64(frame[1:9], uint64(time.Now().UnixMilli()))
	copy(frame[9:], payload)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- frame:
		default:
			log.Printf("[liveserver] client %s send buffer full, dropping frame", c.id)
		}
	}
}

// BroadcastText sends a decoded-character event (SCAMP, RTTY, or Morse
// output) to every connected client.
func (h *Hub) BroadcastText(mode string, text byte) {
	h.broadcast(TypeText, append([]byte(mode+":"), text))
}

// BroadcastBaudError reports a clock-recovery or framing anomaly to
// connected clients, carrying the raw measured phase error.
func (h *Hub) BroadcastBaudError(clockError float32) {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, math.Float32bits(clockError))
	h.broadcast(TypeBaudError, payload)
}

// BroadcastFrequencyLock reports a frequency-lock event with the locked
// mark/space frequencies in Hertz.
func (h *Hub) BroadcastFrequencyLock(markHz, spaceHz float32) {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint32(payload[0:4], math.Float32bits(markHz))
	binary.BigEndian.PutUint32(payload[4:8], math.Float32bits(spaceHz))
	h.broadcast(TypeFrequencyLock, payload)
}
