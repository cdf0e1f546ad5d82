package relay

import (
	"encoding/json"
	"log"
	"sync"
)

type broadcastMsg struct {
	Room    string
	Data    []byte
	Exclude *Client
}

type membership struct {
	client *Client
	room   string
}

// Hub tracks room membership for connected sockets and fans events out to
// them. Membership lives in memory only; a restart drops it and clients must
// re-join.
type Hub struct {
	rooms      map[string]map[*Client]bool
	clients    map[*Client]map[string]bool
	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	broadcast  chan broadcastMsg
	quit       chan struct{}
	once       sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		clients:    make(map[*Client]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan membership),
		broadcast:  make(chan broadcastMsg, 64),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = make(map[string]bool)
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if rooms, ok := h.clients[c]; ok {
				for room := range rooms {
					h.removeFromRoom(c, room)
				}
				delete(h.clients, c)
				c.closeSend()
			}
			h.mu.Unlock()

		case m := <-h.join:
			h.mu.Lock()
			if rooms, ok := h.clients[m.client]; ok {
				if h.rooms[m.room] == nil {
					h.rooms[m.room] = make(map[*Client]bool)
				}
				h.rooms[m.room][m.client] = true
				rooms[m.room] = true
			}
			h.mu.Unlock()

		case m := <-h.leave:
			h.mu.Lock()
			if rooms, ok := h.clients[m.client]; ok {
				h.removeFromRoom(m.client, m.room)
				delete(rooms, m.room)
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				if c == m.Exclude {
					continue
				}
				select {
				case c.Send <- m.Data:
				default:
					// Slow consumer; drop it. The client may still be
					// reading frames, so the close must go through its
					// guarded path.
					for room := range h.clients[c] {
						h.removeFromRoom(c, room)
					}
					delete(h.clients, c)
					c.closeSend()
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				c.closeSend()
			}
			h.clients = make(map[*Client]map[string]bool)
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// caller holds h.mu
func (h *Hub) removeFromRoom(c *Client, room string) {
	if conns := h.rooms[room]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Stop shuts the hub down and closes every connected client's send channel.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.quit) })
}

// Emit marshals a payload and broadcasts it to every socket in the room.
// Satisfies messages.Broadcaster.
func (h *Hub) Emit(room string, payload any) {
	h.emit(room, payload, nil)
}

// EmitExcept broadcasts to the room, skipping one client.
func (h *Hub) EmitExcept(room string, payload any, skip *Client) {
	h.emit(room, payload, skip)
}

func (h *Hub) emit(room string, payload any, skip *Client) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("relay: marshal failed: %v", err)
		return
	}
	select {
	case h.broadcast <- broadcastMsg{Room: room, Data: data, Exclude: skip}:
	case <-h.quit:
	}
}
