package state

import (
	"sync"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

// DefaultChatHistory is how many messages per studio the in-memory ring
// retains for the init snapshot. Durable persistence is a separate,
// fire-and-forget concern.
const DefaultChatHistory = 200

// ChatHistory keeps the recent chat per studio so a reconnecting console can
// converge without polling the database.
type ChatHistory struct {
	mu       sync.RWMutex
	perRoom  map[types.Studio][]types.ChatMessage
	capacity int
}

func NewChatHistory(capacity int) *ChatHistory {
	if capacity <= 0 {
		capacity = DefaultChatHistory
	}
	return &ChatHistory{
		perRoom:  make(map[types.Studio][]types.ChatMessage),
		capacity: capacity,
	}
}

func (h *ChatHistory) Add(msg types.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.perRoom[msg.Studio]
	room = append(room, msg)
	if len(room) > h.capacity {
		room = append([]types.ChatMessage(nil), room[len(room)-h.capacity:]...)
	}
	h.perRoom[msg.Studio] = room
}

// History returns the retained messages for a studio, oldest first.
func (h *ChatHistory) History(studio types.Studio) []types.ChatMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]types.ChatMessage(nil), h.perRoom[studio]...)
}

// Clear drops the studio's retained history.
func (h *ChatHistory) Clear(studio types.Studio) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.perRoom, studio)
}

// Total reports the number of retained messages across studios.
func (h *ChatHistory) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, room := range h.perRoom {
		n += len(room)
	}
	return n
}
