package services

import (
	"sync"

	"petplus-bot/models"
)

const defaultMemoryTurns = 20

// ConversationMemory keeps a bounded ring of recent turns per user for the
// generative fallback. It is keyed like sessions but lives independently of
// session eviction.
type ConversationMemory struct {
	mu       sync.Mutex
	capacity int
	turns    map[string][]models.ChatTurn
}

func NewConversationMemory(capacity int) *ConversationMemory {
	if capacity <= 0 {
		capacity = defaultMemoryTurns
	}
	return &ConversationMemory{
		capacity: capacity,
		turns:    make(map[string][]models.ChatTurn),
	}
}

// Append records one turn, dropping the oldest entry past the cap.
func (m *ConversationMemory) Append(userID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := append(m.turns[userID], models.ChatTurn{Role: role, Content: content})
	if len(turns) > m.capacity {
		turns = turns[len(turns)-m.capacity:]
	}
	m.turns[userID] = turns
}

// History returns a copy of the user's recent turns, oldest first.
func (m *ConversationMemory) History(userID string) []models.ChatTurn {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := m.turns[userID]
	out := make([]models.ChatTurn, len(turns))
	copy(out, turns)
	return out
}
