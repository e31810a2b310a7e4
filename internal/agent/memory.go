package agent

import (
	"sync"
	"time"

	"github.com/zeusync/arenabot/internal/core/bt"
)

// DecisionRecord is one evaluated tick.
type DecisionRecord struct {
	Node      string        `json:"node"`
	Status    bt.Status     `json:"status"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"ts"`
	GameTime  float64       `json:"game_time"`
	Err       string        `json:"err,omitempty"`
}

// Memory keeps the most recent decisions of a bot, oldest first.
type Memory interface {
	AppendDecision(rec DecisionRecord)
	// History returns a copy of the retained records.
	History() []DecisionRecord
	Reset()
}

// ringMemory retains the last size records.
type ringMemory struct {
	mu   sync.RWMutex
	list []DecisionRecord
	next int
	full bool
}

// NewMemory returns a Memory holding at most size records.
func NewMemory(size int) Memory {
	if size < 1 {
		size = 1
	}
	return &ringMemory{list: make([]DecisionRecord, size)}
}

func (m *ringMemory) AppendDecision(rec DecisionRecord) {
	m.mu.Lock()
	m.list[m.next] = rec
	m.next = (m.next + 1) % len(m.list)
	if m.next == 0 {
		m.full = true
	}
	m.mu.Unlock()
}

func (m *ringMemory) History() []DecisionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.full {
		cp := make([]DecisionRecord, m.next)
		copy(cp, m.list[:m.next])
		return cp
	}
	cp := make([]DecisionRecord, 0, len(m.list))
	cp = append(cp, m.list[m.next:]...)
	return append(cp, m.list[:m.next]...)
}

func (m *ringMemory) Reset() {
	m.mu.Lock()
	clear(m.list)
	m.next, m.full = 0, false
	m.mu.Unlock()
}
