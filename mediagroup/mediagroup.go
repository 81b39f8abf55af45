package mediagroup

import (
	"sync"
	"time"
)

type Message struct {
	ID         int
	Text       string
	HasMedia   bool
	HasSticker bool
}

// Group — собранная медиагруппа, готовая к модерации
type Group struct {
	ChatID   int64
	ThreadID int
	FromID   int64
	Messages []Message
}

// Caption — первый непустой текст в группе (Telegram вешает подпись
// только на одно из сообщений альбома)
func (g *Group) Caption() string {
	for _, m := range g.Messages {
		if m.Text != "" {
			return m.Text
		}
	}
	return ""
}

func (g *Group) HasSticker() bool {
	for _, m := range g.Messages {
		if m.HasSticker {
			return true
		}
	}
	return false
}

func (g *Group) HasMedia() bool {
	for _, m := range g.Messages {
		if m.HasMedia {
			return true
		}
	}
	return false
}

func (g *Group) MessageIDs() []int {
	ids := make([]int, 0, len(g.Messages))
	for _, m := range g.Messages {
		ids = append(ids, m.ID)
	}
	return ids
}

type FlushFunc func(g *Group)

// Aggregator буферизует сообщения медиагруппы и отдаёт её целиком
// после паузы в поступлении. Каждое новое сообщение взводит таймер
// заново.
type Aggregator struct {
	wait  time.Duration
	flush FlushFunc

	mu      sync.Mutex
	buffers map[string]*buffer
}

type buffer struct {
	group *Group
	timer *time.Timer
	seq   int
}

func New(wait time.Duration, flush FlushFunc) *Aggregator {
	return &Aggregator{
		wait:    wait,
		flush:   flush,
		buffers: make(map[string]*buffer),
	}
}

// Add буферизует сообщение. Сообщения с чужим chat/sender под тем же
// group id молча отбрасываются.
func (a *Aggregator) Add(groupID string, chatID int64, threadID int, fromID int64, msg Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if buf, ok := a.buffers[groupID]; ok {
		if buf.group.ChatID != chatID || buf.group.FromID != fromID {
			return
		}
		buf.group.Messages = append(buf.group.Messages, msg)
		a.arm(groupID, buf)
		return
	}

	buf := &buffer{
		group: &Group{
			ChatID:   chatID,
			ThreadID: threadID,
			FromID:   fromID,
			Messages: []Message{msg},
		},
	}
	a.buffers[groupID] = buf
	a.arm(groupID, buf)
}

// Pending — количество групп в ожидании
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffers)
}

func (a *Aggregator) arm(groupID string, buf *buffer) {
	if buf.timer != nil {
		buf.timer.Stop()
	}
	buf.seq++
	seq := buf.seq
	buf.timer = time.AfterFunc(a.wait, func() {
		a.fire(groupID, seq)
	})
}

func (a *Aggregator) fire(groupID string, seq int) {
	a.mu.Lock()
	buf, ok := a.buffers[groupID]
	if !ok || buf.seq != seq {
		a.mu.Unlock()
		return
	}
	delete(a.buffers, groupID)
	a.mu.Unlock()

	a.flush(buf.group)
}
