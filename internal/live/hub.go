// Package live re-evaluates queries after writes and hands the latest result
// to subscribers until they release their subscription.
package live

import (
	"sync"

	"github.com/google/uuid"

	"onesmallstep/internal/logger"
)

// Topic names a group of tables whose writes invalidate the same queries.
type Topic string

const (
	TopicCatalog  Topic = "catalog"
	TopicProgress Topic = "progress"
)

type listener struct {
	id     uuid.UUID
	topics []Topic
	notify chan struct{}
}

// Hub fans write notifications out to listeners.
type Hub struct {
	mu        sync.RWMutex
	log       *logger.Logger
	listeners map[Topic]map[*listener]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:       log.With("component", "LiveHub"),
		listeners: make(map[Topic]map[*listener]bool),
	}
}

// Publish wakes every listener of the given topics. Pending wake-ups
// coalesce, so a burst of writes costs one re-evaluation.
func (h *Hub) Publish(topics ...Topic) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, topic := range topics {
		for l := range h.listeners[topic] {
			select {
			case l.notify <- struct{}{}:
			default:
			}
		}
	}
}

// Listeners reports how many listeners are registered for topic.
func (h *Hub) Listeners(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[topic])
}

func (h *Hub) listen(topics []Topic) *listener {
	l := &listener{
		id:     uuid.New(),
		topics: topics,
		notify: make(chan struct{}, 1),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		set, ok := h.listeners[topic]
		if !ok {
			set = make(map[*listener]bool)
			h.listeners[topic] = set
		}
		set[l] = true
	}
	h.log.Debug("listener added", "id", l.id, "topics", topics)
	return l
}

func (h *Hub) unlisten(l *listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range l.topics {
		if set, ok := h.listeners[topic]; ok {
			delete(set, l)
			if len(set) == 0 {
				delete(h.listeners, topic)
			}
		}
	}
	h.log.Debug("listener removed", "id", l.id)
}
