package agent

import (
	"sync"

	"go-autoscaler-agent/dto"
)

// EventLog is a bounded in-memory record of applied scaling decisions,
// surfaced by the health endpoint. Oldest entries are dropped first.
type EventLog struct {
	events  []dto.ScalingEvent
	maxSize int
	mu      sync.RWMutex
}

func NewEventLog(maxSize int) *EventLog {
	return &EventLog{
		events:  make([]dto.ScalingEvent, 0, maxSize),
		maxSize: maxSize,
	}
}

func (l *EventLog) Add(e dto.ScalingEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, e)
	if len(l.events) > l.maxSize {
		l.events = l.events[1:]
	}
}

// Recent returns up to n events, newest last.
func (l *EventLog) Recent(n int) []dto.ScalingEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.events) < n {
		n = len(l.events)
	}
	out := make([]dto.ScalingEvent, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}
