package midi

import (
	"sort"
	"sync"
)

// EventQueue holds scheduled events in offset order. Events with the same
// offset keep the order they were added in.
type EventQueue struct {
	events []Event
	mu     sync.Mutex
	sorted bool
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		events: make([]Event, 0, 128),
		sorted: true,
	}
}

func (q *EventQueue) Add(events ...Event) {
	if len(events) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, events...)
	q.sorted = false
}

// Due removes and returns the events with an offset before end.
func (q *EventQueue) Due(end int64) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.sorted {
		q.sortEvents()
	}

	n := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].Offset >= end
	})
	if n == 0 {
		return nil
	}

	result := make([]Event, n)
	copy(result, q.events[:n])
	copy(q.events, q.events[n:])
	q.events = q.events[:len(q.events)-n]
	return result
}

func (q *EventQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = q.events[:0]
	q.sorted = true
}

func (q *EventQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *EventQueue) IsEmpty() bool {
	return q.Size() == 0
}

func (q *EventQueue) sortEvents() {
	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].Offset < q.events[j].Offset
	})
	q.sorted = true
}
