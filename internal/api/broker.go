package api

import (
	"sync"
)

// ProgressUpdate is one improvement-loop event pushed to stream subscribers.
type ProgressUpdate struct {
	SolveID   string `json:"solve_id"`
	Type      string `json:"type"` // "progress" or "done"
	Iteration int64  `json:"iteration,omitempty"`
	Distance  int64  `json:"distance,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms,omitempty"`
	Status    string `json:"status,omitempty"`
}

// EventBroker fans solve progress out to stream subscribers by solve id.
type EventBroker interface {
	Subscribe(solveID string) chan ProgressUpdate
	Unsubscribe(solveID string, ch chan ProgressUpdate)
	Publish(solveID string, evt ProgressUpdate)
}

// Broker is the in-process EventBroker.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan ProgressUpdate]struct{} // solveId -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan ProgressUpdate]struct{}{}}
}

func (b *Broker) Subscribe(solveID string) chan ProgressUpdate {
	ch := make(chan ProgressUpdate, 16)
	b.mu.Lock()
	if b.subs[solveID] == nil {
		b.subs[solveID] = map[chan ProgressUpdate]struct{}{}
	}
	b.subs[solveID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(solveID string, ch chan ProgressUpdate) {
	b.mu.Lock()
	if m := b.subs[solveID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, solveID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

func (b *Broker) Publish(solveID string, evt ProgressUpdate) {
	b.mu.Lock()
	for ch := range b.subs[solveID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
