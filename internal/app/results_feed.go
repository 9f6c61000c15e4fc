package app

import (
	"sync"

	"trivia-quiz-bot/internal/domain"
)

// ResultsFeed fans newly persisted best scores out to subscribers.
type ResultsFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.BestScore]struct{}
}

func NewResultsFeed() *ResultsFeed {
	return &ResultsFeed{subscribers: make(map[chan domain.BestScore]struct{})}
}

// Subscribe returns a channel of records. The caller must invoke the returned
// cancel function to avoid leaks.
func (f *ResultsFeed) Subscribe() (<-chan domain.BestScore, func()) {
	ch := make(chan domain.BestScore, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish never blocks: a full subscriber loses its oldest pending record.
func (f *ResultsFeed) Publish(score domain.BestScore) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- score:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- score
		}
	}
}

// Subscribers reports how many listeners are attached.
func (f *ResultsFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
