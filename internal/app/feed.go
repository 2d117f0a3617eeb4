package app

import (
	"sync"
	"time"

	"quiz-engine/internal/domain"
)

// Update is what statistics subscribers receive.
type Update struct {
	Statistics domain.Statistics `json:"statistics"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Feed fans statistics updates for one quiz out to its subscribers.
type Feed struct {
	quizID      int64
	createdAt   time.Time
	now         func() time.Time
	mu          sync.RWMutex
	last        *Update
	subscribers map[chan Update]struct{}
}

// NewFeed is exported for infrastructure layers that keep feeds.
func NewFeed(quizID int64) *Feed {
	return NewFeedWithClock(quizID, time.Now)
}

// NewFeedWithClock allows deterministic timestamps in tests.
func NewFeedWithClock(quizID int64, now func() time.Time) *Feed {
	return &Feed{
		quizID:      quizID,
		createdAt:   now(),
		now:         now,
		subscribers: make(map[chan Update]struct{}),
	}
}

// QuizID returns the quiz this feed belongs to.
func (f *Feed) QuizID() int64 {
	return f.quizID
}

// Publish stores the statistics as the latest snapshot and broadcasts it.
func (f *Feed) Publish(stats domain.Statistics) Update {
	f.mu.Lock()
	defer f.mu.Unlock()

	update := Update{Statistics: stats, UpdatedAt: f.now()}
	f.last = &update
	for ch := range f.subscribers {
		select {
		case ch <- update:
		default:
			// drop the stale update so a slow reader never blocks publishing
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
	return update
}

// Subscribe registers a channel that first receives the initial snapshot, if any.
// The caller must invoke cancel to release it.
func (f *Feed) Subscribe(initial *domain.Statistics) (<-chan Update, func()) {
	ch := make(chan Update, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	switch {
	case initial != nil:
		update := Update{Statistics: *initial, UpdatedAt: f.now()}
		f.last = &update
		ch <- update
	case f.last != nil:
		ch <- *f.last
	}
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

// IsEmpty reports whether the feed has no subscribers.
func (f *Feed) IsEmpty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers) == 0
}
