package memory

import (
	"sync"

	"quiz-engine/internal/app"
)

// FeedStore is an in-memory implementation of app.FeedRepository.
type FeedStore struct {
	mu    sync.RWMutex
	feeds map[int64]*app.Feed
}

func NewFeedStore() *FeedStore {
	return &FeedStore{
		feeds: make(map[int64]*app.Feed),
	}
}

func (s *FeedStore) GetOrCreate(quizID int64) *app.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if feed, ok := s.feeds[quizID]; ok {
		return feed
	}
	feed := app.NewFeed(quizID)
	s.feeds[quizID] = feed
	return feed
}

func (s *FeedStore) Get(quizID int64) (*app.Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed, ok := s.feeds[quizID]
	return feed, ok
}

func (s *FeedStore) DeleteIfEmpty(quizID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[quizID]
	if !ok {
		return
	}
	if feed.IsEmpty() {
		delete(s.feeds, quizID)
	}
}
