package redis

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"quiz-engine/internal/app"
)

// FeedStore is a Redis-aware implementation of app.FeedRepository.
// Notes:
//   - Feeds and their subscribers stay in process; statistics are broadcast locally.
//   - Redis marks which quizzes currently have live statistics viewers, so other
//     instances or operators can see them with a key scan. The marker is refreshed
//     whenever viewers subscribe or a submission is published.
type FeedStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	feeds  map[int64]*app.Feed
}

func NewFeedStore(client *redis.Client, ttl time.Duration) *FeedStore {
	return &FeedStore{
		client: client,
		ttl:    ttl,
		feeds:  make(map[int64]*app.Feed),
	}
}

func (s *FeedStore) GetOrCreate(quizID int64) *app.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed, ok := s.feeds[quizID]
	if !ok {
		feed = app.NewFeed(quizID)
		s.feeds[quizID] = feed
	}
	s.touch(quizID)
	return feed
}

// Get is called on every accepted submission, so it also keeps the marker alive.
func (s *FeedStore) Get(quizID int64) (*app.Feed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feed, ok := s.feeds[quizID]
	if ok {
		s.touch(quizID)
	}
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
		_ = s.client.Del(context.Background(), s.key(quizID)).Err()
	}
}

// touch sets the liveness marker and pushes its expiry out. Best-effort.
func (s *FeedStore) touch(quizID int64) {
	_ = s.client.Set(context.Background(), s.key(quizID), "1", s.ttl).Err()
}

func (s *FeedStore) key(quizID int64) string {
	return "quiz:feed:" + strconv.FormatInt(quizID, 10)
}
