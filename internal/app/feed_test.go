package app

import (
	"testing"
	"time"

	"quiz-engine/internal/domain"
)

func TestFeedDropsStaleUpdatesForSlowSubscribers(t *testing.T) {
	now := time.Unix(1700000000, 0)
	feed := NewFeedWithClock(1, func() time.Time { return now })

	ch, cancel := feed.Subscribe(nil)
	defer cancel()

	for i := 0; i < 20; i++ {
		stats := domain.Statistics{QuizID: 1}
		stats.Ranges[0].Count = i
		feed.Publish(stats)
	}

	var last Update
drain:
	for {
		select {
		case u := <-ch:
			last = u
		default:
			break drain
		}
	}
	if last.Statistics.Ranges[0].Count != 19 {
		t.Fatalf("expected latest update to survive, got %d", last.Statistics.Ranges[0].Count)
	}
}

func TestFeedReplaysLastSnapshotToLateSubscribers(t *testing.T) {
	feed := NewFeed(3)
	stats := domain.Statistics{QuizID: 3}
	stats.Ranges[5].Count = 2
	feed.Publish(stats)

	ch, cancel := feed.Subscribe(nil)
	got := <-ch
	if got.Statistics.Ranges[5].Count != 2 {
		t.Fatalf("expected replayed snapshot, got %+v", got.Statistics.Ranges)
	}

	cancel()
	if !feed.IsEmpty() {
		t.Fatalf("expected feed to be empty after cancel")
	}
	if _, open := <-ch; open {
		t.Fatalf("expected channel closed after cancel")
	}
}
