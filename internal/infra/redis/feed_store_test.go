package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestFeedStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewFeedStore(client, time.Minute)

	_ = store.GetOrCreate(7)
	if !mr.Exists("quiz:feed:7") {
		t.Fatalf("expected redis key to be set")
	}

	store.DeleteIfEmpty(7)
	if mr.Exists("quiz:feed:7") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestFeedStoreRefreshesLivenessWhileActive(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewFeedStore(client, time.Minute)

	feed := store.GetOrCreate(7)
	_, cancel := feed.Subscribe(nil)
	defer cancel()

	for i := 0; i < 3; i++ {
		mr.FastForward(45 * time.Second)
		if _, ok := store.Get(7); !ok {
			t.Fatalf("expected feed to exist")
		}
	}
	if !mr.Exists("quiz:feed:7") {
		t.Fatalf("expected liveness key to survive while the feed is active")
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists("quiz:feed:7") {
		t.Fatalf("expected liveness key to expire once activity stops")
	}
}
