package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"quiz-engine/internal/app"
	"quiz-engine/internal/config"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/infra/postgres"
	infraredis "quiz-engine/internal/infra/redis"
	"quiz-engine/internal/infra/sqlite"
)

// stack is the wired service plus the resources that must be released with it.
type stack struct {
	service *app.QuizService
	closers []func()
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStack builds the storage, caches and service described by cfg.
func openStack(ctx context.Context, cfg config.Config) (*stack, error) {
	st := &stack{}

	store, err := openStore(ctx, cfg, st)
	if err != nil {
		st.Close()
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		st.closers = append(st.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	loader := app.NewStoreLoader(store)
	var quizRepo app.QuizRepository
	var feeds app.FeedRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, loader, quizTTL)
		feeds = infraredis.NewFeedStore(redisClient, redisTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
		feeds = memory.NewFeedStore()
	}

	st.service = app.NewQuizService(store, quizRepo, feeds)
	return st, nil
}

func openStore(ctx context.Context, cfg config.Config, st *stack) (app.Gateway, error) {
	switch driver := cfg.StorageDriver(); driver {
	case config.DriverMemory:
		log.Printf("using in-memory storage; data is lost on exit")
		return memory.NewStore(), nil
	case config.DriverSQLite:
		path := cfg.Storage.SQLitePath
		if path == "" {
			path = "quiz.db"
		}
		store, err := sqlite.NewStore(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
		st.closers = append(st.closers, func() { _ = store.Close() })
		return store, nil
	case config.DriverPostgres:
		group, err := postgres.Migrate(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if !group.IsZero() {
			log.Printf("applied migrations %s", group)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st.closers = append(st.closers, pool.Close)
		return postgres.NewStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// withStack loads config, opens the stack and runs fn against it.
func withStack(ctx context.Context, configPath string, fn func(*app.QuizService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	st, err := openStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st.service)
}
