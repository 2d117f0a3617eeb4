package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// QuizRepository caches quiz content in Redis and falls back to a loader on cache miss.
// Questions are stored as:  HSET quiz:{quizID}:questions {questionID} {question JSON with answers}
// Quiz metadata as:         HSET quiz:{quizID}:meta name {name} created {unix nanos}
// A hash has no order, so questions are re-sorted by ID when read back.
type QuizRepository struct {
	client *redis.Client
	loader app.QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizRepository(client *redis.Client, loader app.QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	if quiz, ok := r.fromCache(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.fromCache(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		// best-effort: a failed write only costs another load
		_ = r.store(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached content of a quiz.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID int64) error {
	return r.client.Del(ctx, r.metaKey(quizID), r.questionsKey(quizID)).Err()
}

func (r *QuizRepository) store(ctx context.Context, quiz domain.Quiz) error {
	metaKey := r.metaKey(quiz.ID)
	questionsKey := r.questionsKey(quiz.ID)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, metaKey, questionsKey)
	pipe.HSet(ctx, metaKey, "name", quiz.Name, "created", quiz.CreatedAt.UnixNano(), "count", len(quiz.Questions))
	for _, q := range quiz.Questions {
		raw, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question %d: %w", q.ID, err)
		}
		pipe.HSet(ctx, questionsKey, strconv.FormatInt(q.ID, 10), raw)
	}
	if ttl := r.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, metaKey, ttl)
		pipe.Expire(ctx, questionsKey, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *QuizRepository) fromCache(ctx context.Context, quizID int64) (domain.Quiz, bool) {
	meta, err := r.client.HGetAll(ctx, r.metaKey(quizID)).Result()
	if err != nil || len(meta) == 0 {
		return domain.Quiz{}, false
	}
	questions, err := r.client.HGetAll(ctx, r.questionsKey(quizID)).Result()
	if err != nil {
		return domain.Quiz{}, false
	}
	quiz, err := buildQuizFromCache(quizID, meta, questions)
	if err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) metaKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":meta"
}

func (r *QuizRepository) questionsKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":questions"
}

func buildQuizFromCache(quizID int64, meta map[string]string, raw map[string]string) (domain.Quiz, error) {
	// a partially expired entry is a miss
	if count, err := strconv.Atoi(meta["count"]); err != nil || count != len(raw) {
		return domain.Quiz{}, fmt.Errorf("incomplete cache entry for quiz %d", quizID)
	}
	quiz := domain.Quiz{ID: quizID, Name: meta["name"]}
	if created, err := strconv.ParseInt(meta["created"], 10, 64); err == nil {
		quiz.CreatedAt = time.Unix(0, created).UTC()
	}
	questions := make([]domain.Question, 0, len(raw))
	for _, value := range raw {
		var q domain.Question
		if err := json.Unmarshal([]byte(value), &q); err != nil {
			return domain.Quiz{}, err
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	quiz.Questions = questions
	return quiz, nil
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
