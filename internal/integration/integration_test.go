package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/postgres"
	infraredis "quiz-engine/internal/infra/redis"
)

func TestQuizFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	if _, err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, app.NewStoreLoader(store), 5*time.Minute)
	feeds := infraredis.NewFeedStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(store, quizRepo, feeds)

	quiz, err := service.CreateQuiz(ctx, sampleDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	answer(t, ctx, service, quiz.ID, "alice@example.com", []string{"4", "Paris"})
	answer(t, ctx, service, quiz.ID, "bob@example.com", []string{"5", "Paris"})
	answer(t, ctx, service, quiz.ID, "carol@example.com", []string{"4"})

	progress, err := service.NextQuestionOrCompletion(ctx, quiz.ID, "alice@example.com")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !progress.Completed {
		t.Fatalf("expected alice to be done, got %+v", progress)
	}

	stats, err := service.GetQuizStatistics(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if len(stats.Completed) != 2 {
		t.Fatalf("expected 2 completed participants, got %d", len(stats.Completed))
	}
	if stats.Ranges[5].Count != 1 || stats.Ranges[9].Count != 1 {
		t.Fatalf("unexpected bands %+v", stats.Ranges)
	}
	if stats.Ranges[5].Percentage != 50 || stats.Ranges[9].Percentage != 50 {
		t.Fatalf("unexpected band percentages %+v", stats.Ranges)
	}

	result, err := service.GetParticipantResult(ctx, quiz.ID, "bob@example.com")
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Score.Count != 1 || result.Score.Percentage != 50 {
		t.Fatalf("unexpected score %+v", result.Score)
	}

	if _, err := service.GetParticipantResult(ctx, quiz.ID, "carol@example.com"); !errors.Is(err, domain.ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted for partial participant, got %v", err)
	}

	q := progressQuestion(t, ctx, service, quiz.ID, "dave@example.com")
	if _, err := service.SubmitAnswer(ctx, quiz.ID, "dave@example.com", q.ID, q.Answers[0].ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := store.InsertSubmission(ctx, domain.Submission{
		Participant: "dave@example.com",
		QuizID:      quiz.ID,
		QuestionID:  q.ID,
		AnswerID:    q.Answers[1].ID,
	}); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected duplicate rejection from the unique constraint, got %v", err)
	}

	if err := service.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := service.GetQuizStatistics(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected deleted quiz to be gone, got %v", err)
	}
}

func answer(t *testing.T, ctx context.Context, service *app.QuizService, quizID int64, participant string, texts []string) {
	t.Helper()
	for _, text := range texts {
		q := progressQuestion(t, ctx, service, quizID, participant)
		var answerID int64
		for _, a := range q.Answers {
			if a.Text == text {
				answerID = a.ID
			}
		}
		if answerID == 0 {
			t.Fatalf("answer %q not on question %q", text, q.Text)
		}
		if _, err := service.SubmitAnswer(ctx, quizID, participant, q.ID, answerID); err != nil {
			t.Fatalf("submit %s: %v", participant, err)
		}
	}
}

func progressQuestion(t *testing.T, ctx context.Context, service *app.QuizService, quizID int64, participant string) domain.Question {
	t.Helper()
	progress, err := service.NextQuestionOrCompletion(ctx, quizID, participant)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if progress.Question == nil {
		t.Fatalf("%s has no question left", participant)
	}
	return *progress.Question
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		skipWithoutDaemon(t, err)
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		skipWithoutDaemon(t, err)
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func sampleDraft() domain.QuizDraft {
	return domain.QuizDraft{
		Name: "General knowledge",
		Questions: []domain.QuestionDraft{
			{Text: "What is 2 + 2?", Answers: []string{"3", "4", "5"}, Correct: 1},
			{Text: "Capital of France?", Answers: []string{"Paris", "Rome"}, Correct: 0},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func skipWithoutDaemon(t *testing.T, err error) {
	t.Helper()
	if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
		t.Skipf("docker not available: %v", err)
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
