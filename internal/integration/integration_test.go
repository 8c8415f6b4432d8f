package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"certexam-engine/internal/app"
	"certexam-engine/internal/catalog"
	"certexam-engine/internal/domain"
	pgloader "certexam-engine/internal/infra/postgres"
	pgmigrations "certexam-engine/internal/infra/postgres/migrations"
	infraredis "certexam-engine/internal/infra/redis"
	"certexam-engine/internal/persist"
	"certexam-engine/internal/scoring"
)

func TestExamLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedQuestionSet(t, ctx, pgURL, "pmp-mock", sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	cache := catalog.NewCache(pgloader.NewQuestionLoader(pool), 5*time.Minute)
	questions, err := cache.GetQuestionSet(ctx, "pmp-mock")
	if err != nil {
		t.Fatalf("load question set: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("loaded %d questions, want 3", len(questions))
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	manager := persist.NewManager(infraredis.NewStore(redisClient, 0), zerolog.Nop())

	cfg := domain.ExamConfig{ID: "cfg-1", Mode: domain.ModePractice, ExamType: domain.ExamFullMock}
	start := time.Now().Add(-30 * time.Minute)
	s, err := app.NewSession(cfg, "u1", start)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	s, err = app.Start(s)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for pos, correct := range []bool{true, true, false} {
		selected := questions[pos].CorrectAnswer
		if !correct {
			selected = []int{wrongOption(questions[pos])}
		}
		ans := domain.Answer{
			QuestionID:      questions[pos].ID,
			SelectedOptions: selected,
			Timestamp:       start.Add(time.Duration(pos+1) * time.Minute),
			TimeSpent:       60,
		}
		s, err = app.RecordAnswer(s, pos, ans, questions)
		if err != nil {
			t.Fatalf("record answer %d: %v", pos, err)
		}
	}

	if err := manager.SaveSession(ctx, s, questions); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, loadedQuestions, err := manager.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Answers) != 3 || len(loadedQuestions) != 3 {
		t.Fatalf("loaded session incomplete: %d answers, %d questions", len(loaded.Answers), len(loadedQuestions))
	}

	results, err := app.Finalize(loaded, loadedQuestions, scoring.ConfigFor(cfg), time.Now())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if results.CorrectAnswers != 2 || results.Score != 66.67 {
		t.Fatalf("score = %v with %d correct, want 66.67 with 2", results.Score, results.CorrectAnswers)
	}
	if results.Passed {
		t.Fatalf("66.67 against threshold 70 must fail")
	}

	if err := manager.SaveResults(ctx, results); err != nil {
		t.Fatalf("save results: %v", err)
	}
	stored, err := manager.LoadResults(ctx, s.ID)
	if err != nil {
		t.Fatalf("load results: %v", err)
	}
	if stored.Score != results.Score {
		t.Fatalf("stored score %v != %v", stored.Score, results.Score)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "exam", "POSTGRES_PASSWORD": "exampass", "POSTGRES_DB": "examdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
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
	dsn := fmt.Sprintf("postgres://exam:exampass@%s:%s/examdb?sslmode=disable", host, port.Port())
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
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
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

func seedQuestionSet(t *testing.T, ctx context.Context, dsn, setID string, questions []domain.Question) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal questions: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO question_sets (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, setID, string(data)); err != nil {
		t.Fatalf("insert question set: %v", err)
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			Text:          "A project charter is issued by the...",
			Type:          domain.SingleChoice,
			Options:       []string{"project manager", "sponsor", "team", "PMO"},
			CorrectAnswer: []int{1},
			Domain:        "Process",
			Difficulty:    domain.DifficultyEasy,
		},
		{
			ID:            "q2",
			Text:          "Select the conflict resolution techniques.",
			Type:          domain.MultiSelect,
			Options:       []string{"compromise", "escalate", "collaborate", "ignore"},
			CorrectAnswer: []int{0, 2},
			Domain:        "People",
			Difficulty:    domain.DifficultyMedium,
		},
		{
			ID:            "q3",
			Text:          "Benefits realization is tracked after project close.",
			Type:          domain.TrueFalse,
			Options:       []string{"true", "false"},
			CorrectAnswer: []int{0},
			Domain:        "Business",
			Difficulty:    domain.DifficultyEasy,
		},
	}
}

func wrongOption(q domain.Question) int {
	correct := make(map[int]struct{}, len(q.CorrectAnswer))
	for _, idx := range q.CorrectAnswer {
		correct[idx] = struct{}{}
	}
	for idx := range q.Options {
		if _, ok := correct[idx]; !ok {
			return idx
		}
	}
	return 0
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
