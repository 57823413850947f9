package history

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"ratemate/internal/config"
	"ratemate/internal/models"
)

func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis-backed history tests")
	}
	store, err := NewRedisStore(config.RedisConfig{Addr: addr}, 20, time.Minute)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSessionID(t *testing.T) string {
	t.Helper()
	id := fmt.Sprintf("test-%s-%d", t.Name(), time.Now().UnixNano())
	return id
}

func TestRedisStoreGetUnknownSession(t *testing.T) {
	store := newRedisTestStore(t)
	turns, err := store.Get(context.Background(), testSessionID(t))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(turns))
	}
}

func TestRedisStoreAppendAndGet(t *testing.T) {
	store := newRedisTestStore(t)
	ctx := context.Background()
	session := testSessionID(t)
	defer store.client.Del(ctx, historyKeyPrefix+session)

	err := store.Append(ctx, session,
		models.Turn{Role: models.RoleUser, Content: "hello"},
		models.Turn{Role: models.RoleAssistant, Content: "hi"},
	)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	turns, err := store.Get(ctx, session)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != models.RoleUser || turns[0].Content != "hello" {
		t.Fatalf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != models.RoleAssistant || turns[1].Content != "hi" {
		t.Fatalf("unexpected second turn: %+v", turns[1])
	}
}

func TestRedisStoreTrimsToCap(t *testing.T) {
	store := newRedisTestStore(t)
	ctx := context.Background()
	session := testSessionID(t)
	defer store.client.Del(ctx, historyKeyPrefix+session)

	for i := 1; i <= 15; i++ {
		err := store.Append(ctx, session,
			models.Turn{Role: models.RoleUser, Content: fmt.Sprintf("question %d", i)},
			models.Turn{Role: models.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	turns, err := store.Get(ctx, session)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(turns) != 20 {
		t.Fatalf("expected 20 turns after trim, got %d", len(turns))
	}
	if turns[0].Content != "question 6" {
		t.Fatalf("expected oldest turn to be question 6, got %q", turns[0].Content)
	}
	if turns[19].Content != "answer 15" {
		t.Fatalf("expected newest turn to be answer 15, got %q", turns[19].Content)
	}
}

func TestRedisStoreRefreshesTTL(t *testing.T) {
	store := newRedisTestStore(t)
	ctx := context.Background()
	session := testSessionID(t)
	defer store.client.Del(ctx, historyKeyPrefix+session)

	if err := store.Append(ctx, session, models.Turn{Role: models.RoleUser, Content: "x"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	ttl, err := store.client.TTL(ctx, historyKeyPrefix+session).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl within the configured minute, got %v", ttl)
	}
}

func TestRedisStoreRequiresAddr(t *testing.T) {
	if _, err := NewRedisStore(config.RedisConfig{}, 20, time.Minute); err == nil {
		t.Fatalf("expected error without addr")
	}
}
