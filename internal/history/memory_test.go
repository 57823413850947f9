package history

import (
	"context"
	"fmt"
	"testing"

	"ratemate/internal/models"
)

func TestMemoryStoreGetUnknownSession(t *testing.T) {
	store := NewMemoryStore(20)
	turns, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(turns))
	}
}

func TestMemoryStoreAppendAndGet(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	err := store.Append(ctx, "s1",
		models.Turn{Role: models.RoleUser, Content: "hello"},
		models.Turn{Role: models.RoleAssistant, Content: "hi"},
	)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	turns, err := store.Get(ctx, "s1")
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

func TestMemoryStoreTrimsToCap(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	// 15 exchanges append 30 turns; only the trailing 20 survive.
	for i := 1; i <= 15; i++ {
		err := store.Append(ctx, "s1",
			models.Turn{Role: models.RoleUser, Content: fmt.Sprintf("question %d", i)},
			models.Turn{Role: models.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	turns, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(turns) != 20 {
		t.Fatalf("expected 20 turns after trim, got %d", len(turns))
	}
	// The oldest surviving turn is the question from exchange 6.
	if turns[0].Content != "question 6" {
		t.Fatalf("expected oldest turn to be question 6, got %q", turns[0].Content)
	}
	if turns[19].Content != "answer 15" {
		t.Fatalf("expected newest turn to be answer 15, got %q", turns[19].Content)
	}
	for i := 0; i < 20; i += 2 {
		if turns[i].Role != models.RoleUser || turns[i+1].Role != models.RoleAssistant {
			t.Fatalf("role order broken at index %d", i)
		}
	}
}

func TestMemoryStoreSessionsAreIndependent(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	if err := store.Append(ctx, "a", models.Turn{Role: models.RoleUser, Content: "a1"}); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if err := store.Append(ctx, "b", models.Turn{Role: models.RoleUser, Content: "b1"}); err != nil {
		t.Fatalf("append b: %v", err)
	}

	turnsA, _ := store.Get(ctx, "a")
	turnsB, _ := store.Get(ctx, "b")
	if len(turnsA) != 1 || turnsA[0].Content != "a1" {
		t.Fatalf("unexpected history for a: %+v", turnsA)
	}
	if len(turnsB) != 1 || turnsB[0].Content != "b1" {
		t.Fatalf("unexpected history for b: %+v", turnsB)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(20)
	ctx := context.Background()

	if err := store.Append(ctx, "s1", models.Turn{Role: models.RoleUser, Content: "original"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	turns, _ := store.Get(ctx, "s1")
	turns[0].Content = "mutated"

	again, _ := store.Get(ctx, "s1")
	if again[0].Content != "original" {
		t.Fatalf("stored history mutated through returned slice")
	}
}
