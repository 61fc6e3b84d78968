package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/timestop/internal/model"
)

func TestMemoryGameSessionRepo_SaveAndFind(t *testing.T) {
	repo := NewMemoryGameSessionRepo()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := &model.GameSession{
		UserID:       "user-1",
		StartTime:    now,
		ExpiresAt:    now.Add(30 * time.Minute),
		SessionToken: "token-abc",
	}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	found, err := repo.FindByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindByUserID failed: %v", err)
	}
	if found == nil {
		t.Fatal("expected session, got nil")
	}
	if found.SessionToken != "token-abc" {
		t.Errorf("SessionToken = %q, want %q", found.SessionToken, "token-abc")
	}
}

func TestMemoryGameSessionRepo_Find_NotFound(t *testing.T) {
	repo := NewMemoryGameSessionRepo()

	found, err := repo.FindByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FindByUserID failed: %v", err)
	}
	if found != nil {
		t.Errorf("found = %+v, want nil", found)
	}
}

func TestMemoryGameSessionRepo_Save_ReplacesExisting(t *testing.T) {
	repo := NewMemoryGameSessionRepo()
	ctx := context.Background()

	now := time.Now()
	repo.Save(ctx, &model.GameSession{UserID: "user-1", StartTime: now, SessionToken: "old"})
	repo.Save(ctx, &model.GameSession{UserID: "user-1", StartTime: now.Add(time.Hour), SessionToken: "new"})

	found, err := repo.FindByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindByUserID failed: %v", err)
	}
	if found.SessionToken != "new" {
		t.Errorf("SessionToken = %q, want %q", found.SessionToken, "new")
	}
}

func TestMemoryGameSessionRepo_Delete_IsIdempotent(t *testing.T) {
	repo := NewMemoryGameSessionRepo()
	ctx := context.Background()

	repo.Save(ctx, &model.GameSession{UserID: "user-1"})

	if err := repo.DeleteByUserID(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteByUserID failed: %v", err)
	}
	// 存在しないセッションの削除もエラーにならない
	if err := repo.DeleteByUserID(ctx, "user-1"); err != nil {
		t.Errorf("second delete failed: %v", err)
	}

	found, _ := repo.FindByUserID(ctx, "user-1")
	if found != nil {
		t.Errorf("found = %+v, want nil", found)
	}
}
