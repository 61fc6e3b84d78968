package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/timestop/internal/model"
)

// MemoryGameSessionRepo はインメモリのセッションリポジトリ。
// ユーザーIDをキーとするマップで、ユーザーごとに最大1件のセッションを保持する。
type MemoryGameSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.GameSession
}

// NewMemoryGameSessionRepo はMemoryGameSessionRepoを生成する。
func NewMemoryGameSessionRepo() *MemoryGameSessionRepo {
	return &MemoryGameSessionRepo{
		sessions: make(map[string]*model.GameSession),
	}
}

// FindByUserID は指定ユーザーの進行中セッションを取得する。存在しない場合はnilを返す。
func (r *MemoryGameSessionRepo) FindByUserID(ctx context.Context, userID string) (*model.GameSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

// Save はセッションを保存する。同一ユーザーの既存セッションは置き換える。
func (r *MemoryGameSessionRepo) Save(ctx context.Context, session *model.GameSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.UserID] = &copied
	return nil
}

// DeleteByUserID は指定ユーザーのセッションを削除する。
func (r *MemoryGameSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
	return nil
}

// compile-time interface check
var _ GameSessionRepository = (*MemoryGameSessionRepo)(nil)
