package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/timestop/internal/model"
)

// MemoryUserRepo はインメモリのユーザーリポジトリ。
// 単一プロセス内での利用とテストを想定し、RWMutexで保護する。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User
	order []string // 登録順を保持する
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[string]*model.User),
	}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if r.users[id].Username == username {
			copied := *r.users[id]
			return &copied, nil
		}
	}
	return nil, nil
}

// Create はユーザーを作成する。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *user
	r.users[user.ID] = &copied
	r.order = append(r.order, user.ID)
	return nil
}

// List は全ユーザーを登録順で返す。
func (r *MemoryUserRepo) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.order))
	for _, id := range r.order {
		copied := *r.users[id]
		users = append(users, &copied)
	}
	return users, nil
}

// compile-time interface check
var _ UserRepository = (*MemoryUserRepo)(nil)
