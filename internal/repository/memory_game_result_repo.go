package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/timestop/internal/model"
)

// MemoryGameResultRepo はインメモリの試行履歴リポジトリ。
// 追記とBestDeviation更新を単一ロック下で行い、
// len(Deviations) == len(Scores) の不変条件を保証する。
type MemoryGameResultRepo struct {
	mu      sync.RWMutex
	results map[string]*model.GameResult
	order   []string // 初回記録順を保持する
}

// NewMemoryGameResultRepo はMemoryGameResultRepoを生成する。
func NewMemoryGameResultRepo() *MemoryGameResultRepo {
	return &MemoryGameResultRepo{
		results: make(map[string]*model.GameResult),
	}
}

// FindByUserID は指定ユーザーの試行履歴を取得する。1件も記録がない場合はnilを返す。
func (r *MemoryGameResultRepo) FindByUserID(ctx context.Context, userID string) (*model.GameResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[userID]
	if !ok {
		return nil, nil
	}
	return copyResult(result), nil
}

// Append は試行を1件追記し、更新後の全履歴を返す。
func (r *MemoryGameResultRepo) Append(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, ok := r.results[userID]
	if !ok {
		result = &model.GameResult{
			UserID:        userID,
			BestDeviation: deviation,
		}
		r.results[userID] = result
		r.order = append(r.order, userID)
	}

	result.Deviations = append(result.Deviations, deviation)
	result.Scores = append(result.Scores, score)
	if deviation < result.BestDeviation {
		result.BestDeviation = deviation
	}

	return copyResult(result), nil
}

// ListAll は全ユーザーの試行履歴を初回記録順で返す。
func (r *MemoryGameResultRepo) ListAll(ctx context.Context) ([]*model.GameResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.GameResult, 0, len(r.order))
	for _, userID := range r.order {
		results = append(results, copyResult(r.results[userID]))
	}
	return results, nil
}

// copyResult は内部状態の漏出を防ぐためスライスごと複製する。
func copyResult(src *model.GameResult) *model.GameResult {
	copied := &model.GameResult{
		UserID:        src.UserID,
		Deviations:    make([]int64, len(src.Deviations)),
		Scores:        make([]int, len(src.Scores)),
		BestDeviation: src.BestDeviation,
	}
	copy(copied.Deviations, src.Deviations)
	copy(copied.Scores, src.Scores)
	return copied
}

// compile-time interface check
var _ GameResultRepository = (*MemoryGameResultRepo)(nil)
