// Package leaderboard は試行履歴からランキングを導出する。
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/hitoshi/timestop/internal/model"
)

// unknownUsername はユーザー名を解決できなかった場合の表示名。
const unknownUsername = "Unknown"

// ResultLister は全試行履歴の読み取りインターフェース。
// repository.GameResultRepositoryの部分集合として定義する。
type ResultLister interface {
	ListAll(ctx context.Context) ([]*model.GameResult, error)
}

// UsernameResolver はユーザー名解決の読み取り専用インターフェース。
// リーダーボードはユーザーストアを直接参照せず、このポートにのみ依存する。
type UsernameResolver interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Service はリーダーボードの集計を提供する。
type Service struct {
	results      ResultLister
	users        UsernameResolver
	defaultLimit int
}

// NewService はServiceを生成する。
// defaultLimitが0以下の場合は10を使用する。
func NewService(results ResultLister, users UsernameResolver, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &Service{
		results:      results,
		users:        users,
		defaultLimit: defaultLimit,
	}
}

// Leaderboard は平均偏差の昇順で上位エントリを返す。
// 2番目の戻り値は全プレイヤー数。
func (s *Service) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, int, error) {
	entries, err := s.buildEntries(ctx)
	if err != nil {
		return nil, 0, err
	}

	total := len(entries)
	if len(entries) > s.defaultLimit {
		entries = entries[:s.defaultLimit]
	}
	return entries, total, nil
}

// DetailedLeaderboard はページネーション付きのリーダーボードを返す。
// limit・offsetが負の場合は0に丸め、範囲外のoffsetは空のページを返す。
func (s *Service) DetailedLeaderboard(ctx context.Context, limit, offset int) (*model.DetailedLeaderboard, error) {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.buildEntries(ctx)
	if err != nil {
		return nil, err
	}

	total := len(entries)

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &model.DetailedLeaderboard{
		Entries:      entries[start:end],
		TotalPlayers: total,
		Limit:        limit,
		Offset:       offset,
		HasMore:      offset+limit < total,
	}, nil
}

// buildEntries は全履歴からエントリを構築し、平均偏差の昇順で並べる。
// 同値の順位は履歴の列挙順（初回記録順）を保つ安定ソート。
func (s *Service) buildEntries(ctx context.Context) ([]model.LeaderboardEntry, error) {
	results, err := s.results.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list game results: %w", err)
	}

	entries := make([]model.LeaderboardEntry, 0, len(results))
	for _, result := range results {
		if result.TotalGames() == 0 {
			continue
		}

		entries = append(entries, model.LeaderboardEntry{
			UserID:           result.UserID,
			Username:         s.resolveUsername(ctx, result.UserID),
			TotalGames:       result.TotalGames(),
			AverageDeviation: result.AverageDeviation(),
			BestDeviation:    result.BestDeviation,
			TotalScore:       result.TotalScore(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AverageDeviation < entries[j].AverageDeviation
	})

	return entries, nil
}

// resolveUsername はユーザー名を解決する。解決できない場合は"Unknown"を返す。
func (s *Service) resolveUsername(ctx context.Context, userID string) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return unknownUsername
	}
	return user.Username
}
