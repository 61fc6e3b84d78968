// Package repository はデータ永続化のインターフェースを定義する。
// インメモリ実装（デフォルト）とPostgreSQL実装を提供し、
// サービス層はどちらにも依存せずインターフェースのみに依存する。
package repository

import (
	"context"

	"github.com/hitoshi/timestop/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// List は全ユーザーを登録順で返す。
	List(ctx context.Context) ([]*model.User, error)
}

// GameSessionRepository は進行中セッションの永続化インターフェース。
// ユーザーごとに同時に1件のみ保持する。
type GameSessionRepository interface {
	// FindByUserID は指定ユーザーの進行中セッションを取得する。
	// 存在しない場合はnilを返す。有効期限の判定は呼び出し側が行う。
	FindByUserID(ctx context.Context, userID string) (*model.GameSession, error)

	// Save はセッションを保存する。同一ユーザーの既存セッションは置き換える。
	Save(ctx context.Context, session *model.GameSession) error

	// DeleteByUserID は指定ユーザーのセッションを削除する。
	// 存在しない場合でもエラーにならない（冪等）。
	DeleteByUserID(ctx context.Context, userID string) error
}

// GameResultRepository は試行履歴の永続化インターフェース。
// 履歴は追記専用で、削除・書き換えは行わない。
type GameResultRepository interface {
	// FindByUserID は指定ユーザーの試行履歴を取得する。
	// 1件も記録がない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.GameResult, error)

	// Append は試行を1件追記し、更新後の全履歴を返す。
	// 履歴が存在しない場合は新規作成する。
	// 追記とBestDeviationの更新は不可分に行われる。
	Append(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error)

	// ListAll は全ユーザーの試行履歴を初回記録順で返す。
	ListAll(ctx context.Context) ([]*model.GameResult, error)
}
