package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/timestop/internal/model"
)

// PostgresGameSessionRepo はPostgreSQLを使用したセッションリポジトリ。
// game_sessionsテーブルはuser_idを主キーとし、DBレベルで
// ユーザーごと1件の不変条件を保証する。
type PostgresGameSessionRepo struct {
	db *sql.DB
}

// NewPostgresGameSessionRepo はPostgresGameSessionRepoを生成する。
func NewPostgresGameSessionRepo(db *sql.DB) *PostgresGameSessionRepo {
	return &PostgresGameSessionRepo{db: db}
}

// FindByUserID は指定ユーザーの進行中セッションを取得する。存在しない場合はnilを返す。
// 有効期限の判定は呼び出し側が行うため、期限切れの行もそのまま返す。
func (r *PostgresGameSessionRepo) FindByUserID(ctx context.Context, userID string) (*model.GameSession, error) {
	session := &model.GameSession{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, session_token, started_at, expires_at
		 FROM game_sessions
		 WHERE user_id = $1`,
		userID,
	).Scan(&session.UserID, &session.SessionToken, &session.StartTime, &session.ExpiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find game session: %w", err)
	}

	return session, nil
}

// Save はセッションを保存する。同一ユーザーの既存セッションは置き換える。
func (r *PostgresGameSessionRepo) Save(ctx context.Context, session *model.GameSession) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_sessions (user_id, session_token, started_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		   session_token = EXCLUDED.session_token,
		   started_at = EXCLUDED.started_at,
		   expires_at = EXCLUDED.expires_at`,
		session.UserID, session.SessionToken, session.StartTime, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save game session: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーのセッションを削除する。
func (r *PostgresGameSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM game_sessions WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete game session: %w", err)
	}
	return nil
}

// compile-time interface check
var _ GameSessionRepository = (*PostgresGameSessionRepo)(nil)
