package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/timestop/internal/model"
)

// PostgresGameResultRepo はPostgreSQLを使用した試行履歴リポジトリ。
// 試行はgame_attemptsテーブルに1行ずつ追記し、履歴・最小偏差は読み出し時に組み立てる。
type PostgresGameResultRepo struct {
	db *sql.DB
}

// NewPostgresGameResultRepo はPostgresGameResultRepoを生成する。
func NewPostgresGameResultRepo(db *sql.DB) *PostgresGameResultRepo {
	return &PostgresGameResultRepo{db: db}
}

// FindByUserID は指定ユーザーの試行履歴を取得する。1件も記録がない場合はnilを返す。
func (r *PostgresGameResultRepo) FindByUserID(ctx context.Context, userID string) (*model.GameResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT deviation_ms, score FROM game_attempts WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query game attempts: %w", err)
	}
	defer rows.Close()

	result, err := scanAttempts(rows, userID)
	if err != nil {
		return nil, err
	}
	if result.TotalGames() == 0 {
		return nil, nil
	}
	return result, nil
}

// Append は試行を1件追記し、更新後の全履歴を返す。
// INSERTと再読み出しを同一トランザクションで行い、並行追記との整合を保つ。
func (r *PostgresGameResultRepo) Append(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO game_attempts (user_id, deviation_ms, score) VALUES ($1, $2, $3)`,
		userID, deviation, score,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert game attempt: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT deviation_ms, score FROM game_attempts WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query game attempts: %w", err)
	}
	result, err := scanAttempts(rows, userID)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// ListAll は全ユーザーの試行履歴を初回記録順で返す。
func (r *PostgresGameResultRepo) ListAll(ctx context.Context) ([]*model.GameResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, deviation_ms, score FROM game_attempts ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query game attempts: %w", err)
	}
	defer rows.Close()

	byUser := make(map[string]*model.GameResult)
	var order []string

	for rows.Next() {
		var userID string
		var deviation int64
		var score int
		if err := rows.Scan(&userID, &deviation, &score); err != nil {
			return nil, fmt.Errorf("failed to scan game attempt: %w", err)
		}

		result, ok := byUser[userID]
		if !ok {
			result = &model.GameResult{UserID: userID, BestDeviation: deviation}
			byUser[userID] = result
			order = append(order, userID)
		}
		result.Deviations = append(result.Deviations, deviation)
		result.Scores = append(result.Scores, score)
		if deviation < result.BestDeviation {
			result.BestDeviation = deviation
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game attempts: %w", err)
	}

	results := make([]*model.GameResult, 0, len(order))
	for _, userID := range order {
		results = append(results, byUser[userID])
	}
	return results, nil
}

// scanAttempts は単一ユーザーの試行行から履歴を組み立てる。
func scanAttempts(rows *sql.Rows, userID string) (*model.GameResult, error) {
	result := &model.GameResult{UserID: userID}
	first := true

	for rows.Next() {
		var deviation int64
		var score int
		if err := rows.Scan(&deviation, &score); err != nil {
			return nil, fmt.Errorf("failed to scan game attempt: %w", err)
		}
		result.Deviations = append(result.Deviations, deviation)
		result.Scores = append(result.Scores, score)
		if first || deviation < result.BestDeviation {
			result.BestDeviation = deviation
			first = false
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game attempts: %w", err)
	}

	return result, nil
}

// compile-time interface check
var _ GameResultRepository = (*PostgresGameResultRepo)(nil)
