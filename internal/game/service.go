// Package game はタイマーセッションの開始・停止と採点のドメインロジックを提供する。
//
// ルール: プレイヤーはセッション開始後、目標時間（10秒）ちょうどで停止することを目指す。
// 経過時間と目標時間の偏差（絶対値）が許容偏差（500ミリ秒）以内なら1点を獲得する。
package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/timestop/internal/model"
	"github.com/hitoshi/timestop/internal/repository"
)

// TokenIssuer はセッショントークン発行のインターフェース。
// トークンの中身はこのパッケージでは解釈せず、そのまま呼び出し側に渡す。
type TokenIssuer interface {
	// MintSessionToken は(userID, startTime)に束縛されたセッショントークンを発行する。
	MintSessionToken(userID string, startTime time.Time) (string, error)
}

// MetricsRecorder はゲームメトリクス収集のインターフェース。
type MetricsRecorder interface {
	RecordGameStarted()
	RecordGameStopped(deviationMs int64, scored bool)
	RecordSessionExpired()
}

// Config はゲームエンジンの設定。
type Config struct {
	TargetTime          time.Duration // 目標時間（デフォルト10秒）
	AcceptableDeviation time.Duration // 得点となる偏差の上限（境界含む）
	SessionTTL          time.Duration // セッションの有効期間
}

// Service はゲームセッションのライフサイクルと採点を提供する。
type Service struct {
	sessions repository.GameSessionRepository
	results  repository.GameResultRepository
	tokens   TokenIssuer
	metrics  MetricsRecorder // nilの場合は記録しない
	config   Config

	// now はテストで時刻を差し替えるためのフック。
	now func() time.Time
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(
	sessions repository.GameSessionRepository,
	results repository.GameResultRepository,
	tokens TokenIssuer,
	metrics MetricsRecorder,
	config Config,
) *Service {
	return &Service{
		sessions: sessions,
		results:  results,
		tokens:   tokens,
		metrics:  metrics,
		config:   config,
		now:      time.Now,
	}
}

// Start は新しいゲームセッションを開始する。
// 未期限のセッションが既に存在する場合はエラーを返す。
// 期限切れのセッションが残っている場合は新しいセッションで置き換える。
func (s *Service) Start(ctx context.Context, userID string) (*model.GameSession, error) {
	existing, err := s.sessions.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find game session: %w", err)
	}

	now := s.now()
	if existing != nil && now.Before(existing.ExpiresAt) {
		return nil, model.NewSessionAlreadyActiveError()
	}

	token, err := s.tokens.MintSessionToken(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	session := &model.GameSession{
		UserID:       userID,
		StartTime:    now,
		ExpiresAt:    now.Add(s.config.SessionTTL),
		SessionToken: token,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save game session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordGameStarted()
	}
	slog.Info("game session started",
		slog.String("user_id", userID),
		slog.Time("expires_at", session.ExpiresAt),
	)

	return session, nil
}

// Stop はゲームセッションを停止し、採点する。
// セッションが存在しない場合・期限切れの場合はエラーを返す。
// 期限切れ検出時は残っているセッションを削除するため、
// 再度Stopを呼ぶと「セッションなし」になる。
func (s *Service) Stop(ctx context.Context, userID string) (*model.GameStopResult, error) {
	session, err := s.sessions.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find game session: %w", err)
	}
	if session == nil {
		return nil, model.NewNoActiveSessionError()
	}

	now := s.now()
	if now.After(session.ExpiresAt) {
		if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		if s.metrics != nil {
			s.metrics.RecordSessionExpired()
		}
		slog.Info("stale game session removed",
			slog.String("user_id", userID),
		)
		return nil, model.NewSessionExpiredError()
	}

	elapsed := now.Sub(session.StartTime).Milliseconds()
	target := s.config.TargetTime.Milliseconds()

	deviation := elapsed - target
	if deviation < 0 {
		deviation = -deviation
	}

	scored := 0
	if deviation <= s.config.AcceptableDeviation.Milliseconds() {
		scored = 1
	}

	result, err := s.results.Append(ctx, userID, deviation, scored)
	if err != nil {
		return nil, fmt.Errorf("failed to append game result: %w", err)
	}

	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to delete game session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordGameStopped(deviation, scored == 1)
	}
	slog.Info("game session stopped",
		slog.String("user_id", userID),
		slog.Int64("deviation_ms", deviation),
		slog.Int("scored", scored),
	)

	return &model.GameStopResult{
		ElapsedTime:      elapsed,
		TargetTime:       target,
		Deviation:        deviation,
		Scored:           scored,
		TotalScore:       result.TotalScore(),
		TotalGames:       result.TotalGames(),
		AverageDeviation: result.AverageDeviation(),
		BestDeviation:    result.BestDeviation,
	}, nil
}

// UserResults は指定ユーザーの戦績サマリーを返す。
// 1件も記録がない場合はNO_RESULTSエラーを返す。
func (s *Service) UserResults(ctx context.Context, userID string) (*model.UserResults, error) {
	result, err := s.results.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find game results: %w", err)
	}
	if result == nil {
		return nil, model.NewNoResultsError()
	}

	return &model.UserResults{
		UserID:           userID,
		TotalGames:       result.TotalGames(),
		AverageDeviation: result.AverageDeviation(),
		BestDeviation:    result.BestDeviation,
		TotalScore:       result.TotalScore(),
		Deviations:       result.Deviations,
		Scores:           result.Scores,
	}, nil
}
