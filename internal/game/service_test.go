package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/timestop/internal/model"
	"github.com/hitoshi/timestop/internal/repository"
)

// --- モック定義 ---

type mockSessionRepo struct {
	findFn   func(ctx context.Context, userID string) (*model.GameSession, error)
	saveFn   func(ctx context.Context, session *model.GameSession) error
	deleteFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) FindByUserID(ctx context.Context, userID string) (*model.GameSession, error) {
	if m.findFn != nil {
		return m.findFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockSessionRepo) Save(ctx context.Context, session *model.GameSession) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

type mockResultRepo struct {
	findFn    func(ctx context.Context, userID string) (*model.GameResult, error)
	appendFn  func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error)
	listAllFn func(ctx context.Context) ([]*model.GameResult, error)
}

func (m *mockResultRepo) FindByUserID(ctx context.Context, userID string) (*model.GameResult, error) {
	if m.findFn != nil {
		return m.findFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockResultRepo) Append(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
	if m.appendFn != nil {
		return m.appendFn(ctx, userID, deviation, score)
	}
	return nil, nil
}

func (m *mockResultRepo) ListAll(ctx context.Context) ([]*model.GameResult, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

type mockTokenIssuer struct {
	mintFn func(userID string, startTime time.Time) (string, error)
}

func (m *mockTokenIssuer) MintSessionToken(userID string, startTime time.Time) (string, error) {
	if m.mintFn != nil {
		return m.mintFn(userID, startTime)
	}
	return "test-token", nil
}

type mockMetrics struct {
	started int
	stopped int
	scored  int
	expired int
}

func (m *mockMetrics) RecordGameStarted() { m.started++ }
func (m *mockMetrics) RecordGameStopped(deviationMs int64, scored bool) {
	m.stopped++
	if scored {
		m.scored++
	}
}
func (m *mockMetrics) RecordSessionExpired() { m.expired++ }

var _ repository.GameSessionRepository = (*mockSessionRepo)(nil)
var _ repository.GameResultRepository = (*mockResultRepo)(nil)

// defaultConfig はテスト用の標準設定（目標10秒、許容偏差500ms、TTL30分）。
func defaultConfig() Config {
	return Config{
		TargetTime:          10 * time.Second,
		AcceptableDeviation: 500 * time.Millisecond,
		SessionTTL:          30 * time.Minute,
	}
}

// newTestService は固定時刻で動作するServiceを生成する。
// metricsがnilの場合は型付きnilがインターフェースに入らないようにする。
func newTestService(sessions *mockSessionRepo, results *mockResultRepo, metrics *mockMetrics, now time.Time) *Service {
	var recorder MetricsRecorder
	if metrics != nil {
		recorder = metrics
	}
	svc := NewService(sessions, results, &mockTokenIssuer{}, recorder, defaultConfig())
	svc.now = func() time.Time { return now }
	return svc
}

// --- Start ---

func TestService_Start_CreatesSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var saved *model.GameSession
	sessions := &mockSessionRepo{
		saveFn: func(ctx context.Context, session *model.GameSession) error {
			saved = session
			return nil
		},
	}
	metrics := &mockMetrics{}
	svc := newTestService(sessions, &mockResultRepo{}, metrics, now)

	session, err := svc.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if session.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", session.UserID, "user-1")
	}
	if !session.StartTime.Equal(now) {
		t.Errorf("StartTime = %v, want %v", session.StartTime, now)
	}
	if !session.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want %v", session.ExpiresAt, now.Add(30*time.Minute))
	}
	if session.SessionToken != "test-token" {
		t.Errorf("SessionToken = %q, want %q", session.SessionToken, "test-token")
	}
	if saved == nil {
		t.Fatal("session was not saved")
	}
	if metrics.started != 1 {
		t.Errorf("started metric = %d, want 1", metrics.started)
	}
}

func TestService_Start_RejectsActiveSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sessions := &mockSessionRepo{
		findFn: func(ctx context.Context, userID string) (*model.GameSession, error) {
			return &model.GameSession{
				UserID:    userID,
				StartTime: now.Add(-1 * time.Minute),
				ExpiresAt: now.Add(29 * time.Minute),
			}, nil
		},
	}
	svc := newTestService(sessions, &mockResultRepo{}, nil, now)

	_, err := svc.Start(context.Background(), "user-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeSessionAlreadyActive {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeSessionAlreadyActive)
	}
}

func TestService_Start_ReplacesExpiredLeftoverSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 期限切れのセッションが残っている場合は新しいセッションで置き換える
	var saved *model.GameSession
	sessions := &mockSessionRepo{
		findFn: func(ctx context.Context, userID string) (*model.GameSession, error) {
			return &model.GameSession{
				UserID:    userID,
				StartTime: now.Add(-2 * time.Hour),
				ExpiresAt: now.Add(-90 * time.Minute),
			}, nil
		},
		saveFn: func(ctx context.Context, session *model.GameSession) error {
			saved = session
			return nil
		},
	}
	svc := newTestService(sessions, &mockResultRepo{}, nil, now)

	session, err := svc.Start(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if saved == nil || !saved.StartTime.Equal(now) {
		t.Errorf("expected new session to be saved, got %+v", saved)
	}
	if !session.ExpiresAt.After(now) {
		t.Errorf("new session should not be expired")
	}
}

// --- Stop ---

// stopAt はstartからelapsed経過した時点でStopを呼ぶテストヘルパー。
func stopAt(t *testing.T, elapsed time.Duration, appendFn func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error)) (*model.GameStopResult, *mockMetrics, error) {
	t.Helper()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start.Add(elapsed)

	sessions := &mockSessionRepo{
		findFn: func(ctx context.Context, userID string) (*model.GameSession, error) {
			return &model.GameSession{
				UserID:    userID,
				StartTime: start,
				ExpiresAt: start.Add(30 * time.Minute),
			}, nil
		},
	}
	results := &mockResultRepo{appendFn: appendFn}
	metrics := &mockMetrics{}
	svc := newTestService(sessions, results, metrics, now)

	result, err := svc.Stop(context.Background(), "user-1")
	return result, metrics, err
}

func TestService_Stop_ExactTargetScores(t *testing.T) {
	result, metrics, err := stopAt(t, 10*time.Second,
		func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
			return &model.GameResult{
				UserID:        userID,
				Deviations:    []int64{deviation},
				Scores:        []int{score},
				BestDeviation: deviation,
			}, nil
		})
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if result.ElapsedTime != 10000 {
		t.Errorf("ElapsedTime = %d, want 10000", result.ElapsedTime)
	}
	if result.Deviation != 0 {
		t.Errorf("Deviation = %d, want 0", result.Deviation)
	}
	if result.Scored != 1 {
		t.Errorf("Scored = %d, want 1", result.Scored)
	}
	if metrics.stopped != 1 || metrics.scored != 1 {
		t.Errorf("metrics = %+v, want stopped=1 scored=1", metrics)
	}
}

func TestService_Stop_BoundaryDeviationScores(t *testing.T) {
	// 偏差ちょうど500msは得点（境界を含む）
	result, _, err := stopAt(t, 10500*time.Millisecond,
		func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
			return &model.GameResult{UserID: userID, Deviations: []int64{deviation}, Scores: []int{score}, BestDeviation: deviation}, nil
		})
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if result.Deviation != 500 {
		t.Errorf("Deviation = %d, want 500", result.Deviation)
	}
	if result.Scored != 1 {
		t.Errorf("Scored = %d, want 1", result.Scored)
	}
}

func TestService_Stop_BeyondBoundaryDoesNotScore(t *testing.T) {
	result, metrics, err := stopAt(t, 10600*time.Millisecond,
		func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
			return &model.GameResult{UserID: userID, Deviations: []int64{deviation}, Scores: []int{score}, BestDeviation: deviation}, nil
		})
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if result.Deviation != 600 {
		t.Errorf("Deviation = %d, want 600", result.Deviation)
	}
	if result.Scored != 0 {
		t.Errorf("Scored = %d, want 0", result.Scored)
	}
	if metrics.scored != 0 {
		t.Errorf("scored metric = %d, want 0", metrics.scored)
	}
}

func TestService_Stop_EarlyStopUsesAbsoluteDeviation(t *testing.T) {
	// 目標より早く止めた場合も偏差は絶対値
	result, _, err := stopAt(t, 9500*time.Millisecond,
		func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
			return &model.GameResult{UserID: userID, Deviations: []int64{deviation}, Scores: []int{score}, BestDeviation: deviation}, nil
		})
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if result.Deviation != 500 {
		t.Errorf("Deviation = %d, want 500", result.Deviation)
	}
	if result.Scored != 1 {
		t.Errorf("Scored = %d, want 1", result.Scored)
	}
}

func TestService_Stop_ReturnsWholeHistoryAggregates(t *testing.T) {
	// 集計値は当該試行を含む全履歴に対して計算される
	result, _, err := stopAt(t, 10200*time.Millisecond,
		func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
			return &model.GameResult{
				UserID:        userID,
				Deviations:    []int64{100, 700, deviation},
				Scores:        []int{1, 0, score},
				BestDeviation: 100,
			}, nil
		})
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if result.TotalGames != 3 {
		t.Errorf("TotalGames = %d, want 3", result.TotalGames)
	}
	if result.TotalScore != 2 {
		t.Errorf("TotalScore = %d, want 2", result.TotalScore)
	}
	// (100+700+200)/3 = 333.33 -> 333
	if result.AverageDeviation != 333 {
		t.Errorf("AverageDeviation = %d, want 333", result.AverageDeviation)
	}
	if result.BestDeviation != 100 {
		t.Errorf("BestDeviation = %d, want 100", result.BestDeviation)
	}
}

func TestService_Stop_NoSession(t *testing.T) {
	svc := newTestService(&mockSessionRepo{}, &mockResultRepo{}, nil, time.Now())

	_, err := svc.Stop(context.Background(), "user-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNoActiveSession {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeNoActiveSession)
	}
}

func TestService_Stop_ExpiredSessionIsDeleted(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start.Add(31 * time.Minute)

	deleted := false
	sessions := &mockSessionRepo{
		findFn: func(ctx context.Context, userID string) (*model.GameSession, error) {
			return &model.GameSession{
				UserID:    userID,
				StartTime: start,
				ExpiresAt: start.Add(30 * time.Minute),
			}, nil
		},
		deleteFn: func(ctx context.Context, userID string) error {
			deleted = true
			return nil
		},
	}
	appended := false
	results := &mockResultRepo{
		appendFn: func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
			appended = true
			return nil, nil
		},
	}
	metrics := &mockMetrics{}
	svc := newTestService(sessions, results, metrics, now)

	_, err := svc.Stop(context.Background(), "user-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeSessionExpired {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeSessionExpired)
	}
	if !deleted {
		t.Error("expired session should be deleted")
	}
	if appended {
		t.Error("expired session must not be recorded as an attempt")
	}
	if metrics.expired != 1 {
		t.Errorf("expired metric = %d, want 1", metrics.expired)
	}
}

func TestService_Stop_DeletesSessionAfterScoring(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start.Add(10 * time.Second)

	deleted := false
	sessions := &mockSessionRepo{
		findFn: func(ctx context.Context, userID string) (*model.GameSession, error) {
			return &model.GameSession{
				UserID:    userID,
				StartTime: start,
				ExpiresAt: start.Add(30 * time.Minute),
			}, nil
		},
		deleteFn: func(ctx context.Context, userID string) error {
			deleted = true
			return nil
		},
	}
	results := &mockResultRepo{
		appendFn: func(ctx context.Context, userID string, deviation int64, score int) (*model.GameResult, error) {
			return &model.GameResult{UserID: userID, Deviations: []int64{deviation}, Scores: []int{score}, BestDeviation: deviation}, nil
		},
	}
	svc := newTestService(sessions, results, nil, now)

	if _, err := svc.Stop(context.Background(), "user-1"); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !deleted {
		t.Error("session should be deleted after successful stop")
	}
}

// --- UserResults ---

func TestService_UserResults_NoHistory(t *testing.T) {
	svc := newTestService(&mockSessionRepo{}, &mockResultRepo{}, nil, time.Now())

	_, err := svc.UserResults(context.Background(), "user-1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNoResults {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeNoResults)
	}
}

func TestService_UserResults_ReturnsSummary(t *testing.T) {
	results := &mockResultRepo{
		findFn: func(ctx context.Context, userID string) (*model.GameResult, error) {
			return &model.GameResult{
				UserID:        userID,
				Deviations:    []int64{300, 100},
				Scores:        []int{1, 1},
				BestDeviation: 100,
			}, nil
		},
	}
	svc := newTestService(&mockSessionRepo{}, results, nil, time.Now())

	summary, err := svc.UserResults(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UserResults failed: %v", err)
	}

	if summary.TotalGames != 2 {
		t.Errorf("TotalGames = %d, want 2", summary.TotalGames)
	}
	if summary.AverageDeviation != 200 {
		t.Errorf("AverageDeviation = %d, want 200", summary.AverageDeviation)
	}
	if summary.BestDeviation != 100 {
		t.Errorf("BestDeviation = %d, want 100", summary.BestDeviation)
	}
	if summary.TotalScore != 2 {
		t.Errorf("TotalScore = %d, want 2", summary.TotalScore)
	}
	if len(summary.Deviations) != 2 || len(summary.Scores) != 2 {
		t.Errorf("history length mismatch: deviations=%d scores=%d", len(summary.Deviations), len(summary.Scores))
	}
}
