package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/timestop/internal/model"
)

// GameServiceInterface はゲームハンドラーが必要とするサービスインターフェース。
type GameServiceInterface interface {
	// Start は新しいゲームセッションを開始する。
	Start(ctx context.Context, userID string) (*model.GameSession, error)
	// Stop はセッションを停止し、採点結果を返す。
	Stop(ctx context.Context, userID string) (*model.GameStopResult, error)
	// UserResults はユーザーの戦績サマリーを返す。
	UserResults(ctx context.Context, userID string) (*model.UserResults, error)
}

// GameHandler はゲームセッション関連のHTTPハンドラー。
type GameHandler struct {
	service GameServiceInterface
}

// NewGameHandler はGameHandlerを生成する。
func NewGameHandler(service GameServiceInterface) *GameHandler {
	return &GameHandler{service: service}
}

// startResponse はセッション開始のAPIレスポンス。
// 時刻はUnixミリ秒で返す。
type startResponse struct {
	Message      string `json:"message"`
	StartTime    int64  `json:"startTime"`
	ExpiresAt    int64  `json:"expiresAt"`
	SessionToken string `json:"sessionToken"`
}

// stopResponse はセッション停止のAPIレスポンス。
// 集計値は当該試行を含む全履歴に対する値。
type stopResponse struct {
	Message          string `json:"message"`
	ElapsedTime      int64  `json:"elapsedTime"`
	TargetTime       int64  `json:"targetTime"`
	Deviation        int64  `json:"deviation"`
	Scored           int    `json:"scored"`
	TotalScore       int    `json:"totalScore"`
	TotalGames       int    `json:"totalGames"`
	AverageDeviation int64  `json:"averageDeviation"`
	BestDeviation    int64  `json:"bestDeviation"`
}

// resultsResponse はユーザー戦績のAPIレスポンス。
type resultsResponse struct {
	UserID           string  `json:"userId"`
	TotalGames       int     `json:"totalGames"`
	AverageDeviation int64   `json:"averageDeviation"`
	BestDeviation    int64   `json:"bestDeviation"`
	TotalScore       int     `json:"totalScore"`
	Deviations       []int64 `json:"deviations"`
	Scores           []int   `json:"scores"`
}

// Start はゲームセッションの開始を処理する。
// POST /api/game/{userId}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	session, err := h.service.Start(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, startResponse{
		Message:      "Game started",
		StartTime:    session.StartTime.UnixMilli(),
		ExpiresAt:    session.ExpiresAt.UnixMilli(),
		SessionToken: session.SessionToken,
	})
}

// Stop はゲームセッションの停止と採点を処理する。
// POST /api/game/{userId}/stop
func (h *GameHandler) Stop(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	result, err := h.service.Stop(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stopResponse{
		Message:          "Game stopped",
		ElapsedTime:      result.ElapsedTime,
		TargetTime:       result.TargetTime,
		Deviation:        result.Deviation,
		Scored:           result.Scored,
		TotalScore:       result.TotalScore,
		TotalGames:       result.TotalGames,
		AverageDeviation: result.AverageDeviation,
		BestDeviation:    result.BestDeviation,
	})
}

// Results はユーザーの戦績サマリーを返す。
// GET /api/game/{userId}
func (h *GameHandler) Results(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	results, err := h.service.UserResults(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsResponse{
		UserID:           results.UserID,
		TotalGames:       results.TotalGames,
		AverageDeviation: results.AverageDeviation,
		BestDeviation:    results.BestDeviation,
		TotalScore:       results.TotalScore,
		Deviations:       results.Deviations,
		Scores:           results.Scores,
	})
}
