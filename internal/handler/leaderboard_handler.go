package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/timestop/internal/model"
)

// LeaderboardServiceInterface はリーダーボードハンドラーが必要とするサービスインターフェース。
type LeaderboardServiceInterface interface {
	// Leaderboard は上位エントリと全プレイヤー数を返す。
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, int, error)
	// DetailedLeaderboard はページネーション付きのリーダーボードを返す。
	DetailedLeaderboard(ctx context.Context, limit, offset int) (*model.DetailedLeaderboard, error)
}

// LeaderboardHandler はリーダーボード関連のHTTPハンドラー。
type LeaderboardHandler struct {
	service LeaderboardServiceInterface
}

// NewLeaderboardHandler はLeaderboardHandlerを生成する。
func NewLeaderboardHandler(service LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// leaderboardEntryResponse はリーダーボードの1行のAPIレスポンス。
type leaderboardEntryResponse struct {
	UserID           string `json:"userId"`
	Username         string `json:"username"`
	TotalGames       int    `json:"totalGames"`
	AverageDeviation int64  `json:"averageDeviation"`
	BestDeviation    int64  `json:"bestDeviation"`
	TotalScore       int    `json:"totalScore"`
}

// leaderboardResponse は公開リーダーボードのAPIレスポンス。
type leaderboardResponse struct {
	Leaderboard  []leaderboardEntryResponse `json:"leaderboard"`
	Timestamp    string                     `json:"timestamp"`
	TotalPlayers int                        `json:"totalPlayers"`
}

// detailedLeaderboardResponse は詳細リーダーボードのAPIレスポンス。
type detailedLeaderboardResponse struct {
	Leaderboard  []leaderboardEntryResponse `json:"leaderboard"`
	Timestamp    string                     `json:"timestamp"`
	TotalPlayers int                        `json:"totalPlayers"`
	Limit        int                        `json:"limit"`
	Offset       int                        `json:"offset"`
	HasMore      bool                       `json:"hasMore"`
}

// Leaderboard は公開リーダーボードを返す。認証不要。
// GET /api/leaderboard
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, totalPlayers, err := h.service.Leaderboard(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		Leaderboard:  toEntryResponses(entries),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		TotalPlayers: totalPlayers,
	})
}

// Detailed はページネーション付きの詳細リーダーボードを返す。
// limit・offsetが未指定または不正な場合はデフォルト値（limit=10, offset=0）を使用する。
// GET /api/leaderboard/detailed?limit=10&offset=0
func (h *LeaderboardHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 10)
	offset := parseQueryInt(r, "offset", 0)

	board, err := h.service.DetailedLeaderboard(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detailedLeaderboardResponse{
		Leaderboard:  toEntryResponses(board.Entries),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		TotalPlayers: board.TotalPlayers,
		Limit:        board.Limit,
		Offset:       board.Offset,
		HasMore:      board.HasMore,
	})
}

// toEntryResponses はドメインのエントリをAPIレスポンス形式に変換する。
func toEntryResponses(entries []model.LeaderboardEntry) []leaderboardEntryResponse {
	responses := make([]leaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, leaderboardEntryResponse{
			UserID:           e.UserID,
			Username:         e.Username,
			TotalGames:       e.TotalGames,
			AverageDeviation: e.AverageDeviation,
			BestDeviation:    e.BestDeviation,
			TotalScore:       e.TotalScore,
		})
	}
	return responses
}

// parseQueryInt はクエリパラメータを整数として解析する。
// 未指定・解析失敗の場合はデフォルト値を返す。
func parseQueryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
