// Package model はドメインモデルを定義する。
package model

// LeaderboardEntry はリーダーボードの1行を表す。
// 保存されるデータではなく、GameResultとユーザー名の参照から都度導出する。
type LeaderboardEntry struct {
	UserID           string
	Username         string
	TotalGames       int
	AverageDeviation int64
	BestDeviation    int64
	TotalScore       int
}

// DetailedLeaderboard はページネーション付きのリーダーボードを表す。
type DetailedLeaderboard struct {
	Entries      []LeaderboardEntry
	TotalPlayers int
	Limit        int
	Offset       int
	HasMore      bool
}
