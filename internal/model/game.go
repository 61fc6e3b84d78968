// Package model はドメインモデルを定義する。
package model

import (
	"math"
	"time"
)

// GameSession は進行中のタイマーセッションを表す。
// ユーザーごとに同時に1件のみ存在できる。
// 停止（成功・期限切れ検出）時に削除され、更新されることはない。
type GameSession struct {
	UserID       string
	StartTime    time.Time
	ExpiresAt    time.Time
	SessionToken string
}

// GameResult はユーザーの全試行履歴を表す。
// DeviationsとScoresは同一インデックスで対応する追記専用の並列配列。
// BestDeviationは記録された全偏差の最小値を常に保持する。
type GameResult struct {
	UserID        string
	Deviations    []int64 // 各試行の偏差（ミリ秒、絶対値）
	Scores        []int   // 各試行のスコア（0または1）
	BestDeviation int64
}

// TotalGames は試行回数を返す。
func (r *GameResult) TotalGames() int {
	return len(r.Deviations)
}

// TotalScore は全試行のスコア合計を返す。
func (r *GameResult) TotalScore() int {
	total := 0
	for _, s := range r.Scores {
		total += s
	}
	return total
}

// AverageDeviation は偏差の平均を四捨五入して返す。
// 試行が1件もない場合は0を返す。
func (r *GameResult) AverageDeviation() int64 {
	if len(r.Deviations) == 0 {
		return 0
	}
	var sum int64
	for _, d := range r.Deviations {
		sum += d
	}
	return int64(math.Round(float64(sum) / float64(len(r.Deviations))))
}

// GameStopResult はセッション停止時の採点結果を表す。
// 集計値（TotalScore以降）は当該試行を含む全履歴に対して計算される。
type GameStopResult struct {
	ElapsedTime      int64 // 経過時間（ミリ秒）
	TargetTime       int64 // 目標時間（ミリ秒）
	Deviation        int64 // 目標時間との偏差（ミリ秒、絶対値）
	Scored           int   // この試行の得点（0または1）
	TotalScore       int
	TotalGames       int
	AverageDeviation int64
	BestDeviation    int64
}

// UserResults はユーザーの戦績サマリーを表す。
type UserResults struct {
	UserID           string
	TotalGames       int
	AverageDeviation int64
	BestDeviation    int64
	TotalScore       int
	Deviations       []int64
	Scores           []int
}
