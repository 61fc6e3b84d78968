// Package model はドメインモデルを定義する。
package model

import "time"

// User はゲームのプレイヤーを表す。
// パスワードは持たず、ユーザー名のみで識別する。
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
