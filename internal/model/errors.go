// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, game, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeNoActiveSession      = "NO_ACTIVE_SESSION"
	ErrCodeSessionExpired       = "SESSION_EXPIRED"
	ErrCodeSessionAlreadyActive = "SESSION_ALREADY_ACTIVE"
	ErrCodeNoResults            = "NO_RESULTS"
	ErrCodeInvalidUsername      = "INVALID_USERNAME"
	ErrCodeUsernameTaken        = "USERNAME_TAKEN"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
)

// NewNoActiveSessionError は進行中セッションが存在しない場合のエラーを生成する。
func NewNoActiveSessionError() *APIError {
	return &APIError{
		Code:     ErrCodeNoActiveSession,
		Message:  "進行中のゲームセッションがありません。",
		Category: "game",
		Action:   "先にゲームを開始してください。",
	}
}

// NewSessionExpiredError はセッションが有効期限を超過した場合のエラーを生成する。
func NewSessionExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionExpired,
		Message:  "ゲームセッションの有効期限が切れています。",
		Category: "game",
		Action:   "新しいゲームを開始してください。",
	}
}

// NewSessionAlreadyActiveError は未期限のセッションが既に存在する場合のエラーを生成する。
func NewSessionAlreadyActiveError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionAlreadyActive,
		Message:  "進行中のゲームセッションが既に存在します。",
		Category: "game",
		Action:   "現在のセッションを停止してから新しいゲームを開始してください。",
	}
}

// NewNoResultsError はゲーム履歴が存在しない場合のエラーを生成する。
func NewNoResultsError() *APIError {
	return &APIError{
		Code:     ErrCodeNoResults,
		Message:  "ゲーム履歴が見つかりません。",
		Category: "game",
		Action:   "最低1回ゲームをプレイしてください。",
	}
}

// NewInvalidUsernameError はユーザー名が無効な場合のエラーを生成する。
func NewInvalidUsernameError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUsername,
		Message:  fmt.Sprintf("無効なユーザー名です: %s", reason),
		Category: "validation",
		Action:   "1文字以上50文字以内のユーザー名を指定してください。",
	}
}

// NewUsernameTakenError はユーザー名が既に使用されている場合のエラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("ユーザー名は既に使用されています: %s", username),
		Category: "auth",
		Action:   "別のユーザー名で登録してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
