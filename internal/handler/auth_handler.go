package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/timestop/internal/auth"
	"github.com/hitoshi/timestop/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録し、認証トークンを発行する。
	Register(ctx context.Context, username string) (*auth.AuthResult, error)
	// Login はユーザー名でログインする。未登録のユーザー名は自動登録する。
	Login(ctx context.Context, username string) (*auth.AuthResult, error)
	// ListUsers は全ユーザーを返す。
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// authRequest は登録・ログインリクエストのボディ。
type authRequest struct {
	Username string `json:"username"`
}

// authResponse は登録・ログインのAPIレスポンス。
type authResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// userResponse はユーザー一覧のAPIレスポンスの1要素。
type userResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Register は新規ユーザー登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username, ok := decodeAuthRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Register(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message:  "User registered successfully",
		UserID:   result.User.ID,
		Username: result.User.Username,
		Token:    result.Token,
	})
}

// Login はログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, ok := decodeAuthRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Login(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message:  "Login successful",
		UserID:   result.User.ID,
		Username: result.User.Username,
		Token:    result.Token,
	})
}

// Users は全ユーザー一覧を返す。
// GET /auth/users
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]userResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, userResponse{
			UserID:   user.ID,
			Username: user.Username,
		})
	}
	writeJSON(w, http.StatusOK, responses)
}

// decodeAuthRequest はリクエストボディからユーザー名を取り出す。
// 解析失敗・ユーザー名未指定の場合はエラーレスポンスを書き込み、falseを返す。
func decodeAuthRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return "", false
	}

	if req.Username == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUsernameError("ユーザー名が指定されていません"))
		return "", false
	}

	return req.Username, true
}
