// Package auth はユーザー登録・ログインとJWTトークン管理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/timestop/internal/model"
	"github.com/hitoshi/timestop/internal/repository"
)

// maxUsernameLength はユーザー名の最大長。
const maxUsernameLength = 50

// AuthResult は登録・ログインの結果を表す。
type AuthResult struct {
	User  *model.User
	Token string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokens    *TokenService
	sanitizer *bluemonday.Policy
}

// NewService はServiceを生成する。
// ユーザー名はリーダーボードにそのまま表示されるため、
// StrictPolicyで全HTMLタグを除去してから保存する。
func NewService(userRepo repository.UserRepository, tokens *TokenService) *Service {
	return &Service{
		userRepo:  userRepo,
		tokens:    tokens,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Register は新規ユーザーを登録し、認証トークンを発行する。
// ユーザー名が既に使用されている場合はエラーを返す。
func (s *Service) Register(ctx context.Context, username string) (*AuthResult, error) {
	username, err := s.normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError(username)
	}

	user, err := s.createUser(ctx, username)
	if err != nil {
		return nil, err
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueFor(user)
}

// Login はユーザー名でログインし、認証トークンを発行する。
// 未登録のユーザー名は自動的に登録する。
func (s *Service) Login(ctx context.Context, username string) (*AuthResult, error) {
	username, err := s.normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		user, err = s.createUser(ctx, username)
		if err != nil {
			return nil, err
		}
		slog.Info("user auto-registered on login",
			slog.String("user_id", user.ID),
			slog.String("username", user.Username),
		)
	}

	return s.issueFor(user)
}

// ListUsers は全ユーザーを登録順で返す。
func (s *Service) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// normalizeUsername はユーザー名からHTMLタグを除去し、前後の空白を取り除く。
// 除去後に空になった場合や長すぎる場合はエラーを返す。
func (s *Service) normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(s.sanitizer.Sanitize(username))
	if username == "" {
		return "", model.NewInvalidUsernameError("ユーザー名が空です")
	}
	if len(username) > maxUsernameLength {
		return "", model.NewInvalidUsernameError("ユーザー名が長すぎます")
	}
	return username, nil
}

// createUser はユーザーを作成して永続化する。
func (s *Service) createUser(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// issueFor はユーザーに認証トークンを発行する。
func (s *Service) issueFor(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.IssueAuthToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue auth token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
