package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// セッショントークンのaction claim値。認証トークンには付与しない。
const actionGame = "game"

// Claims はこのサービスが発行するJWTのクレームを表す。
type Claims struct {
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	Action    string `json:"action,omitempty"`
	StartTime int64  `json:"startTime,omitempty"` // ゲーム開始時刻（ミリ秒エポック）
	jwt.RegisteredClaims
}

// TokenService はHS256署名のJWT発行・検証を提供する。
// ログイン用の認証トークンと、ゲームセッションに紐づく
// セッショントークンの2種類を発行する。
type TokenService struct {
	secret      []byte
	tokenExpiry time.Duration
	sessionTTL  time.Duration
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string, tokenExpiry, sessionTTL time.Duration) *TokenService {
	return &TokenService{
		secret:      []byte(secret),
		tokenExpiry: tokenExpiry,
		sessionTTL:  sessionTTL,
	}
}

// IssueAuthToken はログイン用の認証トークンを発行する。
func (s *TokenService) IssueAuthToken(userID, username string) (string, error) {
	return s.sign(&Claims{
		UserID:   userID,
		Username: username,
	}, s.tokenExpiry)
}

// MintSessionToken はゲームセッションに紐づくセッショントークンを発行する。
// トークンは(userID, startTime)に束縛され、セッションと同じ有効期間を持つ。
func (s *TokenService) MintSessionToken(userID string, startTime time.Time) (string, error) {
	return s.sign(&Claims{
		UserID:    userID,
		Action:    actionGame,
		StartTime: startTime.UnixMilli(),
	}, s.sessionTTL)
}

// Verify はトークンを検証し、クレームを返す。
// 署名不正・期限切れ・署名方式の不一致はすべてエラーになる。
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// VerifyAuthToken は認証トークンを検証し、ユーザーIDを返す。
// middleware.TokenVerifierを実装する。
func (s *TokenService) VerifyAuthToken(tokenString string) (string, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("token has no user ID")
	}
	return claims.UserID, nil
}

// sign はクレームに有効期間を設定して署名する。
func (s *TokenService) sign(claims *Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
