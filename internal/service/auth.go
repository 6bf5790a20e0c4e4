package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Homme-Noir/Taskflow/internal/model"
	"github.com/Homme-Noir/Taskflow/internal/repo"
)

// AuthConfig holds token parameters. The secret must come from the
// environment in production.
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	SessionTTL     time.Duration
}

type accessClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthService struct {
	users    repo.UserRepository
	sessions repo.SessionRepository
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(users repo.UserRepository, sessions repo.SessionRepository, cfg AuthConfig, now func() time.Time) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{users: users, sessions: sessions, cfg: cfg, now: now}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") || len(password) < 8 {
		return model.User{}, ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}

	return s.users.Create(ctx, model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	})
}

// Login verifies the credentials and opens a refresh session. A wrong
// password and an unknown email both come back as ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return TokenPair{}, ErrUnauthorized
	}

	return s.issueTokens(ctx, u.ID)
}

// Refresh rotates the session: the presented refresh token is consumed and a
// new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	sess, err := s.sessions.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}

	if sess.ExpiresAt.Before(s.now()) {
		s.sessions.Delete(ctx, refreshToken)
		return TokenPair{}, ErrUnauthorized
	}

	if err := s.sessions.Delete(ctx, refreshToken); err != nil {
		return TokenPair{}, err
	}
	return s.issueTokens(ctx, sess.UserID)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Delete(ctx, refreshToken)
}

// VerifyAccess validates an access token and returns the user id it was
// issued for.
func (s *AuthService) VerifyAccess(tokenString string) (string, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrUnauthorized
	}
	return claims.UserID, nil
}

func (s *AuthService) issueTokens(ctx context.Context, userID string) (TokenPair, error) {
	now := s.now()

	claims := accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.sessions.Create(ctx, model.Session{
		Token:     refresh,
		UserID:    userID,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
