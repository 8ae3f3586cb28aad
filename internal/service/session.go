// Package service implements session resolution, authorization and the
// admin operations of the site server.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/repository"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	refreshKeyPrefix  = "refresh_token:"
	rotatedKeyPrefix  = "refresh_rotated:"
	authCodeKeyPrefix = "auth_code:"

	// RefreshReuseWindow is how long a rotated refresh token keeps resolving
	// to the pair that replaced it, so parallel requests carrying the same
	// cookie all succeed.
	RefreshReuseWindow = 10 * time.Second
)

// rotateScript consumes the old refresh token and records its replacement
// in one step. Returns 1 for the caller that won the rotation.
var rotateScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// rotatedPair is the replacement recorded under the consumed token's jti.
type rotatedPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	RefreshID    string `json:"refresh_id"`
}

// SessionTokens are the raw token values read from the request cookies.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

// Session is a freshly issued token pair.
type Session struct {
	Principal     models.Principal
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration

	refreshID string
}

// UserResult is the outcome of resolving a caller. Principal is nil when no
// session could be resolved. Refreshed is set when the token pair was rotated
// and must be written back to the client.
type UserResult struct {
	Principal *models.Principal
	Refreshed *Session
}

// SessionService is the auth collaborator: it owns the principal lifecycle.
type SessionService interface {
	GetUser(ctx context.Context, tokens SessionTokens) (*UserResult, error)
	ExchangeCodeForSession(ctx context.Context, code string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	SignOut(ctx context.Context, tokens SessionTokens) error
}

type sessionService struct {
	userRepo    repository.UserRepository
	jwtService  JWTService
	redis       *redis.Client
	authCodeTTL time.Duration
}

// NewSessionService creates a new SessionService instance.
func NewSessionService(userRepo repository.UserRepository, jwtService JWTService, redisClient *redis.Client, authCodeTTL time.Duration) SessionService {
	return &sessionService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		redis:       redisClient,
		authCodeTTL: authCodeTTL,
	}
}

// GetUser resolves the caller from the access token, falling back to a
// refresh token rotation when the access token is missing or expired.
func (s *sessionService) GetUser(ctx context.Context, tokens SessionTokens) (*UserResult, error) {
	if tokens.AccessToken != "" {
		if claims, err := s.jwtService.ValidateToken(tokens.AccessToken, TokenTypeAccess); err == nil {
			return &UserResult{Principal: &models.Principal{ID: claims.UserID, Email: claims.Email}}, nil
		}
	}

	if tokens.RefreshToken == "" {
		return &UserResult{}, nil
	}

	claims, err := s.jwtService.ValidateToken(tokens.RefreshToken, TokenTypeRefresh)
	if err != nil {
		return &UserResult{}, nil
	}

	principal := models.Principal{ID: claims.UserID, Email: claims.Email}
	session, err := s.issue(ctx, principal)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rotatedPair{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		RefreshID:    session.refreshID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode rotated session: %w", err)
	}

	// Single use: whoever consumes the key first owns the rotation.
	won, err := rotateScript.Run(ctx, s.redis,
		[]string{refreshKeyPrefix + claims.ID, rotatedKeyPrefix + claims.ID},
		claims.UserID, payload, RefreshReuseWindow.Milliseconds(),
	).Int()
	if err != nil {
		s.discard(ctx, session)
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if won == 1 {
		return &UserResult{Principal: &session.Principal, Refreshed: session}, nil
	}

	s.discard(ctx, session)
	return s.reuseRotated(ctx, claims)
}

// reuseRotated returns the pair that already replaced a consumed refresh
// token, as long as the reuse window is open and that pair is still live.
func (s *sessionService) reuseRotated(ctx context.Context, claims *Claims) (*UserResult, error) {
	raw, err := s.redis.Get(ctx, rotatedKeyPrefix+claims.ID).Bytes()
	if errors.Is(err, redis.Nil) {
		return &UserResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rotated session: %w", err)
	}

	var pair rotatedPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("failed to decode rotated session: %w", err)
	}

	live, err := s.redis.Exists(ctx, refreshKeyPrefix+pair.RefreshID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if live == 0 {
		return &UserResult{}, nil
	}

	principal := models.Principal{ID: claims.UserID, Email: claims.Email}
	return &UserResult{
		Principal: &principal,
		Refreshed: &Session{
			Principal:     principal,
			AccessToken:   pair.AccessToken,
			RefreshToken:  pair.RefreshToken,
			AccessExpiry:  s.jwtService.GetAccessExpiry(),
			RefreshExpiry: s.jwtService.GetRefreshExpiry(),
			refreshID:     pair.RefreshID,
		},
	}, nil
}

// discard revokes a pair that lost the rotation race.
func (s *sessionService) discard(ctx context.Context, session *Session) {
	_ = s.redis.Del(ctx, refreshKeyPrefix+session.refreshID).Err()
}

func (s *sessionService) ExchangeCodeForSession(ctx context.Context, code string) (*Session, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}

	userID, err := s.redis.GetDel(ctx, authCodeKeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	return s.issue(ctx, models.Principal{ID: user.ID, Email: user.Email})
}

// SignIn checks the password and returns a one-time authorization code to be
// exchanged on the callback route.
func (s *sessionService) SignIn(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueAuthCode(ctx, user.ID)
}

// issueAuthCode stores a single-use code that maps to the given user.
func (s *sessionService) issueAuthCode(ctx context.Context, userID string) (string, error) {
	code, err := randomCode()
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, authCodeKeyPrefix+code, userID, s.authCodeTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store authorization code: %w", err)
	}
	return code, nil
}

func (s *sessionService) SignOut(ctx context.Context, tokens SessionTokens) error {
	if tokens.RefreshToken == "" {
		return nil
	}
	claims, err := s.jwtService.ValidateToken(tokens.RefreshToken, TokenTypeRefresh)
	if err != nil {
		return nil
	}
	if err := s.redis.Del(ctx, refreshKeyPrefix+claims.ID, rotatedKeyPrefix+claims.ID).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *sessionService) issue(ctx context.Context, principal models.Principal) (*Session, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(principal.ID, principal.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(principal.ID, principal.Email)
	if err != nil {
		return nil, err
	}

	claims, err := s.jwtService.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	refreshExpiry := s.jwtService.GetRefreshExpiry()
	if err := s.redis.Set(ctx, refreshKeyPrefix+claims.ID, principal.ID, refreshExpiry).Err(); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Session{
		Principal:     principal,
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpiry:  s.jwtService.GetAccessExpiry(),
		RefreshExpiry: refreshExpiry,
		refreshID:     claims.ID,
	}, nil
}

func randomCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate authorization code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
