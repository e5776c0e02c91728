package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/storage"
)

// Session errors.
var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrSessionNotFound = errors.New("session not found or expired")
)

// Claims extends JWT standard claims with the school username.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Authenticator checks school credentials against the remote auth service.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*model.SchoolData, error)
	Verify(ctx context.Context, username string) (*model.SchoolData, error)
}

// SessionService issues session tokens and keeps the logged-in school's data
// under a per-session key. The token's jti is the session id; deleting the
// session key revokes the token.
type SessionService struct {
	cfg   *config.Config
	auth  Authenticator
	blobs storage.BlobStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(cfg *config.Config, auth Authenticator, blobs storage.BlobStore, log zerolog.Logger) *SessionService {
	return &SessionService{
		cfg:   cfg,
		auth:  auth,
		blobs: blobs,
		log:   log.With().Str("component", "session_service").Logger(),
		now:   time.Now,
	}
}

// Login verifies credentials with the auth service, persists the school data
// and returns a signed token.
func (s *SessionService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	school, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	if err := s.store(ctx, sessionID, school); err != nil {
		return nil, err
	}

	token, err := s.sign(sessionID, school.Username)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", school.Username).Str("session_id", sessionID).Msg("School logged in")
	return &model.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.cfg.JWTExpiry.Seconds()),
		School:    school,
		IsAdmin:   school.IsAdmin(),
	}, nil
}

// Hydrate validates a token and loads the session it names.
func (s *SessionService) Hydrate(ctx context.Context, tokenStr string) (*model.Session, error) {
	claims, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}

	data, err := s.blobs.Get(ctx, config.CacheKey.SessionKey(claims.ID))
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var school model.SchoolData
	if err := json.Unmarshal(data, &school); err != nil {
		s.log.Warn().Err(err).Str("session_id", claims.ID).Msg("Discarding corrupt session")
		_ = s.blobs.Delete(ctx, config.CacheKey.SessionKey(claims.ID))
		return nil, ErrSessionNotFound
	}
	return &model.Session{ID: claims.ID, School: &school}, nil
}

// Verify re-checks the account with the auth service. On success the stored
// school data is refreshed; on any failure the session is logged out.
func (s *SessionService) Verify(ctx context.Context, sess *model.Session) (*model.SchoolData, error) {
	if sess.School == nil || sess.School.Username == "" {
		s.Logout(ctx, sess)
		return nil, ErrSessionNotFound
	}

	school, err := s.auth.Verify(ctx, sess.School.Username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", sess.School.Username).Msg("Session verification failed")
		s.Logout(ctx, sess)
		return nil, err
	}

	if err := s.store(ctx, sess.ID, school); err != nil {
		return nil, err
	}
	sess.School = school
	return school, nil
}

// Logout deletes the persisted session. Failures are logged only.
func (s *SessionService) Logout(ctx context.Context, sess *model.Session) {
	if err := s.blobs.Delete(ctx, config.CacheKey.SessionKey(sess.ID)); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to delete session")
		return
	}
	s.log.Info().Str("session_id", sess.ID).Msg("Session closed")
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *SessionService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *SessionService) sign(sessionID, username string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// store persists school data with the same expiry as the token.
func (s *SessionService) store(ctx context.Context, sessionID string, school *model.SchoolData) error {
	data, err := json.Marshal(school)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.blobs.Set(ctx, config.CacheKey.SessionKey(sessionID), data, s.cfg.JWTExpiry); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
