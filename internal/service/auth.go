package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenBytes        = 32
	MinPasswordLength = 8
)

// dummyHash is compared against when the email is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("consultdesk-dummy-password"), bcrypt.DefaultCost)

// AuthService issues, validates and revokes opaque session tokens. Only the
// SHA-256 of a token is stored; the raw token lives in the client cookie.
type AuthService struct {
	cfg      *config.AuthConfig
	users    userStore
	sessions sessionStore
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewAuthService(cfg *config.AuthConfig, users userStore, sessions sessionStore, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IP        string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// HashToken is the stored form of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func invalidCredentials() *errs.HTTPError {
	return errs.NewUnauthorizedError(errs.ErrInvalidCredentials.Error(), true)
}

// Login checks credentials and opens a session. Unknown email, wrong
// password and inactive account all produce the same 401.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, invalidCredentials()
	}

	if !user.Active {
		return nil, invalidCredentials()
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, &model.Session{
		UserID:    user.ID,
		TokenHash: HashToken(token),
		UserAgent: truncate(in.UserAgent, 512),
		IP:        in.IP,
		ExpiresAt: s.now().Add(s.cfg.SessionTTL),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("session_id", session.ID.String()).
		Msg("user logged in")

	return &LoginResult{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Validate resolves a token to its session and user. A cached copy is
// re-checked against its expiry so it never outlives the session.
func (s *AuthService) Validate(ctx context.Context, token string) (*model.SessionUser, error) {
	if token == "" {
		return nil, errs.ErrSessionInvalid
	}

	su, err := s.sessions.FindActive(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrSessionInvalid
		}
		return nil, err
	}

	if su.Expired(s.now()) {
		return nil, errs.ErrSessionInvalid
	}

	return su, nil
}

// Logout expires the session and drops its cached lookup. Logging out an
// unknown or expired token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	hash := HashToken(token)

	if _, err := s.sessions.Expire(ctx, hash); err != nil {
		return err
	}

	if err := s.sessions.Evict(ctx, hash); err != nil {
		// The Go-side expiry check still bounds a stale entry to the session TTL tier.
		s.logger.Warn().Err(err).Msg("failed to evict session from query cache")
	}

	return nil
}

// ExpireUserSessions revokes every live session of a user.
func (s *AuthService) ExpireUserSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	hashes, err := s.sessions.ExpireForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	if len(hashes) > 0 {
		if err := s.sessions.Evict(ctx, hashes...); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to evict sessions from query cache")
		}
	}

	return len(hashes), nil
}

// EvictUserSessions drops a user's live sessions from the query cache
// without ending them, so the next request reloads the role from Postgres.
func (s *AuthService) EvictUserSessions(ctx context.Context, userID uuid.UUID) error {
	hashes, err := s.sessions.LiveTokenHashes(ctx, userID)
	if err != nil || len(hashes) == 0 {
		return err
	}

	if err := s.sessions.Evict(ctx, hashes...); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to evict sessions from query cache")
	}
	return nil
}

// EnsureBootstrapAdmin creates the configured admin when no user exists yet.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	email := strings.TrimSpace(s.cfg.BootstrapAdminEmail)
	if email == "" || s.cfg.BootstrapAdminPassword == "" {
		return nil
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if len(s.cfg.BootstrapAdminPassword) < MinPasswordLength {
		return fmt.Errorf("bootstrap admin password must be at least %d characters", MinPasswordLength)
	}

	hash, err := HashPassword(s.cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}

	admin, err := s.users.Create(ctx, &model.User{
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}

	s.logger.Info().Str("user_id", admin.ID.String()).Str("email", admin.Email).Msg("bootstrap admin created")

	return nil
}

// CheckPassword compares password against the user's stored hash.
func CheckPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
