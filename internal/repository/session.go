package repository

import (
	"context"
	"time"

	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const findActiveSessionSQL = `
	SELECT s.id AS session_id, s.expires_at, u.id AS user_id, u.email, u.full_name, u.role
	FROM sessions s
	JOIN users u ON u.id = s.user_id
	WHERE s.token_hash = $1 AND s.expires_at > now() AND u.active`

type SessionRepository struct {
	db database.Querier
	qc *cache.QueryCache
}

func NewSessionRepository(db database.Querier, qc *cache.QueryCache) *SessionRepository {
	return &SessionRepository{db: db, qc: qc}
}

func (r *SessionRepository) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	return getOne[model.Session](ctx, r.db, "sessions", `
		INSERT INTO sessions (user_id, token_hash, user_agent, ip, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, token_hash, user_agent, ip, created_at, expires_at`,
		s.UserID, s.TokenHash, s.UserAgent, s.IP, s.ExpiresAt,
	)
}

// FindActive joins the session to its user. Only hits are cached; an
// unknown token always reaches the database.
func (r *SessionRepository) FindActive(ctx context.Context, tokenHash string) (*model.SessionUser, error) {
	return cache.Fetch(ctx, r.qc, cache.TierSession, findActiveSessionSQL, []any{tokenHash},
		func(ctx context.Context) (*model.SessionUser, error) {
			return getOne[model.SessionUser](ctx, r.db, "sessions", findActiveSessionSQL, tokenHash)
		})
}

// CacheKey is the query-cache key FindActive uses for tokenHash.
func (r *SessionRepository) CacheKey(tokenHash string) string {
	return cache.Key(findActiveSessionSQL, tokenHash)
}

// Evict drops cached FindActive results for the given token hashes.
func (r *SessionRepository) Evict(ctx context.Context, tokenHashes ...string) error {
	keys := make([]string, len(tokenHashes))
	for i, h := range tokenHashes {
		keys[i] = r.CacheKey(h)
	}
	return r.qc.Delete(ctx, keys...)
}

// Expire marks one session expired. It reports false when the session was
// already expired or unknown.
func (r *SessionRepository) Expire(ctx context.Context, tokenHash string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET expires_at = now() WHERE token_hash = $1 AND expires_at > now()`, tokenHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ExpireForUser expires every live session of a user and returns their
// token hashes so the caller can evict them.
func (r *SessionRepository) ExpireForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE sessions SET expires_at = now() WHERE user_id = $1 AND expires_at > now() RETURNING token_hash`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// LiveTokenHashes lists the token hashes of a user's unexpired sessions.
func (r *SessionRepository) LiveTokenHashes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT token_hash FROM sessions WHERE user_id = $1 AND expires_at > now()`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// PurgeExpired deletes sessions that expired before the cutoff.
func (r *SessionRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
