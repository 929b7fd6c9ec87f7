package repository

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func newCache(t *testing.T) (*cache.QueryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := zerolog.Nop()
	return cache.New(client, config.DefaultCacheConfig(), &logger, nil), mr
}

func q(s string) string { return regexp.QuoteMeta(s) }

var clientCols = []string{"id", "name", "email", "phone", "client_type", "notes", "active", "created_at", "updated_at"}

func TestWhereBuilder(t *testing.T) {
	w := &where{}
	assert.Equal(t, "", w.String())

	w.addSearch("  50%_off ", "name", "email")
	w.add("active = ?", true)
	w.addSearch("   ", "ignored")

	assert.Equal(t, " WHERE (name ILIKE $1 OR email ILIKE $1) AND active = $2", w.String())
	assert.Equal(t, []any{`%50\%\_off%`, true}, w.args)
	assert.Equal(t, "$3", w.next(25))
}

func TestClientRepository_ListCachesPage(t *testing.T) {
	mock := newMock(t)
	qc, _ := newCache(t)
	repo := NewClientRepository(mock, qc)

	active := true
	filter := model.ClientFilter{Query: "acme", Active: &active, Pagination: model.NewPagination(2, 10)}
	now := time.Now().UTC().Truncate(time.Second)
	id := uuid.New()

	mock.ExpectQuery(q("SELECT COUNT(*) FROM clients WHERE (name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1) AND active = $2")).
		WithArgs("%acme%", true).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(q("ORDER BY lower(name), id LIMIT $3 OFFSET $4")).
		WithArgs("%acme%", true, 10, 10).
		WillReturnRows(pgxmock.NewRows(clientCols).
			AddRow(id, "Acme Ltd", "ops@acme.test", "", "business", "", true, now, now))

	for i := 0; i < 2; i++ {
		page, err := repo.List(context.Background(), filter)
		require.NoError(t, err)
		assert.Equal(t, 11, page.Total)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Data, 1)
		assert.Equal(t, id, page.Data[0].ID)
		assert.Equal(t, "Acme Ltd", page.Data[0].Name)
	}

	// The second call never reached the database.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewClientRepository(mock, nil)
	id := uuid.New()

	mock.ExpectQuery(q("FROM clients WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(clientCols))

	_, err := repo.GetByID(context.Background(), id)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))

	httpErr, ok := errs.AsHTTPError(sqlerr.HandleError(err))
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Client not found", httpErr.Message)
}

func TestLocationRepository_DeleteMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewLocationRepository(mock, nil)
	id := uuid.New()

	mock.ExpectExec(q("DELETE FROM locations WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), id)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultRepository_HasOverlap(t *testing.T) {
	mock := newMock(t)
	repo := NewConsultRepository(mock, nil)
	consultant := uuid.New()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(q("status <> 'cancelled'")).
		WithArgs(consultant, start, end, (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := repo.HasOverlap(context.Background(), consultant, start, end, nil)
	require.NoError(t, err)
	assert.True(t, overlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultRepository_DeleteReturnsAttachmentKeys(t *testing.T) {
	mock := newMock(t)
	repo := NewConsultRepository(mock, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT id FROM consults WHERE id = $1 FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectQuery(q("SELECT storage_key FROM attachments WHERE consult_id = $1")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"storage_key"}).AddRow("consults/a/1-x.pdf").AddRow("consults/a/2-y.pdf"))
	mock.ExpectExec(q("DELETE FROM consults WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	keys, err := repo.Delete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"consults/a/1-x.pdf", "consults/a/2-y.pdf"}, keys)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultRepository_DeleteMissingRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewConsultRepository(mock, nil)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT id FROM consults WHERE id = $1 FOR UPDATE")).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	keys, err := repo.Delete(context.Background(), id)
	assert.Nil(t, keys)
	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_FindActiveCachedAndEvicted(t *testing.T) {
	mock := newMock(t)
	qc, mr := newCache(t)
	repo := NewSessionRepository(mock, qc)

	sessionID, userID := uuid.New(), uuid.New()
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	cols := []string{"session_id", "expires_at", "user_id", "email", "full_name", "role"}

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(q("FROM sessions s")).
			WithArgs("hash-1").
			WillReturnRows(pgxmock.NewRows(cols).AddRow(sessionID, expires, userID, "a@b.test", "A B", model.RoleStaff))
	}

	su, err := repo.FindActive(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, userID, su.UserID)
	assert.True(t, mr.Exists(repo.CacheKey("hash-1")))

	su, err = repo.FindActive(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, su.Role)
	assert.True(t, expires.Equal(su.ExpiresAt))

	require.NoError(t, repo.Evict(context.Background(), "hash-1"))
	assert.False(t, mr.Exists(repo.CacheKey("hash-1")))

	_, err = repo.FindActive(context.Background(), "hash-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_ExpireAndPurge(t *testing.T) {
	mock := newMock(t)
	repo := NewSessionRepository(mock, nil)
	userID := uuid.New()
	cutoff := time.Now().Add(-24 * time.Hour)

	mock.ExpectExec(q("UPDATE sessions SET expires_at = now() WHERE token_hash = $1")).
		WithArgs("h").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(q("WHERE user_id = $1 AND expires_at > now() RETURNING token_hash")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"token_hash"}).AddRow("h1").AddRow("h2"))
	mock.ExpectExec(q("DELETE FROM sessions WHERE expires_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	expired, err := repo.Expire(context.Background(), "h")
	require.NoError(t, err)
	assert.False(t, expired)

	hashes, err := repo.ExpireForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1", "h2"}, hashes)

	n, err := repo.PurgeExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_LiveTokenHashes(t *testing.T) {
	mock := newMock(t)
	repo := NewSessionRepository(mock, nil)
	userID := uuid.New()

	mock.ExpectQuery(q("SELECT token_hash FROM sessions WHERE user_id = $1 AND expires_at > now()")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"token_hash"}).AddRow("h1"))

	hashes, err := repo.LiveTokenHashes(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, hashes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionRepository_ListByCategoryUsesOptionsTier(t *testing.T) {
	mock := newMock(t)
	qc, mr := newCache(t)
	repo := NewOptionRepository(mock, qc)
	now := time.Now().UTC()

	mock.ExpectQuery(q("FROM select_options WHERE category = $1")).
		WithArgs(model.OptionCategoryClientType, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "category", "value", "label", "sort_order", "active", "created_at", "updated_at"}).
			AddRow(uuid.New(), model.OptionCategoryClientType, "business", "Business", 2, true, now, now))

	opts, err := repo.ListByCategory(context.Background(), model.OptionCategoryClientType, false)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Business", opts[0].Label)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, 24*time.Hour, mr.TTL(keys[0]))
}
