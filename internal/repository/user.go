package repository

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
)

const userColumns = "id, email, full_name, password_hash, role, active, created_at, updated_at"

// UserRepository never caches single-user reads: they carry the password
// hash and feed authentication.
type UserRepository struct {
	db database.Querier
	qc *cache.QueryCache
}

func NewUserRepository(db database.Querier, qc *cache.QueryCache) *UserRepository {
	return &UserRepository{db: db, qc: qc}
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	return getOne[model.User](ctx, r.db, "users", `
		INSERT INTO users (email, full_name, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.Email, u.FullName, u.PasswordHash, u.Role, u.Active,
	)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return getOne[model.User](ctx, r.db, "users",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return getOne[model.User](ctx, r.db, "users",
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) List(ctx context.Context, f model.UserFilter) (*model.PaginatedResponse[model.User], error) {
	w := &where{}
	w.addSearch(f.Query, "email", "full_name")
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}
	if f.Active != nil {
		w.add("active = ?", *f.Active)
	}

	return listPage[model.User](ctx, r.db, r.qc, "users", userColumns, "lower(full_name), id", w, f.Pagination)
}

// Update writes the profile and access fields; the password has its own path.
func (r *UserRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	return getOne[model.User](ctx, r.db, "users", `
		UPDATE users
		SET email = $2, full_name = $3, role = $4, active = $5
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Email, u.FullName, u.Role, u.Active,
	)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return execOne(ctx, r.db, "users",
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountActiveAdmins lets the service refuse to demote or deactivate the
// last admin.
func (r *UserRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin' AND active`).Scan(&n)
	return n, err
}
