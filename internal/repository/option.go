package repository

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const optionColumns = "id, category, value, label, sort_order, active, created_at, updated_at"

type OptionRepository struct {
	db database.Querier
	qc *cache.QueryCache
}

func NewOptionRepository(db database.Querier, qc *cache.QueryCache) *OptionRepository {
	return &OptionRepository{db: db, qc: qc}
}

// ListByCategory is cached at the options tier; option edits are rare and
// admins can flush the cache.
func (r *OptionRepository) ListByCategory(ctx context.Context, category model.OptionCategory, includeInactive bool) ([]model.SelectOption, error) {
	query := `SELECT ` + optionColumns + ` FROM select_options WHERE category = $1 AND (active OR $2) ORDER BY sort_order, label`
	args := []any{category, includeInactive}

	return cache.Fetch(ctx, r.qc, cache.TierOptions, query, args, func(ctx context.Context) ([]model.SelectOption, error) {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByName[model.SelectOption])
	})
}

// ValueExists checks a value against its category without the cache, so
// a freshly added option is usable at once.
func (r *OptionRepository) ValueExists(ctx context.Context, category model.OptionCategory, value string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM select_options WHERE category = $1 AND value = $2 AND active)`,
		category, value,
	).Scan(&exists)
	return exists, err
}

func (r *OptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SelectOption, error) {
	return getOne[model.SelectOption](ctx, r.db, "select_options",
		`SELECT `+optionColumns+` FROM select_options WHERE id = $1`, id)
}

func (r *OptionRepository) Create(ctx context.Context, o *model.SelectOption) (*model.SelectOption, error) {
	return getOne[model.SelectOption](ctx, r.db, "select_options", `
		INSERT INTO select_options (category, value, label, sort_order, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+optionColumns,
		o.Category, o.Value, o.Label, o.SortOrder, o.Active,
	)
}

// Update leaves category and value alone: rows elsewhere store the value.
func (r *OptionRepository) Update(ctx context.Context, o *model.SelectOption) (*model.SelectOption, error) {
	return getOne[model.SelectOption](ctx, r.db, "select_options", `
		UPDATE select_options
		SET label = $2, sort_order = $3, active = $4
		WHERE id = $1
		RETURNING `+optionColumns,
		o.ID, o.Label, o.SortOrder, o.Active,
	)
}

func (r *OptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "select_options", `DELETE FROM select_options WHERE id = $1`, id)
}
