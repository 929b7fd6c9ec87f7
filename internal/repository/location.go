package repository

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
)

const locationColumns = "id, name, address, city, notes, active, created_at, updated_at"

type LocationRepository struct {
	db database.Querier
	qc *cache.QueryCache
}

func NewLocationRepository(db database.Querier, qc *cache.QueryCache) *LocationRepository {
	return &LocationRepository{db: db, qc: qc}
}

func (r *LocationRepository) Create(ctx context.Context, l *model.Location) (*model.Location, error) {
	return getOne[model.Location](ctx, r.db, "locations", `
		INSERT INTO locations (name, address, city, notes, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+locationColumns,
		l.Name, l.Address, l.City, l.Notes, l.Active,
	)
}

func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	return getOne[model.Location](ctx, r.db, "locations",
		`SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
}

func (r *LocationRepository) List(ctx context.Context, f model.LocationFilter) (*model.PaginatedResponse[model.Location], error) {
	w := &where{}
	w.addSearch(f.Query, "name", "address")
	if f.City != "" {
		w.add("lower(city) = lower(?)", f.City)
	}
	if f.Active != nil {
		w.add("active = ?", *f.Active)
	}

	return listPage[model.Location](ctx, r.db, r.qc, "locations", locationColumns, "lower(name), id", w, f.Pagination)
}

func (r *LocationRepository) Options(ctx context.Context) ([]model.LookupOption, error) {
	return lookup(ctx, r.db, r.qc,
		`SELECT id, name AS label FROM locations WHERE active ORDER BY lower(name)`)
}

func (r *LocationRepository) Update(ctx context.Context, l *model.Location) (*model.Location, error) {
	return getOne[model.Location](ctx, r.db, "locations", `
		UPDATE locations
		SET name = $2, address = $3, city = $4, notes = $5, active = $6
		WHERE id = $1
		RETURNING `+locationColumns,
		l.ID, l.Name, l.Address, l.City, l.Notes, l.Active,
	)
}

func (r *LocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "locations", `DELETE FROM locations WHERE id = $1`, id)
}
