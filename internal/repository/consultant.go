package repository

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
)

const consultantColumns = "id, first_name, last_name, email, phone, specialty, location_id, active, created_at, updated_at"

type ConsultantRepository struct {
	db database.Querier
	qc *cache.QueryCache
}

func NewConsultantRepository(db database.Querier, qc *cache.QueryCache) *ConsultantRepository {
	return &ConsultantRepository{db: db, qc: qc}
}

func (r *ConsultantRepository) Create(ctx context.Context, c *model.Consultant) (*model.Consultant, error) {
	return getOne[model.Consultant](ctx, r.db, "consultants", `
		INSERT INTO consultants (first_name, last_name, email, phone, specialty, location_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+consultantColumns,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Specialty, c.LocationID, c.Active,
	)
}

func (r *ConsultantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Consultant, error) {
	return getOne[model.Consultant](ctx, r.db, "consultants",
		`SELECT `+consultantColumns+` FROM consultants WHERE id = $1`, id)
}

func (r *ConsultantRepository) List(ctx context.Context, f model.ConsultantFilter) (*model.PaginatedResponse[model.Consultant], error) {
	w := &where{}
	w.addSearch(f.Query, "first_name", "last_name", "email")
	if f.Specialty != "" {
		w.add("specialty = ?", f.Specialty)
	}
	if f.LocationID != nil {
		w.add("location_id = ?", *f.LocationID)
	}
	if f.Active != nil {
		w.add("active = ?", *f.Active)
	}

	return listPage[model.Consultant](ctx, r.db, r.qc, "consultants", consultantColumns, "lower(last_name), lower(first_name), id", w, f.Pagination)
}

func (r *ConsultantRepository) Options(ctx context.Context) ([]model.LookupOption, error) {
	return lookup(ctx, r.db, r.qc, `
		SELECT id, first_name || ' ' || last_name AS label
		FROM consultants
		WHERE active
		ORDER BY lower(last_name), lower(first_name)`)
}

func (r *ConsultantRepository) Update(ctx context.Context, c *model.Consultant) (*model.Consultant, error) {
	return getOne[model.Consultant](ctx, r.db, "consultants", `
		UPDATE consultants
		SET first_name = $2, last_name = $3, email = $4, phone = $5, specialty = $6, location_id = $7, active = $8
		WHERE id = $1
		RETURNING `+consultantColumns,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Specialty, c.LocationID, c.Active,
	)
}

func (r *ConsultantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "consultants", `DELETE FROM consultants WHERE id = $1`, id)
}
