package repository

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
)

const clientColumns = "id, name, email, phone, client_type, notes, active, created_at, updated_at"

type ClientRepository struct {
	db database.Querier
	qc *cache.QueryCache
}

func NewClientRepository(db database.Querier, qc *cache.QueryCache) *ClientRepository {
	return &ClientRepository{db: db, qc: qc}
}

func (r *ClientRepository) Create(ctx context.Context, c *model.Client) (*model.Client, error) {
	return getOne[model.Client](ctx, r.db, "clients", `
		INSERT INTO clients (name, email, phone, client_type, notes, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+clientColumns,
		c.Name, c.Email, c.Phone, c.ClientType, c.Notes, c.Active,
	)
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return getOne[model.Client](ctx, r.db, "clients",
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

func (r *ClientRepository) List(ctx context.Context, f model.ClientFilter) (*model.PaginatedResponse[model.Client], error) {
	w := &where{}
	w.addSearch(f.Query, "name", "email", "phone")
	if f.ClientType != "" {
		w.add("client_type = ?", f.ClientType)
	}
	if f.Active != nil {
		w.add("active = ?", *f.Active)
	}

	return listPage[model.Client](ctx, r.db, r.qc, "clients", clientColumns, "lower(name), id", w, f.Pagination)
}

func (r *ClientRepository) Options(ctx context.Context) ([]model.LookupOption, error) {
	return lookup(ctx, r.db, r.qc,
		`SELECT id, name AS label FROM clients WHERE active ORDER BY lower(name)`)
}

func (r *ClientRepository) Update(ctx context.Context, c *model.Client) (*model.Client, error) {
	return getOne[model.Client](ctx, r.db, "clients", `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, client_type = $5, notes = $6, active = $7
		WHERE id = $1
		RETURNING `+clientColumns,
		c.ID, c.Name, c.Email, c.Phone, c.ClientType, c.Notes, c.Active,
	)
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "clients", `DELETE FROM clients WHERE id = $1`, id)
}
