package repository

import (
	"context"
	"time"

	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const consultColumns = "id, consultant_id, client_id, location_id, title, notes, status, starts_at, ends_at, created_by, created_at, updated_at"

type ConsultRepository struct {
	db database.Querier
	qc *cache.QueryCache
}

func NewConsultRepository(db database.Querier, qc *cache.QueryCache) *ConsultRepository {
	return &ConsultRepository{db: db, qc: qc}
}

func (r *ConsultRepository) Create(ctx context.Context, c *model.Consult) (*model.Consult, error) {
	return getOne[model.Consult](ctx, r.db, "consults", `
		INSERT INTO consults (consultant_id, client_id, location_id, title, notes, status, starts_at, ends_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+consultColumns,
		c.ConsultantID, c.ClientID, c.LocationID, c.Title, c.Notes, c.Status, c.StartsAt, c.EndsAt, c.CreatedBy,
	)
}

func (r *ConsultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Consult, error) {
	return getOne[model.Consult](ctx, r.db, "consults",
		`SELECT `+consultColumns+` FROM consults WHERE id = $1`, id)
}

func (r *ConsultRepository) List(ctx context.Context, f model.ConsultFilter) (*model.PaginatedResponse[model.Consult], error) {
	w := &where{}
	if f.ConsultantID != nil {
		w.add("consultant_id = ?", *f.ConsultantID)
	}
	if f.ClientID != nil {
		w.add("client_id = ?", *f.ClientID)
	}
	if f.LocationID != nil {
		w.add("location_id = ?", *f.LocationID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.From != nil {
		w.add("ends_at > ?", *f.From)
	}
	if f.To != nil {
		w.add("starts_at < ?", *f.To)
	}

	return listPage[model.Consult](ctx, r.db, r.qc, "consults", consultColumns, "starts_at DESC, id", w, f.Pagination)
}

// Events returns consults intersecting [start, end), cached at the list tier.
func (r *ConsultRepository) Events(ctx context.Context, start, end time.Time, consultantID *uuid.UUID) ([]model.CalendarEvent, error) {
	w := &where{}
	w.add("ends_at > ?", start)
	w.add("starts_at < ?", end)
	if consultantID != nil {
		w.add("consultant_id = ?", *consultantID)
	}

	query := `SELECT id, title, starts_at, ends_at, status, consultant_id, client_id, location_id FROM consults` +
		w.String() + ` ORDER BY starts_at, id`

	return cache.Fetch(ctx, r.qc, cache.TierList, query, w.args, func(ctx context.Context) ([]model.CalendarEvent, error) {
		rows, err := r.db.Query(ctx, query, w.args...)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByName[model.CalendarEvent])
	})
}

// HasOverlap reports whether consultantID already has a non-cancelled
// consult intersecting [start, end). excludeID skips the consult being
// edited. Always read from the database.
func (r *ConsultRepository) HasOverlap(ctx context.Context, consultantID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM consults
			WHERE consultant_id = $1
			  AND status <> 'cancelled'
			  AND starts_at < $3
			  AND ends_at > $2
			  AND ($4::uuid IS NULL OR id <> $4::uuid)
		)`,
		consultantID, start, end, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *ConsultRepository) Update(ctx context.Context, c *model.Consult) (*model.Consult, error) {
	return getOne[model.Consult](ctx, r.db, "consults", `
		UPDATE consults
		SET consultant_id = $2, client_id = $3, location_id = $4, title = $5, notes = $6,
		    status = $7, starts_at = $8, ends_at = $9
		WHERE id = $1
		RETURNING `+consultColumns,
		c.ID, c.ConsultantID, c.ClientID, c.LocationID, c.Title, c.Notes, c.Status, c.StartsAt, c.EndsAt,
	)
}

func (r *ConsultRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ConsultStatus) (*model.Consult, error) {
	return getOne[model.Consult](ctx, r.db, "consults",
		`UPDATE consults SET status = $2 WHERE id = $1 RETURNING `+consultColumns, id, status)
}

// Delete removes the consult and returns the storage keys of its
// attachments, whose rows go with it through ON DELETE CASCADE. The consult
// row is locked first: an attachment insert needs a key-share lock on it, so
// no upload can land between reading the keys and the delete.
func (r *ConsultRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	var keys []string
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM consults WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return sqlerr.WrapNotFound(err, "consults")
		}

		rows, err := tx.Query(ctx, `SELECT storage_key FROM attachments WHERE consult_id = $1`, id)
		if err != nil {
			return err
		}
		if keys, err = pgx.CollectRows(rows, pgx.RowTo[string]); err != nil {
			return err
		}

		return execOne(ctx, tx, "consults", `DELETE FROM consults WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
