// Package repository holds the SQL. Every statement is parameterized; reads
// that tolerate bounded staleness go through the query cache.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/consultdesk/internal/cache"
	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

type Repositories struct {
	Users       *UserRepository
	Sessions    *SessionRepository
	Locations   *LocationRepository
	Consultants *ConsultantRepository
	Clients     *ClientRepository
	Consults    *ConsultRepository
	Attachments *AttachmentRepository
	Options     *OptionRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return New(s.DB.Pool, s.Cache)
}

// New wires every repository onto db. qc may be nil to disable caching.
func New(db database.Querier, qc *cache.QueryCache) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db, qc),
		Sessions:    NewSessionRepository(db, qc),
		Locations:   NewLocationRepository(db, qc),
		Consultants: NewConsultantRepository(db, qc),
		Clients:     NewClientRepository(db, qc),
		Consults:    NewConsultRepository(db, qc),
		Attachments: NewAttachmentRepository(db),
		Options:     NewOptionRepository(db, qc),
	}
}

// where accumulates AND-ed conditions with positional placeholders. A "?"
// in cond is replaced by the next $n.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, value any) {
	w.args = append(w.args, value)
	w.conds = append(w.conds, strings.Replace(cond, "?", w.placeholder(), -1))
}

// addSearch matches q case-insensitively against any of columns.
func (w *where) addSearch(q string, columns ...string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}

	w.args = append(w.args, "%"+escapeLike(q)+"%")
	ph := w.placeholder()

	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE %s", col, ph)
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

func (w *where) placeholder() string {
	return fmt.Sprintf("$%d", len(w.args))
}

// next appends value and returns its placeholder, for LIMIT/OFFSET.
func (w *where) next(value any) string {
	w.args = append(w.args, value)
	return w.placeholder()
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// listPage runs a count and a page query for the same filter, cached as one
// entry at the list tier.
func listPage[T any](ctx context.Context, db database.Querier, qc *cache.QueryCache, baseSQL, columns, orderBy string, w *where, p model.Pagination) (*model.PaginatedResponse[T], error) {
	countSQL := "SELECT COUNT(*) FROM " + baseSQL + w.String()
	countArgs := append([]any(nil), w.args...)

	pageSQL := "SELECT " + columns + " FROM " + baseSQL + w.String() +
		" ORDER BY " + orderBy +
		" LIMIT " + w.next(p.Limit) +
		" OFFSET " + w.next(p.Offset())

	return cache.Fetch(ctx, qc, cache.TierList, pageSQL, w.args, func(ctx context.Context) (*model.PaginatedResponse[T], error) {
		var total int
		if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return nil, fmt.Errorf("counting rows: %w", err)
		}

		rows, err := db.Query(ctx, pageSQL, w.args...)
		if err != nil {
			return nil, fmt.Errorf("listing rows: %w", err)
		}

		items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
		if err != nil {
			return nil, fmt.Errorf("collecting rows: %w", err)
		}

		return model.NewPaginatedResponse(items, p.Page, p.Limit, total), nil
	})
}

// getOne scans exactly one row into T, tagging ErrNoRows with table.
func getOne[T any](ctx context.Context, db database.Querier, table, query string, args ...any) (*T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, sqlerr.WrapNotFound(err, table)
	}
	return item, nil
}

// lookup returns {id,label} pairs cached at the lookup tier.
func lookup(ctx context.Context, db database.Querier, qc *cache.QueryCache, query string, args ...any) ([]model.LookupOption, error) {
	return cache.Fetch(ctx, qc, cache.TierLookup, query, args, func(ctx context.Context) ([]model.LookupOption, error) {
		rows, err := db.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByName[model.LookupOption])
	})
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db database.Querier, table, query string, args ...any) error {
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.WrapNotFound(pgx.ErrNoRows, table)
	}
	return nil
}
