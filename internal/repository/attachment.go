package repository

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/database"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const attachmentColumns = "id, consult_id, file_name, content_type, size_bytes, storage_key, uploaded_by, created_at"

// AttachmentRepository reads straight from Postgres; an upload should show
// up in the list immediately.
type AttachmentRepository struct {
	db database.Querier
}

func NewAttachmentRepository(db database.Querier) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	return getOne[model.Attachment](ctx, r.db, "attachments", `
		INSERT INTO attachments (consult_id, file_name, content_type, size_bytes, storage_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+attachmentColumns,
		a.ConsultID, a.FileName, a.ContentType, a.SizeBytes, a.StorageKey, a.UploadedBy,
	)
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	return getOne[model.Attachment](ctx, r.db, "attachments",
		`SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id)
}

func (r *AttachmentRepository) ListByConsult(ctx context.Context, consultID uuid.UUID) ([]model.Attachment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+attachmentColumns+` FROM attachments WHERE consult_id = $1 ORDER BY created_at, id`, consultID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Attachment])
}

// Delete removes the row and returns it so the caller can purge the blob.
func (r *AttachmentRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	return getOne[model.Attachment](ctx, r.db, "attachments",
		`DELETE FROM attachments WHERE id = $1 RETURNING `+attachmentColumns, id)
}
