package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/lib/blob"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultContentType = "application/octet-stream"

type AttachmentService struct {
	attachments attachmentStore
	consults    consultStore
	blobs       blob.Store
	purger      *BlobPurger
	maxBytes    int64
}

func NewAttachmentService(attachments attachmentStore, consults consultStore, blobs blob.Store, purger *BlobPurger, maxBytes int64) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		consults:    consults,
		blobs:       blobs,
		purger:      purger,
		maxBytes:    maxBytes,
	}
}

type UploadInput struct {
	ConsultID   uuid.UUID
	UploadedBy  uuid.UUID
	FileName    string
	ContentType string
	// Size is the size the client declared; the stored byte count is
	// enforced independently.
	Size int64
	Body io.Reader
}

func (s *AttachmentService) tooLarge() error {
	return errs.NewPayloadTooLargeError(fmt.Sprintf("File exceeds the maximum upload size of %d bytes", s.maxBytes))
}

func StorageKey(consultID uuid.UUID, fileName string) string {
	return fmt.Sprintf("consults/%s/%s-%s", consultID, uuid.NewString(), blob.SanitizeName(fileName))
}

func (s *AttachmentService) Upload(ctx context.Context, in UploadInput) (*model.Attachment, error) {
	if _, err := s.consults.GetByID(ctx, in.ConsultID); err != nil {
		return nil, err
	}

	if in.Size > s.maxBytes {
		return nil, s.tooLarge()
	}

	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	key := StorageKey(in.ConsultID, in.FileName)

	written, err := s.blobs.Put(ctx, key, io.LimitReader(in.Body, s.maxBytes+1), contentType)
	if err != nil {
		return nil, errors.Wrap(err, "storing attachment")
	}

	if written > s.maxBytes {
		s.discard(ctx, key)
		return nil, s.tooLarge()
	}

	uploader := in.UploadedBy
	att, err := s.attachments.Create(ctx, &model.Attachment{
		ConsultID:   in.ConsultID,
		FileName:    strings.TrimSpace(in.FileName),
		ContentType: contentType,
		SizeBytes:   written,
		StorageKey:  key,
		UploadedBy:  &uploader,
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}

	return att, nil
}

func (s *AttachmentService) discard(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.purger.logger.Warn().Err(err).Str("key", key).Msg("failed to discard attachment blob")
	}
}

func (s *AttachmentService) List(ctx context.Context, consultID uuid.UUID) ([]model.Attachment, error) {
	if _, err := s.consults.GetByID(ctx, consultID); err != nil {
		return nil, err
	}
	return s.attachments.ListByConsult(ctx, consultID)
}

// Open returns the attachment row and a reader over its bytes. The caller
// closes the reader.
func (s *AttachmentService) Open(ctx context.Context, id uuid.UUID) (*model.Attachment, io.ReadCloser, error) {
	att, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Get(ctx, att.StorageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, errs.NewNotFoundError("Attachment file not found", true, nil)
		}
		return nil, nil, err
	}

	return att, rc, nil
}

func (s *AttachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	att, err := s.attachments.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.purger.Purge(ctx, att.StorageKey)
	return nil
}
