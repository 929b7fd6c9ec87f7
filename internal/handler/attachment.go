package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UploadField is the multipart field carrying the file.
const UploadField = "file"

type attachmentService interface {
	Upload(ctx context.Context, in service.UploadInput) (*model.Attachment, error)
	List(ctx context.Context, consultID uuid.UUID) ([]model.Attachment, error)
	Open(ctx context.Context, id uuid.UUID) (*model.Attachment, io.ReadCloser, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AttachmentHandler struct {
	Handler
	attachments attachmentService
}

func NewAttachmentHandler(s *server.Server, attachments attachmentService) *AttachmentHandler {
	return &AttachmentHandler{Handler: NewHandler(s), attachments: attachments}
}

func (h *AttachmentHandler) List(c echo.Context, req *IDRequest) ([]model.Attachment, error) {
	return h.attachments.List(c.Request().Context(), req.UUID())
}

func (h *AttachmentHandler) Upload(c echo.Context, req *IDRequest) (*model.Attachment, error) {
	fh, err := c.FormFile(UploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errs.FieldValidationError(UploadField, "is required")
		}
		return nil, errs.NewBadRequestError("Malformed multipart upload", true, nil, nil, nil)
	}

	body, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer body.Close()

	return h.attachments.Upload(c.Request().Context(), service.UploadInput{
		ConsultID:   req.UUID(),
		UploadedBy:  middleware.GetUserUUID(c),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        body,
	})
}

func (h *AttachmentHandler) Download(c echo.Context, req *IDRequest) (*File, error) {
	a, body, err := h.attachments.Open(c.Request().Context(), req.UUID())
	if err != nil {
		return nil, err
	}

	return &File{
		Name:        a.FileName,
		ContentType: a.ContentType,
		Size:        a.SizeBytes,
		Body:        body,
	}, nil
}

func (h *AttachmentHandler) Delete(c echo.Context, req *IDRequest) error {
	return h.attachments.Delete(c.Request().Context(), req.UUID())
}
