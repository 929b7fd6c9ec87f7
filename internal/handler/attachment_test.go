package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttachments struct {
	uploaded *service.UploadInput
	content  []byte
	file     *model.Attachment
	err      error
	closed   bool
}

func (f *fakeAttachments) Upload(_ context.Context, in service.UploadInput) (*model.Attachment, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.uploaded = &in
	f.content = body
	return &model.Attachment{ID: uuid.New(), ConsultID: in.ConsultID, FileName: in.FileName, SizeBytes: int64(len(body))}, nil
}

func (f *fakeAttachments) List(_ context.Context, consultID uuid.UUID) ([]model.Attachment, error) {
	return []model.Attachment{}, f.err
}

type trackingCloser struct {
	io.Reader
	closed *bool
}

func (t trackingCloser) Close() error {
	*t.closed = true
	return nil
}

func (f *fakeAttachments) Open(_ context.Context, id uuid.UUID) (*model.Attachment, io.ReadCloser, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.file, trackingCloser{Reader: bytes.NewReader(f.content), closed: &f.closed}, nil
}

func (f *fakeAttachments) Delete(_ context.Context, id uuid.UUID) error {
	return f.err
}

func attachmentRoutes(attachments *fakeAttachments) *echo.Echo {
	s := testServer()
	e := newEcho(s)
	h := NewAttachmentHandler(s, attachments)

	g := e.Group("", asUser(staff()))
	g.POST("/consults/:id/attachments", Handle(h.Handler, h.Upload, http.StatusCreated, New[IDRequest]))
	g.GET("/attachments/:id/download", HandleFile(h.Handler, h.Download, New[IDRequest]))
	return e
}

func multipartRequest(t *testing.T, target, field, name, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestAttachmentHandler_Upload(t *testing.T) {
	attachments := &fakeAttachments{}
	e := attachmentRoutes(attachments)
	consultID := uuid.New()

	rec := serve(e, multipartRequest(t, "/consults/"+consultID.String()+"/attachments", UploadField, "notes.txt", "hello"))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, attachments.uploaded)
	assert.Equal(t, consultID, attachments.uploaded.ConsultID)
	assert.Equal(t, "notes.txt", attachments.uploaded.FileName)
	assert.Equal(t, int64(5), attachments.uploaded.Size)
	assert.NotEqual(t, uuid.Nil, attachments.uploaded.UploadedBy)
	assert.Equal(t, "hello", string(attachments.content))
}

func TestAttachmentHandler_UploadWithoutFile(t *testing.T) {
	attachments := &fakeAttachments{}
	e := attachmentRoutes(attachments)

	rec := serve(e, multipartRequest(t, "/consults/"+uuid.NewString()+"/attachments", "", "", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{UploadField}, fields(decodeError(t, rec)))
	assert.Nil(t, attachments.uploaded)
}

func TestAttachmentHandler_UploadTooLarge(t *testing.T) {
	attachments := &fakeAttachments{err: errs.NewPayloadTooLargeError("File exceeds the maximum upload size")}
	e := attachmentRoutes(attachments)

	rec := serve(e, multipartRequest(t, "/consults/"+uuid.NewString()+"/attachments", UploadField, "big.bin", "xxxx"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAttachmentHandler_Download(t *testing.T) {
	attachments := &fakeAttachments{
		content: []byte("report body"),
		file:    &model.Attachment{FileName: "Q1 report.pdf", ContentType: "application/pdf", SizeBytes: 11},
	}
	e := attachmentRoutes(attachments)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/attachments/"+uuid.NewString()+"/download", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "11", rec.Header().Get(echo.HeaderContentLength))
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentDisposition), "attachment;"))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `filename="Q1 report.pdf"`)
	assert.Equal(t, "report body", rec.Body.String())
	assert.True(t, attachments.closed)
}

func TestAttachmentHandler_DownloadMissing(t *testing.T) {
	attachments := &fakeAttachments{err: errs.NewNotFoundError("Attachment not found", true, nil)}
	e := attachmentRoutes(attachments)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/attachments/"+uuid.NewString()+"/download", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
