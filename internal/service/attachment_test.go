package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type attachmentFixture struct {
	svc         *AttachmentService
	attachments *MockAttachmentStore
	consults    *MockConsultStore
	queue       *MockPurgeQueue
	blobs       *memStore
}

func newAttachmentService(t *testing.T, maxBytes int64) *attachmentFixture {
	t.Helper()
	f := &attachmentFixture{
		attachments: new(MockAttachmentStore),
		consults:    new(MockConsultStore),
		queue:       new(MockPurgeQueue),
		blobs:       newMemStore(),
	}
	purger := &BlobPurger{blobs: f.blobs, queue: f.queue, logger: &nopLogger}
	f.svc = NewAttachmentService(f.attachments, f.consults, f.blobs, purger, maxBytes)
	return f
}

func TestStorageKey(t *testing.T) {
	consultID := uuid.New()
	key := StorageKey(consultID, "../../etc/My Report.pdf")

	assert.True(t, strings.HasPrefix(key, "consults/"+consultID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, "-My_Report.pdf"))
	assert.NotEqual(t, key, StorageKey(consultID, "../../etc/My Report.pdf"))
}

func TestAttachmentService_Upload(t *testing.T) {
	f := newAttachmentService(t, 1024)
	consultID, uploader := uuid.New(), uuid.New()

	f.consults.On("GetByID", mock.Anything, consultID).Return(&model.Consult{}, nil)
	f.attachments.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Attachment) bool {
		return a.SizeBytes == 5 && a.ContentType == "application/octet-stream" && *a.UploadedBy == uploader
	})).Return(&model.Attachment{FileName: "notes.txt", SizeBytes: 5}, nil)

	att, err := f.svc.Upload(context.Background(), UploadInput{
		ConsultID:  consultID,
		UploadedBy: uploader,
		FileName:   "notes.txt",
		Size:       5,
		Body:       strings.NewReader("hello"),
	})

	require.NoError(t, err)
	assert.Equal(t, "notes.txt", att.FileName)
	assert.Equal(t, 1, f.blobs.len())
}

func TestAttachmentService_Upload_TooLarge(t *testing.T) {
	t.Run("declared size", func(t *testing.T) {
		f := newAttachmentService(t, 4)
		consultID := uuid.New()
		f.consults.On("GetByID", mock.Anything, consultID).Return(&model.Consult{}, nil)

		_, err := f.svc.Upload(context.Background(), UploadInput{ConsultID: consultID, Size: 10, Body: strings.NewReader("0123456789")})
		requireStatus(t, err, http.StatusRequestEntityTooLarge)
		assert.Equal(t, 0, f.blobs.len())
	})

	t.Run("actual bytes", func(t *testing.T) {
		f := newAttachmentService(t, 4)
		consultID := uuid.New()
		f.consults.On("GetByID", mock.Anything, consultID).Return(&model.Consult{}, nil)

		_, err := f.svc.Upload(context.Background(), UploadInput{ConsultID: consultID, Size: 1, Body: strings.NewReader("0123456789")})
		requireStatus(t, err, http.StatusRequestEntityTooLarge)
		assert.Equal(t, 0, f.blobs.len())
		f.attachments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAttachmentService_Upload_RowFailureDiscardsBlob(t *testing.T) {
	f := newAttachmentService(t, 1024)
	consultID := uuid.New()
	f.consults.On("GetByID", mock.Anything, consultID).Return(&model.Consult{}, nil)
	f.attachments.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed"))

	_, err := f.svc.Upload(context.Background(), UploadInput{ConsultID: consultID, FileName: "a.txt", Body: strings.NewReader("abc")})
	require.Error(t, err)
	assert.Equal(t, 0, f.blobs.len())
}

func TestAttachmentService_Upload_UnknownConsult(t *testing.T) {
	f := newAttachmentService(t, 1024)
	consultID := uuid.New()
	f.consults.On("GetByID", mock.Anything, consultID).Return(nil, sqlerr.WrapNotFound(pgx.ErrNoRows, "consults"))

	_, err := f.svc.Upload(context.Background(), UploadInput{ConsultID: consultID, Body: strings.NewReader("abc")})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestAttachmentService_Open(t *testing.T) {
	f := newAttachmentService(t, 1024)
	id := uuid.New()
	_, err := f.blobs.Put(context.Background(), "consults/x/1-a.txt", strings.NewReader("abc"), "text/plain")
	require.NoError(t, err)

	f.attachments.On("GetByID", mock.Anything, id).Return(&model.Attachment{StorageKey: "consults/x/1-a.txt"}, nil).Once()

	_, rc, err := f.svc.Open(context.Background(), id)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "abc", string(data))

	f.attachments.On("GetByID", mock.Anything, id).Return(&model.Attachment{StorageKey: "consults/x/missing.txt"}, nil).Once()
	_, _, err = f.svc.Open(context.Background(), id)
	requireStatus(t, err, http.StatusNotFound)
}

func TestAttachmentService_Delete_EnqueuesPurge(t *testing.T) {
	f := newAttachmentService(t, 1024)
	id := uuid.New()

	f.attachments.On("Delete", mock.Anything, id).Return(&model.Attachment{StorageKey: "consults/x/1-a.txt"}, nil)
	f.queue.On("EnqueueAttachmentPurge", mock.Anything, "consults/x/1-a.txt").Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), id))
	f.queue.AssertExpectations(t)
	assert.Empty(t, f.blobs.deleted)
}
