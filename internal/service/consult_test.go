package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var slotStart = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newConsultService(t *testing.T) (*ConsultService, *MockConsultStore, *MockPurgeQueue, *memStore) {
	t.Helper()
	consults := new(MockConsultStore)
	queue := new(MockPurgeQueue)
	blobs := newMemStore()
	purger := &BlobPurger{blobs: blobs, queue: queue, logger: &nopLogger}
	return NewConsultService(consults, purger), consults, queue, blobs
}

func consultInput() ConsultInput {
	return ConsultInput{
		ConsultantID: uuid.New(),
		ClientID:     uuid.New(),
		Title:        " Intake ",
		StartsAt:     slotStart,
		EndsAt:       slotStart.Add(time.Hour),
	}
}

func TestConsultService_Create(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)
	actor := uuid.New()
	in := consultInput()

	consults.On("HasOverlap", mock.Anything, in.ConsultantID, in.StartsAt, in.EndsAt, (*uuid.UUID)(nil)).Return(false, nil)
	consults.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Consult) bool {
		return c.Status == model.ConsultStatusScheduled && c.Title == "Intake" && *c.CreatedBy == actor
	})).Return(&model.Consult{Title: "Intake"}, nil)

	_, err := svc.Create(context.Background(), actor, in)
	require.NoError(t, err)
	consults.AssertExpectations(t)
}

func TestConsultService_Create_InvalidTimes(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)

	in := consultInput()
	in.EndsAt = in.StartsAt
	_, err := svc.Create(context.Background(), uuid.New(), in)
	requireStatus(t, err, http.StatusBadRequest)

	in = consultInput()
	in.EndsAt = in.StartsAt.Add(25 * time.Hour)
	_, err = svc.Create(context.Background(), uuid.New(), in)
	requireStatus(t, err, http.StatusBadRequest)

	in = consultInput()
	in.Status = "postponed"
	_, err = svc.Create(context.Background(), uuid.New(), in)
	requireStatus(t, err, http.StatusBadRequest)

	consults.AssertNotCalled(t, "HasOverlap", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConsultService_Create_Overlap(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)
	in := consultInput()

	consults.On("HasOverlap", mock.Anything, in.ConsultantID, in.StartsAt, in.EndsAt, (*uuid.UUID)(nil)).Return(true, nil)

	_, err := svc.Create(context.Background(), uuid.New(), in)
	httpErr := requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, CodeConsultConflict, httpErr.Code)
	consults.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConsultService_Create_CancelledSkipsOverlap(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)
	in := consultInput()
	in.Status = model.ConsultStatusCancelled

	consults.On("Create", mock.Anything, mock.Anything).Return(&model.Consult{}, nil)

	_, err := svc.Create(context.Background(), uuid.New(), in)
	require.NoError(t, err)
	consults.AssertNotCalled(t, "HasOverlap", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConsultService_Update_ExcludesItself(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)
	id := uuid.New()
	in := consultInput()

	existing := &model.Consult{Status: model.ConsultStatusScheduled}
	existing.ID = id
	consults.On("GetByID", mock.Anything, id).Return(existing, nil)
	consults.On("HasOverlap", mock.Anything, in.ConsultantID, in.StartsAt, in.EndsAt, &id).Return(false, nil)
	consults.On("Update", mock.Anything, existing).Return(existing, nil)

	_, err := svc.Update(context.Background(), id, in)
	require.NoError(t, err)
	consults.AssertExpectations(t)
}

func TestConsultService_Update_KeepsStatusWhenOmitted(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)
	id := uuid.New()
	in := consultInput()
	in.Notes = "client confirmed by phone"

	existing := &model.Consult{Status: model.ConsultStatusCompleted}
	existing.ID = id
	consults.On("GetByID", mock.Anything, id).Return(existing, nil)
	consults.On("HasOverlap", mock.Anything, in.ConsultantID, in.StartsAt, in.EndsAt, &id).Return(false, nil)
	consults.On("Update", mock.Anything, mock.MatchedBy(func(c *model.Consult) bool {
		return c.Status == model.ConsultStatusCompleted && c.Notes == in.Notes
	})).Return(existing, nil)

	updated, err := svc.Update(context.Background(), id, in)
	require.NoError(t, err)
	assert.Equal(t, model.ConsultStatusCompleted, updated.Status)
	consults.AssertExpectations(t)
}

func TestConsultService_Update_ExplicitStatusWins(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)
	id := uuid.New()
	in := consultInput()
	in.Status = model.ConsultStatusCancelled

	existing := &model.Consult{Status: model.ConsultStatusScheduled}
	existing.ID = id
	consults.On("GetByID", mock.Anything, id).Return(existing, nil)
	consults.On("Update", mock.Anything, mock.MatchedBy(func(c *model.Consult) bool {
		return c.Status == model.ConsultStatusCancelled
	})).Return(existing, nil)

	_, err := svc.Update(context.Background(), id, in)
	require.NoError(t, err)
	consults.AssertNotCalled(t, "HasOverlap", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConsultService_Create_ConcurrentBookingHitsConstraint(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)
	in := consultInput()

	// Another request booked the slot between the check and the insert.
	consults.On("HasOverlap", mock.Anything, in.ConsultantID, in.StartsAt, in.EndsAt, (*uuid.UUID)(nil)).Return(false, nil)
	consults.On("Create", mock.Anything, mock.Anything).Return(nil, &pgconn.PgError{
		Code:           "23P01",
		TableName:      "consults",
		ConstraintName: sqlerr.ConsultOverlapConstraint,
	})

	_, err := svc.Create(context.Background(), uuid.New(), in)
	require.Error(t, err)

	httpErr := requireStatus(t, sqlerr.HandleError(err), http.StatusConflict)
	assert.Equal(t, CodeConsultConflict, httpErr.Code)
}

func TestConsultService_UpdateStatus(t *testing.T) {
	t.Run("cancelling never checks overlap", func(t *testing.T) {
		svc, consults, _, _ := newConsultService(t)
		id := uuid.New()
		consults.On("GetByID", mock.Anything, id).Return(&model.Consult{Status: model.ConsultStatusScheduled}, nil)
		consults.On("UpdateStatus", mock.Anything, id, model.ConsultStatusCancelled).Return(&model.Consult{}, nil)

		_, err := svc.UpdateStatus(context.Background(), id, model.ConsultStatusCancelled)
		require.NoError(t, err)
		consults.AssertNotCalled(t, "HasOverlap", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reviving a cancelled consult rechecks the slot", func(t *testing.T) {
		svc, consults, _, _ := newConsultService(t)
		id := uuid.New()
		c := &model.Consult{
			ConsultantID: uuid.New(),
			Status:       model.ConsultStatusCancelled,
			StartsAt:     slotStart,
			EndsAt:       slotStart.Add(time.Hour),
		}
		consults.On("GetByID", mock.Anything, id).Return(c, nil)
		consults.On("HasOverlap", mock.Anything, c.ConsultantID, c.StartsAt, c.EndsAt, &id).Return(true, nil)

		_, err := svc.UpdateStatus(context.Background(), id, model.ConsultStatusScheduled)
		requireStatus(t, err, http.StatusConflict)
		consults.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, _, _, _ := newConsultService(t)
		_, err := svc.UpdateStatus(context.Background(), uuid.New(), "done")
		requireStatus(t, err, http.StatusBadRequest)
	})
}

func TestConsultService_Events_Window(t *testing.T) {
	svc, consults, _, _ := newConsultService(t)

	_, err := svc.Events(context.Background(), slotStart, slotStart, nil)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = svc.Events(context.Background(), slotStart, slotStart.Add(367*24*time.Hour), nil)
	requireStatus(t, err, http.StatusBadRequest)

	end := slotStart.Add(7 * 24 * time.Hour)
	consults.On("Events", mock.Anything, slotStart, end, (*uuid.UUID)(nil)).Return([]model.CalendarEvent{{Title: "Intake"}}, nil)

	events, err := svc.Events(context.Background(), slotStart, end, nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestConsultService_Delete_PurgesBlobs(t *testing.T) {
	svc, consults, queue, blobs := newConsultService(t)
	id := uuid.New()

	consults.On("Delete", mock.Anything, id).Return([]string{"consults/a/1-x.pdf", "consults/a/2-y.pdf"}, nil)
	queue.On("EnqueueAttachmentPurge", mock.Anything, "consults/a/1-x.pdf").Return(nil)
	queue.On("EnqueueAttachmentPurge", mock.Anything, "consults/a/2-y.pdf").Return(errors.New("redis down"))

	require.NoError(t, svc.Delete(context.Background(), id))

	queue.AssertExpectations(t)
	assert.Equal(t, []string{"consults/a/2-y.pdf"}, blobs.deleted)
}
