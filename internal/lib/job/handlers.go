package job

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/consultdesk/internal/lib/blob"
	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

// SessionPurger deletes sessions that expired before the cutoff.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// InitHandlers wires the dependencies task handlers need. It must run
// before Start.
func (j *JobService) InitHandlers(sessions SessionPurger, blobs blob.Store) {
	j.sessions = sessions
	j.blobs = blobs
}

func (j *JobService) handleSessionPurgeTask(ctx context.Context, _ *asynq.Task) error {
	cutoff := time.Now().Add(-j.cfg.Jobs.SessionRetention)

	deleted, err := j.sessions.PurgeExpired(ctx, cutoff)
	if err != nil {
		j.logger.Error().
			Str("type", TaskSessionPurge).
			Err(err).
			Msg("failed to purge expired sessions")
		return err
	}

	j.logger.Info().
		Str("type", TaskSessionPurge).
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("purged expired sessions")

	return nil
}

func (j *JobService) handleAttachmentPurgeTask(ctx context.Context, t *asynq.Task) error {
	var p AttachmentPurgePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A malformed payload will never succeed; do not retry it.
		return fmt.Errorf("failed to unmarshal attachment purge payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := j.blobs.Delete(ctx, p.StorageKey); err != nil {
		j.logger.Error().
			Str("type", TaskAttachmentPurge).
			Str("key", p.StorageKey).
			Err(err).
			Msg("failed to remove attachment blob")
		return err
	}

	j.logger.Info().
		Str("type", TaskAttachmentPurge).
		Str("key", p.StorageKey).
		Msg("removed attachment blob")

	return nil
}
