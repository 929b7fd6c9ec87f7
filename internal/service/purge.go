package service

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/lib/blob"
	"github.com/deppfellow/consultdesk/internal/lib/job"
	"github.com/rs/zerolog"
)

type purgeQueue interface {
	EnqueueAttachmentPurge(ctx context.Context, storageKey string) error
}

// BlobPurger removes attachment bytes after their rows are gone. Removal is
// queued on the job server and done inline when queueing fails.
type BlobPurger struct {
	blobs  blob.Store
	queue  purgeQueue
	logger *zerolog.Logger
}

func NewBlobPurger(blobs blob.Store, jobs *job.JobService, logger *zerolog.Logger) *BlobPurger {
	p := &BlobPurger{blobs: blobs, logger: logger}
	if jobs != nil {
		p.queue = jobs
	}
	return p
}

// Purge never fails: the database is the source of truth, so an orphaned
// blob is only logged.
func (p *BlobPurger) Purge(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if p.queue != nil {
			err := p.queue.EnqueueAttachmentPurge(ctx, key)
			if err == nil {
				continue
			}
			p.logger.Warn().Err(err).Str("key", key).Msg("failed to enqueue attachment purge, deleting inline")
		}

		if err := p.blobs.Delete(ctx, key); err != nil {
			p.logger.Error().Err(err).Str("key", key).Msg("failed to delete attachment blob")
		}
	}
}
