package job

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	// TaskSessionPurge deletes session rows that expired long ago.
	TaskSessionPurge = "session:purge"

	// TaskAttachmentPurge removes the stored bytes of a deleted attachment.
	TaskAttachmentPurge = "attachment:purge"
)

// AttachmentPurgePayload identifies the blob to remove.
type AttachmentPurgePayload struct {
	StorageKey string `json:"storage_key"`
}

// NewSessionPurgeTask builds the periodic cleanup task. Unique keeps two
// scheduler ticks from stacking up if the worker falls behind.
func NewSessionPurgeTask() *asynq.Task {
	return asynq.NewTask(
		TaskSessionPurge,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue("low"),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(30*time.Minute),
	)
}

// NewAttachmentPurgeTask builds a blob removal task for key.
func NewAttachmentPurgeTask(storageKey string) (*asynq.Task, error) {
	payload, err := json.Marshal(AttachmentPurgePayload{StorageKey: storageKey})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskAttachmentPurge,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue("default"),
		asynq.Timeout(time.Minute),
	), nil
}
