// Package job runs background work on asynq, backed by the same Redis as
// the query cache.
//
// The client enqueues tasks, the server executes them, and the scheduler
// enqueues the periodic session purge.
package job

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/deppfellow/consultdesk/internal/lib/blob"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type JobService struct {
	// Client enqueues tasks.
	Client *asynq.Client

	server    *asynq.Server
	scheduler *asynq.Scheduler
	cfg       *config.Config
	logger    *zerolog.Logger

	sessions SessionPurger
	blobs    blob.Store
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	opt := redisOpt(&cfg.Redis)

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Jobs.Concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		LogLevel: asynq.WarnLevel,
	})

	return &JobService{
		Client:    asynq.NewClient(opt),
		server:    server,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
	}
}

// Mux routes task types to handlers.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSessionPurge, j.handleSessionPurgeTask)
	mux.HandleFunc(TaskAttachmentPurge, j.handleAttachmentPurgeTask)
	return mux
}

// Start launches workers and the scheduler. Neither call blocks.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(j.Mux()); err != nil {
		return err
	}

	if spec := j.cfg.Jobs.SessionPurgeSpec; spec != "" {
		if _, err := j.scheduler.Register(spec, NewSessionPurgeTask()); err != nil {
			return err
		}
	}

	return j.scheduler.Start()
}

// EnqueueAttachmentPurge queues removal of a blob.
func (j *JobService) EnqueueAttachmentPurge(ctx context.Context, storageKey string) error {
	task, err := NewAttachmentPurgeTask(storageKey)
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	j.logger.Debug().
		Str("type", TaskAttachmentPurge).
		Str("task_id", info.ID).
		Msg("enqueued attachment purge")

	return nil
}

// Stop shuts down the scheduler and workers and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.scheduler.Shutdown()
	j.server.Shutdown()
	_ = j.Client.Close()
}
