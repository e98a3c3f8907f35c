package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"server-identity/internal/repositories"
)

// CleanupJob garbage-collects token rows that can never be consumed again:
// expired ones and already-used ones. Both sweeps are idempotent; rows
// consumed or deleted between scheduling and execution simply do not match.
type CleanupJob struct {
	tokens *repositories.TokenRepository
}

func NewCleanupJob(tokens *repositories.TokenRepository) *CleanupJob {
	return &CleanupJob{tokens: tokens}
}

// HandleExpired deletes every token past its expiry.
func (j *CleanupJob) HandleExpired(ctx context.Context, _ *asynq.Task) error {
	rows, err := j.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Error("Expired token sweep failed: ", err)
		return err
	}
	log.Infof("Expired token sweep removed %d rows", rows)
	return nil
}

// HandleUsed deletes every token that has already been consumed.
func (j *CleanupJob) HandleUsed(ctx context.Context, _ *asynq.Task) error {
	rows, err := j.tokens.DeleteUsed(ctx)
	if err != nil {
		log.Error("Used token sweep failed: ", err)
		return err
	}
	log.Infof("Used token sweep removed %d rows", rows)
	return nil
}
