// Package jobs carries work off the request path: email delivery and the
// nightly token sweeps both run on the background worker, queued through
// Redis.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names, shared between the enqueueing server and the worker.
const (
	TaskEmailDeliver       = "email:deliver"
	TaskTokensCleanExpired = "tokens:clean_expired"
	TaskTokensCleanUsed    = "tokens:clean_used"
)

// Email kinds. They select the template on the worker side.
const (
	EmailKindVerify        = "VerifyEmail"
	EmailKindResetPassword = "ResetPassword"
)

// EmailPayload describes one email to deliver.
type EmailPayload struct {
	To       string `json:"to"`
	Kind     string `json:"kind"`
	Username string `json:"username,omitempty"`
	Token    string `json:"token"`
}

// Dispatcher hands an email delivery to the background queue. The request
// path treats dispatch as fire-and-forget: callers log a failed dispatch
// and carry on.
type Dispatcher interface {
	DispatchEmail(ctx context.Context, payload EmailPayload) error
}

// NewEmailTask builds the asynq task for an email delivery.
func NewEmailTask(payload EmailPayload) (*asynq.Task, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEmailDeliver, encoded, asynq.MaxRetry(5), asynq.Queue("mail")), nil
}

// AsynqDispatcher enqueues email tasks on the Redis-backed queue.
type AsynqDispatcher struct {
	client *asynq.Client
}

// NewAsynqDispatcher constructs a dispatcher from the queue client.
func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

// DispatchEmail enqueues the delivery.
func (d *AsynqDispatcher) DispatchEmail(ctx context.Context, payload EmailPayload) error {
	task, err := NewEmailTask(payload)
	if err != nil {
		return err
	}
	_, err = d.client.EnqueueContext(ctx, task)
	return err
}
