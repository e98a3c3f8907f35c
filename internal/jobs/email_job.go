package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"server-identity/internal/managers"
)

// EmailJob delivers queued emails through the mail manager.
type EmailJob struct {
	mail managers.MailMgr
}

func NewEmailJob(mail managers.MailMgr) *EmailJob {
	return &EmailJob{mail: mail}
}

// Handle fulfils the asynq.HandlerFunc contract. Payloads that cannot be
// decoded or name an unknown kind are dropped instead of retried.
func (j *EmailJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error("Dropping undecodable email task: ", err)
		return asynq.SkipRetry
	}

	switch payload.Kind {
	case EmailKindVerify:
		return j.mail.SendVerificationMail(payload.To, payload.Username, payload.Token)
	case EmailKindResetPassword:
		return j.mail.SendPasswordResetMail(payload.To, payload.Token)
	default:
		log.Errorf("Dropping email task with unknown kind %q", payload.Kind)
		return fmt.Errorf("unknown email kind %q: %w", payload.Kind, asynq.SkipRetry)
	}
}
