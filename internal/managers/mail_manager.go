package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"server-identity/internal/config"
)

// MailMgr outlines the contract for email delivery. Failures are reported
// to the caller but the callers of this interface run on the background
// worker, never on a request path.
type MailMgr interface {
	SendVerificationMail(email, username, token string) error
	SendPasswordResetMail(email, token string) error
}

// MailManager delivers mail through Mailgun, with bodies rendered by
// Hermes.
type MailManager struct {
	hermes     *hermes.Hermes
	mailgun    *mailgun.MailgunImpl
	from       string
	clientURL  string
	production bool
}

// NewMailManager initializes a MailManager from the process configuration.
// Outside of production the manager renders but does not send, so local
// registration flows complete without a Mailgun account.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")
	if !cfg.IsProduction() {
		log.Info("Running in development mode, email will not be sent to users")
	}

	return &MailManager{
		hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name: "Server Identity",
				Link: cfg.ClientURL,
			},
		},
		mailgun:    mailgun.NewMailgun(cfg.MailDomain, cfg.MailgunAPIKey),
		from:       cfg.MailFrom,
		clientURL:  cfg.ClientURL,
		production: cfg.IsProduction(),
	}
}

// SendVerificationMail sends the email-verification link for a freshly
// registered or still unverified account.
func (mm *MailManager) SendVerificationMail(email, username, token string) error {
	body := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Welcome! We're very excited to have you on board.",
				"To finish setting up your account, please confirm your email address.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to verify your email address:",
					Button: hermes.Button{
						Text: "Verify email",
						Link: fmt.Sprintf("%s/verify-email?token=%s", mm.clientURL, token),
					},
				},
			},
			Outros: []string{
				"If you did not create an account, no further action is required.",
			},
		},
	}
	return mm.send(email, "Verify your email address", body)
}

// SendPasswordResetMail sends the password-reset link.
func (mm *MailManager) SendPasswordResetMail(email, token string) error {
	body := hermes.Email{
		Body: hermes.Body{
			Intros: []string{
				"You have received this email because a password reset request for your account was received.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to reset your password:",
					Button: hermes.Button{
						Text: "Reset password",
						Link: fmt.Sprintf("%s/reset-password?token=%s", mm.clientURL, token),
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no further action is required. The link expires after one hour.",
			},
		},
	}
	return mm.send(email, "Reset your password", body)
}

func (mm *MailManager) send(email, subject string, body hermes.Email) error {
	html, err := mm.hermes.GenerateHTML(body)
	if err != nil {
		return err
	}

	if !mm.production {
		log.Infof("Skipping mail %q to %s in development mode", subject, email)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message := mm.mailgun.NewMessage(mm.from, subject, "", email)
	message.SetHtml(html)
	if _, _, err := mm.mailgun.Send(ctx, message); err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debug("Mail sent to ", email)
	return nil
}
