package mail

import (
	"context"
	"fmt"
	"log"

	"quizbook/internal/config"
)

// Mailer delivers account e-mails.
type Mailer interface {
	SendActivation(ctx context.Context, to, code string) error
}

type message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

func activationLink(clientURL, code string) string {
	return fmt.Sprintf("%s/verify/%s", clientURL, code)
}

func buildActivationEmail(clientURL, code string) message {
	link := activationLink(clientURL, code)
	return message{
		Subject: "Activate your account",
		HTMLBody: fmt.Sprintf(
			"<h1>Welcome!</h1><p>Follow the link to activate your account:</p><p><a href=\"%s\">%s</a></p>", link, link),
		TextBody: fmt.Sprintf("Follow the link to activate your account: %s", link),
	}
}

// New picks the sender named by MAIL_DRIVER. Anything other than "ses" logs
// the activation link instead of sending it.
func New(cfg config.Mail) (Mailer, error) {
	switch cfg.Driver {
	case "ses":
		return NewSESMailer(cfg)
	case "log", "":
		return NewLogMailer(cfg.ClientURL), nil
	default:
		log.Printf("unknown mail driver %q, falling back to log", cfg.Driver)
		return NewLogMailer(cfg.ClientURL), nil
	}
}

type logMailer struct {
	clientURL string
}

func NewLogMailer(clientURL string) Mailer {
	return &logMailer{clientURL: clientURL}
}

func (m *logMailer) SendActivation(ctx context.Context, to, code string) error {
	log.Printf("activation link for %s: %s", to, activationLink(m.clientURL, code))
	return nil
}
