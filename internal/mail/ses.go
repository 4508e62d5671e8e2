package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"

	"quizbook/internal/config"
)

type sesMailer struct {
	svc       sesiface.SESAPI
	from      string
	clientURL string
}

func NewSESMailer(cfg config.Mail) (Mailer, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
	if err != nil {
		return nil, fmt.Errorf("error creating AWS session: %w", err)
	}
	return newSESMailer(ses.New(sess), cfg.From, cfg.ClientURL), nil
}

func newSESMailer(svc sesiface.SESAPI, from, clientURL string) *sesMailer {
	return &sesMailer{svc: svc, from: from, clientURL: clientURL}
}

func (m *sesMailer) SendActivation(ctx context.Context, to, code string) error {
	msg := buildActivationEmail(m.clientURL, code)

	_, err := m.svc.SendEmailWithContext(ctx, sendEmailInput(m.from, to, msg))
	if err != nil {
		return fmt.Errorf("error sending activation email: %w", err)
	}
	return nil
}

func sendEmailInput(from, to string, msg message) *ses.SendEmailInput {
	return &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.HTMLBody),
				},
				Text: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.TextBody),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(msg.Subject),
			},
		},
		Source: aws.String(from),
	}
}
