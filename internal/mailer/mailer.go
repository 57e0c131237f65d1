// SPDX-License-Identifier: MIT

// Package mailer sends verification emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/url"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds SMTP delivery configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	StartTLS bool
}

// SMTPSender delivers mail through an SMTP relay using go-mail.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one message. A new connection is dialed per message; the
// dispatcher in this package keeps the send rate low enough for that to be
// acceptable.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("mailer: from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mailer: to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.StartTLS {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.NoTLS))
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mailer: client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}

// VerificationBody renders the verification mail body with the signed link.
func VerificationBody(baseURL, token string) string {
	link := fmt.Sprintf("%s/contacts/verify?token=%s", baseURL, url.QueryEscape(token))
	return fmt.Sprintf(`Please verify your email: <a href=%q>%s</a>`, link, link)
}

// VerificationSubject is the subject line of verification mails.
const VerificationSubject = "Verify your email"
