// AngelaMos | 2026
// mail.go

package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/carterperez-dev/enhancify/internal/config"
)

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	addr string
	auth smtp.Auth
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, msg.From, msg.To, encode(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mail not delivered, smtp disabled",
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
	)
	return nil
}

// NewSender picks SMTP delivery when a host is configured.
func NewSender(cfg config.MailConfig, logger *slog.Logger) Sender {
	if cfg.Host == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg)
}

type Mailer struct {
	from   string
	sender Sender
}

func NewMailer(cfg config.MailConfig, sender Sender) *Mailer {
	return &Mailer{from: cfg.From, sender: sender}
}

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #4338CA;">Password Reset Request</h2>
  <p>Hi {{.Name}},</p>
  <p>We received a request to reset the password for your Enhancify.AI account.
  The link below is valid for one hour.</p>
  <p><a href="{{.Link}}" style="display: inline-block; padding: 12px 32px; background: #4338CA; color: #fff; text-decoration: none; border-radius: 6px;">Reset Password</a></p>
  <p>If the button does not work, paste this address into your browser:<br>{{.Link}}</p>
  <p>If you did not ask for this, you can ignore this email.</p>
</body>
</html>`))

func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, link string) error {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct {
		Name string
		Link string
	}{Name: name, Link: link}); err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	return m.sender.Send(ctx, Message{
		From:    m.from,
		To:      []string{to},
		Subject: "Password Reset Request - Enhancify.AI",
		HTML:    body.String(),
	})
}

func encode(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ","))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
