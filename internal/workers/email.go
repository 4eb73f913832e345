package workers

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// Email is an outgoing message with text and HTML alternatives.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// ErrNoRecipient is returned for an email without a recipient.
var ErrNoRecipient = errors.New("email has no recipient")

// SMTPConfig configures SMTP delivery. An empty Host selects the log-only sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSender returns an SMTP sender, or a LogSender when no host is configured.
func NewSender(cfg SMTPConfig, logger *slog.Logger) Sender {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Host == "" {
		logger.Info("SMTP not configured, emails will be logged")
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg, logger)
}

// LogSender logs emails instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the email.
func (s *LogSender) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return ErrNoRecipient
	}
	s.logger.InfoContext(ctx, "email not sent, SMTP disabled",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}

// SMTPSender delivers multipart emails over SMTP with STARTTLS when offered.
type SMTPSender struct {
	cfg     SMTPConfig
	logger  *slog.Logger
	timeout time.Duration
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, logger: logger, timeout: 30 * time.Second}
}

// Send delivers email. Authentication is used only when a username is set.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return ErrNoRecipient
	}

	msg, err := buildMessage(s.cfg.From, email)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(email.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.logger.InfoContext(ctx, "email sent", "to", email.To, "subject", email.Subject)
	return client.Quit()
}

// buildMessage renders email as a multipart/alternative MIME message.
func buildMessage(from string, email Email) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", email.Text},
		{"text/html; charset=utf-8", email.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, fmt.Errorf("failed to build message: %w", err)
		}
		if _, err := pw.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("failed to build message: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}

	var msg bytes.Buffer
	header := func(k, v string) { msg.WriteString(k + ": " + v + "\r\n") }
	header("From", from)
	header("To", email.To)
	header("Subject", sanitizeHeader(email.Subject))
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}
