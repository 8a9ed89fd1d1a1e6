// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify delivers out-of-band notifications to administrators,
// most importantly the access-request email carrying approve/deny links.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is one outbound notification.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Notifier sends a notification. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPNotifier sends mail through a plain SMTP relay.
type SMTPNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSMTPNotifier returns a Notifier delivering through the given relay.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

// Send delivers one message. Blocking; callers wanting fire-and-forget
// should go through a Dispatcher.
func (n *SMTPNotifier) Send(_ context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(n.addr, n.auth, n.from, msg.To, []byte(b.String())); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// LogNotifier writes notifications to the log instead of delivering
// them. Used in development when no relay is configured, so approval
// links remain reachable from the console.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a log-only Notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Send logs the message.
func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info("notification (log only)",
		"to", strings.Join(msg.To, ", "),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
