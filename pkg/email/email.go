// Package email delivers outbound mail over SMTP with gomail. Crisis alerts
// to psychologists are its only producer today.
package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Alijeyrad/mindcare_backend/config"
)

var (
	ErrDisabled       = errors.New("email is disabled")
	ErrInvalidMessage = errors.New("invalid email message")
)

const defaultTimeout = 30 * time.Second

type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}

type Client struct {
	cfg config.EmailConfig
}

func New(cfg config.EmailConfig) (*Client, error) {
	if cfg.Enabled && (cfg.SMTP.Host == "" || cfg.From == "") {
		return nil, fmt.Errorf("%w: smtp host and from address are required when email is enabled", ErrInvalidMessage)
	}
	return &Client{cfg: cfg}, nil
}

// IsEnabled reports whether Send will attempt delivery.
func (c *Client) IsEnabled() bool { return c.cfg.Enabled }

// Send blocks until the SMTP exchange finishes, ctx ends or the configured
// timeout passes, whichever is first. An abandoned exchange keeps running in
// the background until the server answers.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled
	}
	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	timeout := defaultTimeout
	if s := c.cfg.SMTP.TimeoutSeconds; s > 0 {
		timeout = time.Duration(s) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := gomail.NewDialer(c.cfg.SMTP.Host, c.cfg.SMTP.Port, c.cfg.SMTP.Username, c.cfg.SMTP.Password)
	// UseTLS means implicit TLS (port 465); otherwise gomail upgrades with STARTTLS when offered
	d.SSL = c.cfg.SMTP.UseTLS
	d.TLSConfig = &tls.Config{ServerName: c.cfg.SMTP.Host, MinVersion: tls.VersionTLS12}

	done := make(chan error, 1)
	go func() { done <- d.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	subject := strings.TrimSpace(m.Subject)
	to := cleanAddrs(m.To)
	hasText := strings.TrimSpace(m.TextBody) != ""
	hasHTML := strings.TrimSpace(m.HTMLBody) != ""

	switch {
	case from == "":
		return nil, fmt.Errorf("%w: from is required", ErrInvalidMessage)
	case len(to) == 0:
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	case subject == "":
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	case !hasText && !hasHTML:
		return nil, fmt.Errorf("%w: a text or html body is required", ErrInvalidMessage)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	for k, v := range m.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			msg.SetHeader(k, v)
		}
	}

	switch {
	case hasText && hasHTML:
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case hasHTML:
		msg.SetBody("text/html", m.HTMLBody)
	default:
		msg.SetBody("text/plain", m.TextBody)
	}
	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
