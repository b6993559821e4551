package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/orizaruk/TeleWatch/internal/config"
)

// sendMailHook allows tests to override SMTP sending behavior.
var sendMailHook = sendMailSSL

// Email delivers alerts over SMTP with implicit TLS. Port 465 with a Gmail
// app password is the expected setup.
type Email struct {
	Host, From, Password string
	Port                 int
	To                   []string
}

func NewEmail(cfg config.EmailConfig) (*Email, error) {
	switch {
	case cfg.Host == "":
		return nil, &ConfigError{Channel: "email", Reason: "host is required"}
	case cfg.From == "":
		return nil, &ConfigError{Channel: "email", Reason: "from address is required"}
	case len(cfg.To) == 0:
		return nil, &ConfigError{Channel: "email", Reason: "no recipients configured"}
	}
	port := cfg.Port
	if port == 0 {
		port = 465
	}
	return &Email{Host: cfg.Host, From: cfg.From, Password: cfg.Password, Port: port, To: cfg.To}, nil
}

// Name returns the destination name.
func (e *Email) Name() string {
	_ = e
	return "Email"
}

// Send mails the alert to all recipients in a single message.
func (e *Email) Send(ctx context.Context, alert Alert) error {
	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)
	auth := smtp.PlainAuth("", e.From, e.Password, e.Host)
	subject := fmt.Sprintf("Keyword alert: %s in %s", alert.KeywordLine(), alert.Chat)
	header := fmt.Sprintf(
		"To: %s\r\nSubject: %s\r\n\r\n",
		strings.Join(e.To, ","),
		subject,
	)
	body := header + fmt.Sprintf("Matched in %s at %s\n\n%s",
		alert.Chat, alert.Time.Format(time.RFC1123), alert.Text)
	if err := sendMailHook(ctx, addr, auth, e.From, e.To, []byte(body)); err != nil {
		return classifySMTP(err)
	}
	return nil
}

// classifySMTP marks credential rejections permanent; retrying the same
// password will not go better.
func classifySMTP(err error) error {
	var tp *textproto.Error
	if errors.As(err, &tp) && (tp.Code == 534 || tp.Code == 535) {
		return Permanent(err)
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"authentication failed", "invalid credentials", "username and password not accepted"} {
		if strings.Contains(msg, marker) {
			return Permanent(err)
		}
	}
	return err
}

// sendMailSSL is smtp.SendMail over an implicit-TLS connection, which is
// what port 465 servers speak. The context bounds the dial and handshake;
// its deadline, when set, also caps the SMTP conversation so a stalled
// server cannot hold a send open past the per-attempt timeout.
func sendMailSSL(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
