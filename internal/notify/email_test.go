package notify

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/orizaruk/TeleWatch/internal/config"
)

func emailCfg() config.EmailConfig {
	return config.EmailConfig{
		Enabled:  true,
		Host:     "smtp.gmail.com",
		Port:     465,
		From:     "me@example.com",
		Password: "app-pass",
		To:       []string{"me@example.com", "backup@example.com"},
	}
}

func TestEmailSend(t *testing.T) {
	var sentAddr, sentFrom string
	var sentTo []string
	var sentMsg []byte
	old := sendMailHook
	sendMailHook = func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sentAddr = addr
		sentFrom = from
		sentTo = to
		sentMsg = msg
		return nil
	}
	defer func() { sendMailHook = old }()

	e, err := NewEmail(emailCfg())
	if err != nil {
		t.Fatalf("NewEmail failed: %v", err)
	}
	if err := e.Send(context.Background(), testAlert()); err != nil {
		t.Fatalf("email send failed: %v", err)
	}
	if sentAddr != "smtp.gmail.com:465" || sentFrom != "me@example.com" || len(sentTo) != 2 {
		t.Fatalf("unexpected send args: %v %v %v", sentAddr, sentFrom, sentTo)
	}
	msg := string(sentMsg)
	if !strings.Contains(msg, "Subject: Keyword alert: python, remote in Jobs Channel\r\n") {
		t.Fatalf("missing subject line in %q", msg)
	}
	if !strings.Contains(msg, "Senior Python Engineer, remote") {
		t.Fatalf("missing message text in %q", msg)
	}
}

func TestNewEmailDefaultsPort(t *testing.T) {
	cfg := emailCfg()
	cfg.Port = 0
	e, err := NewEmail(cfg)
	if err != nil {
		t.Fatalf("NewEmail failed: %v", err)
	}
	if e.Port != 465 {
		t.Fatalf("expected port 465 default, got %d", e.Port)
	}
}

func TestNewEmailValidation(t *testing.T) {
	cases := []func(*config.EmailConfig){
		func(c *config.EmailConfig) { c.Host = "" },
		func(c *config.EmailConfig) { c.From = "" },
		func(c *config.EmailConfig) { c.To = nil },
	}
	for i, mutate := range cases {
		cfg := emailCfg()
		mutate(&cfg)
		_, err := NewEmail(cfg)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("case %d: expected ConfigError, got %v", i, err)
		}
	}
}

func TestEmailAuthFailureIsPermanent(t *testing.T) {
	old := sendMailHook
	sendMailHook = func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}
	}
	defer func() { sendMailHook = old }()

	e, _ := NewEmail(emailCfg())
	err := e.Send(context.Background(), testAlert())
	if !IsPermanent(err) {
		t.Fatalf("auth rejections must be permanent, got %v", err)
	}
}

func TestEmailSendBoundedByContextDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		// accept and then say nothing, like a stalled server
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-stop
	}()

	cfg := emailCfg()
	cfg.Host = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	e, err := NewEmail(cfg)
	if err != nil {
		t.Fatalf("NewEmail failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = e.Send(ctx, testAlert())
	if err == nil {
		t.Fatal("expected an error from the stalled server")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("send not bounded by the deadline, took %v", elapsed)
	}
	if IsPermanent(err) {
		t.Fatalf("deadline errors must stay transient: %v", err)
	}
}

func TestClassifySMTP(t *testing.T) {
	if !IsPermanent(classifySMTP(&textproto.Error{Code: 534, Msg: "5.7.9 application-specific password required"})) {
		t.Fatal("534 must be permanent")
	}
	if !IsPermanent(classifySMTP(errors.New("535 Invalid credentials"))) {
		t.Fatal("credential strings must be permanent")
	}
	if IsPermanent(classifySMTP(errors.New("dial tcp: connection refused"))) {
		t.Fatal("connection errors must stay transient")
	}
}
