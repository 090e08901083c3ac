// Package mailer delivers the login-code email. The auth service depends on
// the Mailer interface only; the SMTP implementation lives here and a log
// fallback covers local development without an SMTP server.
package mailer

import (
	"context"
	"crypto/tls"
	_ "embed"
	"fmt"
	"log/slog"
	"net"
	"net/mail"
	gosmtp "net/smtp"
	"strings"
	"time"

	"github.com/cinefil/cinefil/internal/config"
)

//go:embed login_email.html
var loginEmailHTML string

// loginEmailSubject is the subject line of the login-code email.
const loginEmailSubject = "Code to log in to cinefil.me"

// Mailer sends the one-time login code to an email address.
type Mailer interface {
	SendLoginCode(ctx context.Context, to string, code string) error
}

// smtpMailer implements Mailer over SMTP with the configured encryption mode.
type smtpMailer struct {
	cfg config.MailConfig
}

// New returns an SMTP mailer when a host is configured, otherwise a mailer
// that only logs the code. The fallback keeps local development usable
// without an SMTP server; config.Load rejects a missing host in production.
func New(cfg config.MailConfig) Mailer {
	if cfg.Host == "" {
		slog.Warn("SMTP_HOST not set, login codes will be logged instead of emailed")
		return &logMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

// SendLoginCode renders the login email template and sends it.
func (m *smtpMailer) SendLoginCode(ctx context.Context, to string, code string) error {
	body := strings.ReplaceAll(loginEmailHTML, "{{LOGIN_CODE}}", code)

	from := mail.Address{Name: m.cfg.FromName, Address: m.cfg.FromAddress}

	// Build RFC 2822 message.
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from.String()))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", loginEmailSubject))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	switch m.cfg.Encryption {
	case "ssl":
		return m.sendSSL(addr, from.Address, to, msg.String())
	case "none":
		return m.sendPlain(addr, from.Address, to, msg.String())
	default: // "starttls"
		return m.sendStartTLS(addr, from.Address, to, msg.String())
	}
}

// sendStartTLS sends email using STARTTLS (port 587 typical).
func (m *smtpMailer) sendStartTLS(addr, from, to, msg string) error {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starting TLS: %w", err)
	}

	if m.cfg.Username != "" {
		auth := gosmtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("authenticating: %w", err)
		}
	}

	return m.sendMessage(client, from, to, msg)
}

// sendSSL sends email using implicit SSL/TLS (port 465 typical).
func (m *smtpMailer) sendSSL(addr, from, to, msg string) error {
	tlsConfig := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}, "tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("connecting to %s (SSL): %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	if m.cfg.Username != "" {
		auth := gosmtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("authenticating: %w", err)
		}
	}

	return m.sendMessage(client, from, to, msg)
}

// sendPlain sends email without encryption.
func (m *smtpMailer) sendPlain(addr, from, to, msg string) error {
	var auth gosmtp.Auth
	if m.cfg.Username != "" {
		auth = gosmtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := gosmtp.SendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// sendMessage handles MAIL FROM, RCPT TO, DATA for an existing SMTP client.
func (m *smtpMailer) sendMessage(client *gosmtp.Client, from, to, msg string) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO %s: %w", to, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data: %w", err)
	}
	return client.Quit()
}

// logMailer logs the code instead of sending it. Development only.
type logMailer struct{}

func (l *logMailer) SendLoginCode(_ context.Context, to string, code string) error {
	slog.Info("login code (SMTP disabled)",
		slog.String("to", to),
		slog.String("code", code),
	)
	return nil
}
