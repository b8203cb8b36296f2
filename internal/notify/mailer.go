// Package notify delivers diagnostic reports by email over SMTP.
package notify

import (
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotConfigured indicates SMTP settings are incomplete.
	ErrNotConfigured = errors.New("smtp not configured")

	// ErrNoRecipients indicates no destination addresses are set.
	ErrNoRecipients = errors.New("no recipients configured")
)

// Config holds SMTP delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string

	// StartTLS upgrades the connection before authenticating.
	// Default true; disable only for local test servers.
	StartTLS bool
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 587
	}
}

// Validate checks the settings needed to send at all.
func (c Config) Validate() error {
	if c.Host == "" || c.From == "" {
		return ErrNotConfigured
	}
	if len(c.To) == 0 {
		return ErrNoRecipients
	}
	return nil
}

// Message is one outbound email with both renderings of the body.
type Message struct {
	Subject string
	Text    string
	HTML    string

	// Severity drives the priority headers; "critical" and "high"
	// get urgent flags.
	Severity string
}

// Mailer sends messages over SMTP with STARTTLS.
type Mailer struct {
	config Config
	logger *zap.Logger

	// send is swapped in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a mailer. Validation is deferred to Send so the
// app can start without SMTP configured.
func NewMailer(config Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()

	m := &Mailer{config: config, logger: logger}
	m.send = m.sendSMTP
	return m
}

// Send delivers the message to all configured recipients.
func (m *Mailer) Send(msg Message) error {
	if err := m.config.Validate(); err != nil {
		return err
	}

	body := buildMIME(m.config.From, m.config.To, msg)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	if err := m.send(addr, auth, m.config.From, m.config.To, body); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}

	m.logger.Info("report emailed",
		zap.String("subject", msg.Subject),
		zap.Int("recipients", len(m.config.To)),
	)
	return nil
}

// SendTest delivers a short test message to verify SMTP settings.
func (m *Mailer) SendTest() error {
	return m.Send(Message{
		Subject: "pipetriage test email",
		Text:    "SMTP delivery from pipetriage is working.",
		HTML:    "<p>SMTP delivery from <strong>pipetriage</strong> is working.</p>",
	})
}

// sendSMTP dials, upgrades with STARTTLS when configured, then sends.
// smtp.SendMail would do this too, but doing it by hand lets the
// STARTTLS requirement be explicit instead of server-negotiated.
func (m *Mailer) sendSMTP(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, 15*time.Second)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if m.config.StartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.config.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}

	return client.Quit()
}

// buildMIME assembles a multipart/alternative message: text part
// first, HTML part last so capable clients prefer it.
func buildMIME(from string, to []string, msg Message) []byte {
	const boundary = "pipetriage-alt-7f3a9c"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")

	switch strings.ToLower(msg.Severity) {
	case "critical", "high":
		b.WriteString("X-Priority: 1\r\n")
		b.WriteString("Importance: high\r\n")
	case "medium":
		b.WriteString("X-Priority: 3\r\n")
	}

	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	if msg.HTML != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(msg.HTML)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
