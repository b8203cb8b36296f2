package notify

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Host: "smtp.example.com",
		From: "pipetriage@example.com",
		To:   []string{"oncall@example.com", "data-eng@example.com"},
	}
}

type captured struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func capturingMailer(cfg Config) (*Mailer, *captured) {
	m := NewMailer(cfg, zap.NewNop())
	got := &captured{}
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		got.addr = addr
		got.from = from
		got.to = to
		got.msg = msg
		return nil
	}
	return m, got
}

func TestSendValidation(t *testing.T) {
	m := NewMailer(Config{}, zap.NewNop())
	assert.ErrorIs(t, m.Send(Message{Subject: "x"}), ErrNotConfigured)

	m = NewMailer(Config{Host: "h", From: "f"}, zap.NewNop())
	assert.ErrorIs(t, m.Send(Message{Subject: "x"}), ErrNoRecipients)
}

func TestSendBuildsMultipartMessage(t *testing.T) {
	m, got := capturingMailer(testConfig())

	err := m.Send(Message{
		Subject:  "[HIGH] ADF Pipeline Failed: daily_load",
		Text:     "plain body",
		HTML:     "<p>html body</p>",
		Severity: "high",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.Equal(t, "pipetriage@example.com", got.from)
	assert.Len(t, got.to, 2)

	msg := string(got.msg)
	assert.Contains(t, msg, "Content-Type: multipart/alternative")
	assert.Contains(t, msg, "Content-Type: text/plain")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "plain body")
	assert.Contains(t, msg, "<p>html body</p>")
	assert.Contains(t, msg, "To: oncall@example.com, data-eng@example.com")

	// Text part must come before the HTML part.
	assert.Less(t, strings.Index(msg, "plain body"), strings.Index(msg, "<p>html body</p>"))
}

func TestPriorityHeaders(t *testing.T) {
	m, got := capturingMailer(testConfig())

	require.NoError(t, m.Send(Message{Subject: "s", Text: "t", Severity: "critical"}))
	assert.Contains(t, string(got.msg), "X-Priority: 1")
	assert.Contains(t, string(got.msg), "Importance: high")

	require.NoError(t, m.Send(Message{Subject: "s", Text: "t", Severity: "low"}))
	assert.NotContains(t, string(got.msg), "X-Priority")
}

func TestTextOnlyMessageOmitsHTMLPart(t *testing.T) {
	m, got := capturingMailer(testConfig())

	require.NoError(t, m.Send(Message{Subject: "s", Text: "only text"}))
	assert.NotContains(t, string(got.msg), "text/html")
}

func TestSendTest(t *testing.T) {
	m, got := capturingMailer(testConfig())

	require.NoError(t, m.SendTest())
	assert.Contains(t, string(got.msg), "pipetriage test email")
}

func TestCustomPort(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 2525
	m, got := capturingMailer(cfg)

	require.NoError(t, m.Send(Message{Subject: "s", Text: "t"}))
	assert.Equal(t, "smtp.example.com:2525", got.addr)
}
