package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("shop@example.com", "buyer@example.com", "Order confirmed", "<h1>Thanks</h1>")

	assert.Equal(t, []string{"shop@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"buyer@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Order confirmed"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
	assert.Contains(t, buf.String(), "<h1>Thanks</h1>")
}

func TestSMTPMailer_UnreachableRelay(t *testing.T) {
	m := NewSMTPMailer("127.0.0.1", 1, "", "", "shop@example.com")

	err := m.SendEmail(context.Background(), "buyer@example.com", "subject", "body")
	assert.ErrorContains(t, err, "failed to send email to buyer@example.com")
}

func TestLogMailer_RecordsMessages(t *testing.T) {
	m := NewLogMailer()

	require.NoError(t, m.SendEmail(context.Background(), "a@example.com", "one", "1"))
	require.NoError(t, m.SendEmail(context.Background(), "b@example.com", "two", "2"))

	sent := m.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, Message{To: "a@example.com", Subject: "one", Body: "1"}, sent[0])
	assert.Equal(t, "b@example.com", sent[1].To)

	sent[0].To = "mutated"
	assert.Equal(t, "a@example.com", m.Sent()[0].To)
}
