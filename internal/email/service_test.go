package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/hms-api/pkg/logger"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPServiceBuildsMessage(t *testing.T) {
	d := &recordingDialer{}
	svc := NewSMTPServiceWithDialer(d, "clinic@example.com")

	require.NoError(t, svc.Send(context.Background(), "pat@example.com", "Appointment approved", "See you soon"))
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"clinic@example.com"}, d.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"pat@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Appointment approved"}, d.sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "See you soon")
}

func TestSMTPServiceWrapsErrors(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	err := NewSMTPServiceWithDialer(d, "x@example.com").Send(context.Background(), "p@example.com", "s", "b")
	assert.ErrorContains(t, err, "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewSMTPServiceWithDialer(d, "x").Send(ctx, "p", "s", "b"), context.Canceled)
}

func TestLogServiceNeverFails(t *testing.T) {
	assert.NoError(t, NewLogService(logger.Nop()).Send(context.Background(), "p@example.com", "s", "b"))
}
