package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/taskpulse/internal/notification"
)

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.to = to
	m.subject = subject
	m.body = body
	return nil
}

func TestEmailChannelSend(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	channel := notification.NewEmailChannel(mailer, discardLogger())

	require.Equal(t, "email", channel.Name())
	require.NoError(t, channel.Send(context.Background(), "jdoe@example.com", "Subject", "Body"))

	assert.Equal(t, "jdoe@example.com", mailer.to)
	assert.Equal(t, "Subject", mailer.subject)
	assert.Equal(t, "Body", mailer.body)
}

func TestEmailChannelPropagatesMailerError(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{err: errors.New("relay refused")}
	channel := notification.NewEmailChannel(mailer, discardLogger())

	err := channel.Send(context.Background(), "jdoe@example.com", "Subject", "Body")
	assert.Error(t, err)
}

func TestStubChannelsAreNoOps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.NoError(t, notification.NewSMSChannel(discardLogger()).Send(ctx, "r", "s", "b"))
	assert.NoError(t, notification.NewPushChannel(discardLogger()).Send(ctx, "r", "s", "b"))
	assert.NoError(t, notification.NewChatChannel(discardLogger()).Send(ctx, "r", "s", "b"))
}
