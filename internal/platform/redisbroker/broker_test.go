package redisbroker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/taskpulse/internal/platform/redisbroker"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBroker(t *testing.T) *redisbroker.Broker {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisbroker.New(client, discardLogger(), redisbroker.WithBlock(50*time.Millisecond))
}

func TestBrokerAppendAndFetch(t *testing.T) {
	t.Parallel()

	brk := newTestBroker(t)
	ctx := context.Background()

	require.NoError(t, brk.Append(ctx, "notifications", []byte("first")))
	require.NoError(t, brk.Append(ctx, "notifications", []byte("second")))

	// The group is created from the beginning of the stream, so messages
	// appended before the first subscriber are still delivered.
	sub, err := brk.Subscribe(ctx, "notifications", "test-group")
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	messages, err := sub.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, []byte("first"), messages[0].Payload)
	assert.Equal(t, []byte("second"), messages[1].Payload)

	for _, msg := range messages {
		require.NoError(t, sub.Ack(ctx, msg.ID))
	}
}

func TestBrokerFetchEmptyStream(t *testing.T) {
	t.Parallel()

	brk := newTestBroker(t)
	ctx := context.Background()

	sub, err := brk.Subscribe(ctx, "empty", "test-group")
	require.NoError(t, err)

	messages, err := sub.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestBrokerSubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	brk := newTestBroker(t)
	ctx := context.Background()

	// A second subscribe with the same group must tolerate the BUSYGROUP
	// reply from Redis.
	first, err := brk.Subscribe(ctx, "notifications", "test-group")
	require.NoError(t, err)
	second, err := brk.Subscribe(ctx, "notifications", "test-group")
	require.NoError(t, err)

	_ = first.Close()
	_ = second.Close()
}

func TestBrokerAckedMessageNotRedelivered(t *testing.T) {
	t.Parallel()

	brk := newTestBroker(t)
	ctx := context.Background()

	require.NoError(t, brk.Append(ctx, "notifications", []byte("only")))

	sub, err := brk.Subscribe(ctx, "notifications", "test-group")
	require.NoError(t, err)

	messages, err := sub.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.NoError(t, sub.Ack(ctx, messages[0].ID))

	// Nothing new remains for the group.
	messages, err = sub.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestBrokerGroupSharesCursor(t *testing.T) {
	t.Parallel()

	brk := newTestBroker(t)
	ctx := context.Background()

	require.NoError(t, brk.Append(ctx, "notifications", []byte("shared")))

	first, err := brk.Subscribe(ctx, "notifications", "test-group")
	require.NoError(t, err)
	second, err := brk.Subscribe(ctx, "notifications", "test-group")
	require.NoError(t, err)

	got, err := first.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// The message was claimed by the first member of the group; the second
	// sees nothing new.
	got, err = second.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
