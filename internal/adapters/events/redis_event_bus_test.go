package events

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofinder/directory-backend/internal/domain/entities"
	"github.com/expofinder/directory-backend/internal/domain/providers"
	redisclient "github.com/expofinder/directory-backend/internal/infrastructure/clients/redis"
	"github.com/expofinder/directory-backend/pkg/config"
)

func newTestEventBus(t *testing.T) providers.EventBus {
	t.Helper()

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := redisclient.NewClient(&config.RedisConfig{
		Host: mr.Host(),
		Port: port,
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewRedisEventBus(client)
}

func TestRedisEventBus_PublishReachesSubscriber(t *testing.T) {
	bus := newTestEventBus(t)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eventChan, err := bus.Subscribe(ctx, providers.EventChannelImports)
	require.NoError(t, err)

	event := &entities.ImportEvent{
		ID:    "evt-1",
		RunID: "run-1",
		Summary: entities.ImportSummary{
			RunID:     "run-1",
			Fetched:   3,
			Committed: 2,
		},
		Timestamp: time.Now(),
	}

	// The pub/sub subscription is established asynchronously, so keep
	// publishing until the subscriber sees the event.
	var received *entities.ImportEvent
	deadline := time.After(3 * time.Second)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for event")
		case <-ticker.C:
			require.NoError(t, bus.Publish(ctx, providers.EventChannelImports, event))
		case received = <-eventChan:
			break loop
		}
	}

	require.NotNil(t, received)
	assert.Equal(t, "evt-1", received.ID)
	assert.Equal(t, "run-1", received.RunID)
	assert.Equal(t, 2, received.Summary.Committed)
}

func TestRedisEventBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := newTestEventBus(t)
	defer bus.Close()

	ctx := context.Background()
	eventChan, err := bus.Subscribe(ctx, providers.EventChannelImports)
	require.NoError(t, err)

	require.NoError(t, bus.Unsubscribe(ctx, providers.EventChannelImports))

	select {
	case _, ok := <-eventChan:
		assert.False(t, ok, "channel should be closed after unsubscribe")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
}

func TestRedisEventBus_CloseIsIdempotentAcrossChannels(t *testing.T) {
	bus := newTestEventBus(t)

	ctx := context.Background()
	_, err := bus.Subscribe(ctx, providers.EventChannelImports)
	require.NoError(t, err)

	assert.NoError(t, bus.Close())
	assert.NoError(t, bus.Close())
}
