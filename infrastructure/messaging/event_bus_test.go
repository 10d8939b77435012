package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loom-backend/domain/core/valueobjects"
	"loom-backend/domain/events"
)

func forkedEvent() events.NodeForked {
	return events.NewNodeForked(
		valueobjects.NewNodeID(), valueobjects.NewNodeID(), nil, 0, time.Now(),
	)
}

func TestEventBus_DeliversToMatchingSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var received []string
	bus.Subscribe("node.forked", func(ctx context.Context, event events.DomainEvent) {
		received = append(received, event.GetEventType())
	})
	bus.Subscribe("node.deleted", func(ctx context.Context, event events.DomainEvent) {
		t.Error("wrong subscription fired")
	})

	err := bus.Publish(context.Background(), forkedEvent())
	require.NoError(t, err)
	assert.Equal(t, []string{"node.forked"}, received)
}

func TestEventBus_WildcardReceivesEverything(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var received []string
	bus.Subscribe("*", func(ctx context.Context, event events.DomainEvent) {
		received = append(received, event.GetEventType())
	})

	deleted := events.NewNodeDeleted(valueobjects.NewNodeID(), valueobjects.NewProjectID(), 2, false, time.Now())
	err := bus.Publish(context.Background(), forkedEvent(), deleted)
	require.NoError(t, err)
	assert.Equal(t, []string{"node.forked", "node.deleted"}, received)
}

func TestEventBus_PanickingHandlerIsIsolated(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	bus.Subscribe("node.forked", func(ctx context.Context, event events.DomainEvent) {
		panic("bad subscriber")
	})
	var survived bool
	bus.Subscribe("node.forked", func(ctx context.Context, event events.DomainEvent) {
		survived = true
	})

	err := bus.Publish(context.Background(), forkedEvent())
	require.NoError(t, err)
	assert.True(t, survived)
}

func TestEventBus_NilEventsSkipped(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var count int
	bus.Subscribe("*", func(ctx context.Context, event events.DomainEvent) {
		count++
	})

	err := bus.Publish(context.Background(), nil, forkedEvent())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEventBus_NoSubscribersIsANoop(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	assert.NoError(t, bus.Publish(context.Background(), forkedEvent()))
}
