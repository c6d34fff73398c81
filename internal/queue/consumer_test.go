package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orangewallet/orange/internal/event"
	"github.com/orangewallet/orange/internal/eventstore"
)

func TestConsumerDrainsQueue(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	consumer := NewConsumer(store)

	// Empty queue is a normal condition.
	ev, err := consumer.Next(ctx)
	require.NoError(t, err)
	require.Nil(t, ev)

	appended, err := event.New(event.KindPaymentFailed, 1700000000, map[string]any{
		"payment_id": "p-9",
		"reason":     "no route",
	})
	require.NoError(t, err)
	_, err = store.Append(ctx, appended)
	require.NoError(t, err)

	ev, err = consumer.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.Equal(t, event.KindPaymentFailed, ev.Kind)
	require.Equal(t, "no route", ev.Payload["reason"])

	require.NoError(t, consumer.Handled(ctx))

	ev, err = consumer.Next(ctx)
	require.NoError(t, err)
	require.Nil(t, ev)
}

func TestHandledWithNothingPendingIsUsageError(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	consumer := NewConsumer(store)
	require.ErrorIs(t, consumer.Handled(t.Context()), eventstore.ErrNoPendingEvent)
}
