package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gadgetcave/internal/events"
)

func TestPublisher_SendsEncodedEventKeyedByOrder(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	var got *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		got = msg
		return nil
	})

	p := NewPublisher(producer, "order.events")
	err := p.Publish(context.Background(), events.Event{Type: events.OrderPaid, OrderID: 42, OccurredAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	require.NotNil(t, got)
	assert.Equal(t, "order.events", got.Topic)
	key, err := got.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "42", string(key))

	body, err := got.Value.Encode()
	require.NoError(t, err)
	e, err := events.Decode(body)
	require.NoError(t, err)
	assert.Equal(t, events.OrderPaid, e.Type)
	assert.Equal(t, int64(42), e.OrderID)
}

func TestPublisher_PropagatesFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisher(producer, "order.events")
	err := p.Publish(context.Background(), events.Event{Type: events.OrderCreated, OrderID: 1})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}
