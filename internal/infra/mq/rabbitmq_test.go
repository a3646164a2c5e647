package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gadgetcave/internal/events"
)

// recordingAck 记录投递的确认结果
type recordingAck struct {
	acked    []uint64
	nacked   []uint64
	requeued []bool
}

func (a *recordingAck) Ack(tag uint64, multiple bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = append(a.nacked, tag)
	a.requeued = append(a.requeued, requeue)
	return nil
}

func (a *recordingAck) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func delivery(t *testing.T, ack amqp.Acknowledger, tag uint64, e events.Event) amqp.Delivery {
	t.Helper()
	body, err := e.Encode()
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body}
}

func TestDispatch_AcksHandledEvent(t *testing.T) {
	ack := &recordingAck{}
	var got events.Event
	h := func(_ context.Context, e events.Event) error {
		got = e
		return nil
	}

	dispatch(context.Background(), delivery(t, ack, 7, events.Event{Type: events.OrderPaid, OrderID: 42, OccurredAt: time.Now()}), h)

	assert.Equal(t, []uint64{7}, ack.acked)
	assert.Empty(t, ack.nacked)
	assert.Equal(t, events.OrderPaid, got.Type)
	assert.Equal(t, int64(42), got.OrderID)
}

func TestDispatch_DropsMalformedBody(t *testing.T) {
	ack := &recordingAck{}
	called := false
	h := func(context.Context, events.Event) error {
		called = true
		return nil
	}

	dispatch(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("{not json")}, h)

	assert.False(t, called)
	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{3}, ack.nacked)
	assert.Equal(t, []bool{false}, ack.requeued)
}

func TestDispatch_RequeuesOnHandlerError(t *testing.T) {
	ack := &recordingAck{}
	h := func(context.Context, events.Event) error { return errors.New("db down") }

	dispatch(context.Background(), delivery(t, ack, 9, events.Event{Type: events.OrderCreated, OrderID: 1}), h)

	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{9}, ack.nacked)
	assert.Equal(t, []bool{true}, ack.requeued)
}
