package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) SendAlert(n entity.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked++
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
	err  error
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.msgs, f.err
}

func body(t *testing.T, n entity.Notification) []byte {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return b
}

func TestProcessSuccessIsAckedWithoutAlert(t *testing.T) {
	alerter := new(MockAlerter)
	w := NewWorker(nil, alerter)
	ack := &fakeAck{}

	w.process(body(t, entity.NewNotification("acc-1", entity.ProviderZoho, entity.OpFetch, true, "", "Fetched 3 lead(s)")), ack)

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
	alerter.AssertNotCalled(t, "SendAlert", mock.Anything)
}

func TestProcessFailureSendsAlert(t *testing.T) {
	n := entity.NewNotification("acc-1", entity.ProviderGHL, entity.OpDelete, false, "ACTION_FAILED", "could not delete 2 lead(s)")
	alerter := new(MockAlerter)
	alerter.On("SendAlert", mock.MatchedBy(func(got entity.Notification) bool {
		return got.ID == n.ID && got.Code == "ACTION_FAILED"
	})).Return(nil)

	w := NewWorker(nil, alerter)
	ack := &fakeAck{}
	w.process(body(t, n), ack)

	assert.Equal(t, 1, ack.acked)
	alerter.AssertExpectations(t)
}

func TestProcessAlertFailureIsDeadLettered(t *testing.T) {
	alerter := new(MockAlerter)
	alerter.On("SendAlert", mock.Anything).Return(errors.New("smtp down"))

	w := NewWorker(nil, alerter)
	ack := &fakeAck{}
	w.process(body(t, entity.NewNotification("acc-1", entity.ProviderGHL, entity.OpConnect, false, "NETWORK_ERROR", "timeout")), ack)

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestProcessInvalidJSON(t *testing.T) {
	w := NewWorker(nil, new(MockAlerter))
	ack := &fakeAck{}
	w.process([]byte("{not json"), ack)

	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestStartStopsWhenDeliveriesClose(t *testing.T) {
	msgs := make(chan amqp.Delivery)
	close(msgs)
	w := NewWorker(&fakeConsumer{msgs: msgs}, new(MockAlerter))

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background(), QueueName) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	w := NewWorker(&fakeConsumer{msgs: make(chan amqp.Delivery)}, new(MockAlerter))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, w.Start(ctx, QueueName))
}

func TestStartConsumeError(t *testing.T) {
	w := NewWorker(&fakeConsumer{err: errors.New("channel closed")}, new(MockAlerter))
	assert.Error(t, w.Start(context.Background(), QueueName))
}
