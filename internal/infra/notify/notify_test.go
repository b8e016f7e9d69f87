package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishNotification(ctx context.Context, n entity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func note(acc, msg string) entity.Notification {
	return entity.NewNotification(acc, entity.ProviderZoho, entity.OpFetch, true, "", msg)
}

func TestInboxKeepsLatestPerAccount(t *testing.T) {
	in := NewInbox(3)
	for i := 0; i < 5; i++ {
		in.Notify(context.Background(), note("acc-1", fmt.Sprintf("m%d", i)))
	}
	in.Notify(context.Background(), note("acc-2", "other"))

	got := in.Drain("acc-1")
	assert.Len(t, got, 3)
	assert.Equal(t, "m2", got[0].Message)
	assert.Equal(t, "m4", got[2].Message)

	assert.Empty(t, in.Drain("acc-1"))
	assert.NotNil(t, in.Drain("acc-unknown"))
	assert.Len(t, in.Drain("acc-2"), 1)
}

func TestFanoutDeliversToEverySink(t *testing.T) {
	a, b := NewInbox(10), NewInbox(10)
	var f usecase.Notifier = Fanout{Log{}, Metrics{}, a, b}

	f.Notify(context.Background(), note("acc-1", "hello"))

	assert.Len(t, a.Drain("acc-1"), 1)
	assert.Len(t, b.Drain("acc-1"), 1)
}

func TestQueueSurvivesCancelledContext(t *testing.T) {
	n := note("acc-1", "hello")
	pub := new(MockPublisher)
	pub.On("PublishNotification", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), n).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Queue{Publisher: pub}.Notify(ctx, n)

	pub.AssertExpectations(t)
}

func TestQueueSwallowsPublishErrors(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishNotification", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	assert.NotPanics(t, func() {
		Queue{Publisher: pub}.Notify(context.Background(), note("acc-1", "hello"))
	})
}
