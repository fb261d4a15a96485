package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/brightforge/agency-leads/internal/entity"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyLeadSynced(ctx context.Context, event entity.LeadSyncedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fakeAck struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue []bool
	done    chan struct{}
}

func newFakeAck() *fakeAck {
	return &fakeAck{done: make(chan struct{}, 8)}
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	a.acked++
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	a.nacked++
	a.requeue = append(a.requeue, requeue)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAck) wait(t *testing.T) {
	t.Helper()
	select {
	case <-a.done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery was not settled")
	}
}

func sampleEvent() entity.LeadSyncedEvent {
	return entity.LeadSyncedEvent{
		EventID:     "evt-1",
		ContactID:   "c-42",
		Name:        "Jane Doe",
		Email:       "jane@x.com",
		Phone:       "555",
		ProductName: "Taxi App",
		Tier:        "MVP",
		Price:       8000,
		OccurredAt:  time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

// TestPublishLeadSynced - the event goes to the leads exchange as a persistent JSON message
func TestPublishLeadSynced(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, false, false,
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var got entity.LeadSyncedEvent
			if err := json.Unmarshal(msg.Body, &got); err != nil {
				return false
			}
			return msg.ContentType == "application/json" &&
				msg.DeliveryMode == amqp.Persistent &&
				msg.MessageId == "evt-1" &&
				got.ContactID == "c-42"
		})).Return(nil)

	err := NewProducer(pub).PublishLeadSynced(context.Background(), sampleEvent())

	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestPublishLeadSyncedError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(amqp.ErrClosed)

	err := NewProducer(pub).PublishLeadSynced(context.Background(), sampleEvent())

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func deliver(t *testing.T, notifier *MockNotifier, d amqp.Delivery) *fakeAck {
	t.Helper()
	ack := newFakeAck()
	d.Acknowledger = ack

	msgs := make(chan amqp.Delivery, 1)
	msgs <- d
	close(msgs)

	NewWorker(nil, notifier, zap.NewNop()).Run(context.Background(), msgs)
	ack.wait(t)
	return ack
}

// TestWorkerAcksNotifiedLead - a delivered notification is acknowledged
func TestWorkerAcksNotifiedLead(t *testing.T) {
	defer goleak.VerifyNone(t)

	body, _ := json.Marshal(sampleEvent())
	notifier := new(MockNotifier)
	notifier.On("NotifyLeadSynced", mock.Anything, mock.MatchedBy(func(e entity.LeadSyncedEvent) bool {
		return e.ContactID == "c-42"
	})).Return(nil)

	ack := deliver(t, notifier, amqp.Delivery{Body: body})

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
}

func TestWorkerDeadLettersMalformedPayload(t *testing.T) {
	notifier := new(MockNotifier)

	ack := deliver(t, notifier, amqp.Delivery{Body: []byte("{not json")})

	assert.Equal(t, 1, ack.nacked)
	assert.Equal(t, []bool{false}, ack.requeue)
	notifier.AssertNotCalled(t, "NotifyLeadSynced", mock.Anything, mock.Anything)
}

func TestWorkerRequeuesOnceOnNotifierError(t *testing.T) {
	body, _ := json.Marshal(sampleEvent())
	notifier := new(MockNotifier)
	notifier.On("NotifyLeadSynced", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	first := deliver(t, notifier, amqp.Delivery{Body: body})
	second := deliver(t, notifier, amqp.Delivery{Body: body, Redelivered: true})

	assert.Equal(t, []bool{true}, first.requeue)
	assert.Equal(t, []bool{false}, second.requeue)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	msgs := make(chan amqp.Delivery)
	done := make(chan struct{})

	go func() {
		NewWorker(nil, new(MockNotifier), nil).Run(ctx, msgs)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

type MockConsumer struct {
	mock.Mock
}

func (m *MockConsumer) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	a := m.Called(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).(<-chan amqp.Delivery), a.Error(1)
}

func TestWorkerStartConsumeError(t *testing.T) {
	consumer := new(MockConsumer)
	consumer.On("Consume", QueueName, "", false, false, false, false, amqp.Table(nil)).
		Return(nil, errors.New("channel closed"))

	err := NewWorker(consumer, new(MockNotifier), nil).Start(context.Background(), QueueName)

	assert.Error(t, err)
}

type MockDeclarer struct {
	mock.Mock
}

func (m *MockDeclarer) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable).Error(0)
}

func (m *MockDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, args)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *MockDeclarer) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return m.Called(name, key, exchange).Error(0)
}

func TestSetupTopology(t *testing.T) {
	d := new(MockDeclarer)
	d.On("ExchangeDeclare", DLXName, "direct", true).Return(nil)
	d.On("ExchangeDeclare", ExchangeName, "direct", true).Return(nil)
	d.On("QueueDeclare", DLQName, amqp.Table(nil)).Return(nil)
	d.On("QueueDeclare", QueueName, amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}).Return(nil)
	d.On("QueueBind", DLQName, RoutingKey, DLXName).Return(nil)
	d.On("QueueBind", QueueName, RoutingKey, ExchangeName).Return(nil)

	require.NoError(t, setupTopology(d))
	d.AssertExpectations(t)
}
