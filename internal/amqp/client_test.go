package amqp

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type fakeAcknowledger struct {
	acks, nacks int
	requeue     bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error { f.acks++; return nil }

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacks++
	f.requeue = requeue
	return nil
}

func TestHandleDelivery(t *testing.T) {
	errSheets := errors.New("sheets quota exceeded")
	cases := []struct {
		name        string
		body        string
		handlerErr  error
		wantCalls   int
		wantAck     bool
		wantRequeue bool
	}{
		{name: "synced record is acked", body: `{"id":7,"version":1}`, wantCalls: 1, wantAck: true},
		{name: "failed sync is requeued", body: `{"id":7,"version":1}`, handlerErr: errSheets, wantCalls: 1, wantRequeue: true},
		{name: "malformed body is dropped", body: `{"id":"seven"}`},
		{name: "missing record id is dropped", body: `{"version":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			var calls int
			var got *RecordSyncMessage
			handler := func(_ context.Context, msg *RecordSyncMessage) error {
				calls++
				got = msg
				return tc.handlerErr
			}

			c := &Client{}
			c.handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: []byte(tc.body)}, handler)

			if calls != tc.wantCalls {
				t.Fatalf("handler called %d times, want %d", calls, tc.wantCalls)
			}
			if calls > 0 && (got.ID != 7 || got.Version != 1) {
				t.Fatalf("handler got %+v", got)
			}
			if tc.wantAck {
				if ack.acks != 1 || ack.nacks != 0 {
					t.Fatalf("expected a single ack, got acks=%d nacks=%d", ack.acks, ack.nacks)
				}
				return
			}
			if ack.acks != 0 || ack.nacks != 1 || ack.requeue != tc.wantRequeue {
				t.Fatalf("expected nack requeue=%v, got acks=%d nacks=%d requeue=%v",
					tc.wantRequeue, ack.acks, ack.nacks, ack.requeue)
			}
		})
	}
}

func TestRecordSyncMessageFromJSON(t *testing.T) {
	msg, err := RecordSyncMessageFromJSON([]byte(`{"id":12,"version":3,"timestamp":"2025-03-13T15:00:00Z"}`))
	if err != nil {
		t.Fatalf("RecordSyncMessageFromJSON: %v", err)
	}
	if msg.ID != 12 || msg.Version != 3 || !msg.Timestamp.Equal(time.Date(2025, 3, 13, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected message %+v", msg)
	}

	for _, body := range []string{`not json`, `{"id":"12"}`, `{"version":1}`, `{"id":-3,"version":1}`} {
		if _, err := RecordSyncMessageFromJSON([]byte(body)); !errors.Is(err, ErrInvalidMessage) {
			t.Fatalf("RecordSyncMessageFromJSON(%s) error = %v, want ErrInvalidMessage", body, err)
		}
	}
}

func TestNewRecordSyncMessageEncodesIDAndVersion(t *testing.T) {
	body, err := NewRecordSyncMessage(42, 2).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	msg, err := RecordSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("RecordSyncMessageFromJSON: %v", err)
	}
	if msg.ID != 42 || msg.Version != 2 || time.Since(msg.Timestamp) > time.Minute {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestPublishRecordSyncFailsFastWhileOpen(t *testing.T) {
	c := &Client{}
	atomic.StoreInt32(&c.state, StateOpen)
	c.lastFailure = time.Now()

	err := c.PublishRecordSync(context.Background(), 42, 1)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if !strings.Contains(err.Error(), "record 42") {
		t.Fatalf("error should name the record: %v", err)
	}
}

func TestPublishRecordSyncCancelledContext(t *testing.T) {
	c := &Client{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.PublishRecordSync(ctx, 42, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := atomic.LoadInt64(&c.failureCount); n != 0 {
		t.Fatalf("a cancelled publish must not count as a failure, got %d", n)
	}
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	c := &Client{}

	for i := 0; i < maxFailures-1; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatal("circuit opened before reaching maxFailures")
	}
	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("circuit should open at maxFailures")
	}

	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if c.isCircuitOpen() || atomic.LoadInt32(&c.state) != StateHalfOpen {
		t.Fatal("circuit should be half-open once openTimeout has passed")
	}

	c.recordFailure()
	if atomic.LoadInt32(&c.state) != StateOpen {
		t.Fatal("a failure while half-open should reopen the circuit")
	}

	c.recordSuccess()
	if c.isCircuitOpen() || atomic.LoadInt64(&c.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset the count")
	}
}

func TestExponentialBackoff(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{1, 2 * time.Second},
		{4, 16 * time.Second},
		{5, maxBackoff},
		{64, maxBackoff},
	}
	for _, tc := range cases {
		if got := exponentialBackoff(tc.attempt); got != tc.want {
			t.Fatalf("exponentialBackoff(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("Exception (504) Reason: \"channel/connection is not open\""), true},
		{errors.New("consume: " + amqp091.ErrClosed.Error()), true},
		{errors.New("get record from storage: sql: no rows in result set"), false},
		{ErrInvalidMessage, false},
	}
	for _, tc := range cases {
		if got := isConnectionError(tc.err); got != tc.want {
			t.Fatalf("isConnectionError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
