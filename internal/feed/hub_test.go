package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	messages [][]byte
	capacity int
	closed   bool
}

func (r *recorder) Deliver(msg []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capacity > 0 && len(r.messages) >= r.capacity {
		return false
	}
	r.messages = append(r.messages, msg)
	return true
}

func (r *recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func (r *recorder) received() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *recorder) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *recorder) last(t *testing.T) Envelope {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.messages)
	var env Envelope
	require.NoError(t, json.Unmarshal(r.messages[len(r.messages)-1], &env))
	return env
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(16)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub, cancel
}

func TestEventEncode(t *testing.T) {
	msg, err := Event{Name: KudoCreated, Data: map[string]int{"points": 50}}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"kudo:created","room":"kudo-feed","data":{"points":50}}`, string(msg))
}

func TestHub_BroadcastsToEveryone(t *testing.T) {
	hub, _ := startHub(t)
	a, b := &recorder{}, &recorder{}
	require.True(t, hub.Join(a))
	require.True(t, hub.Join(b))

	hub.Publish(Event{Name: KudoUpdated, Data: map[string]string{"id": "k1"}})

	require.Eventually(t, func() bool { return a.received() == 1 && b.received() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, KudoUpdated, a.last(t).Event)
	assert.Equal(t, Room, b.last(t).Room)
	assert.Equal(t, 2, hub.Count())
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub, _ := startHub(t)
	a, b := &recorder{}, &recorder{}
	hub.Join(a)
	hub.Join(b)
	hub.Leave(a)

	hub.Publish(Event{Name: KudoDeleted})

	require.Eventually(t, func() bool { return b.received() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, a.received())
	assert.True(t, a.isClosed())
	assert.Equal(t, 1, hub.Count())
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub, _ := startHub(t)
	slow := &recorder{capacity: 1}
	fast := &recorder{}
	hub.Join(slow)
	hub.Join(fast)

	hub.Publish(Event{Name: KudoReactionAdded})
	hub.Publish(Event{Name: KudoReactionRemoved})

	require.Eventually(t, func() bool { return fast.received() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, slow.received())
	assert.True(t, slow.isClosed())
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesSubscribers(t *testing.T) {
	hub := NewHub(4)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	a := &recorder{}
	require.True(t, hub.Join(a))

	cancel()
	<-hub.Done()

	assert.True(t, a.isClosed())
	assert.Zero(t, hub.Count())

	late := &recorder{}
	assert.False(t, hub.Join(late))
	assert.True(t, late.isClosed())

	// Neither blocks once stopped.
	hub.Leave(a)
	hub.Publish(Event{Name: KudoCreated})
}

type publishRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (p *publishRecorder) Publish(ev Event) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

func TestOutbox(t *testing.T) {
	Enqueue(context.Background(), Event{Name: KudoCreated})

	ctx, outbox := WithOutbox(context.Background())
	Enqueue(ctx, Event{Name: KudoCreated})
	Enqueue(ctx, Event{Name: KudoReactionAdded})
	require.Len(t, outbox.Pending(), 2)

	p := &publishRecorder{}
	assert.Equal(t, 2, outbox.Flush(p))
	assert.Empty(t, outbox.Pending())
	require.Len(t, p.events, 2)
	assert.Equal(t, KudoReactionAdded, p.events[1].Name)

	Enqueue(ctx, Event{Name: KudoDeleted})
	assert.Zero(t, outbox.Flush(nil))
	assert.Empty(t, outbox.Pending())
}

func TestOutboxMiddleware_PublishesAfterResponse(t *testing.T) {
	p := &publishRecorder{}
	var publishedBeforeReturn int

	handler := OutboxMiddleware(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Enqueue(r.Context(), Event{Name: KudoCreated})
		w.WriteHeader(http.StatusCreated)
		p.mu.Lock()
		publishedBeforeReturn = len(p.events)
		p.mu.Unlock()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/kudos", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Zero(t, publishedBeforeReturn)
	require.Len(t, p.events, 1)
	assert.Equal(t, KudoCreated, p.events[0].Name)
}

type publisherFunc func(Event)

func (f publisherFunc) Publish(ev Event) { f(ev) }

func TestOutboxMiddleware_FlushesResponseBeforePublishing(t *testing.T) {
	rec := httptest.NewRecorder()
	var flushedAtPublish []bool

	p := publisherFunc(func(Event) {
		flushedAtPublish = append(flushedAtPublish, rec.Flushed)
	})
	handler := OutboxMiddleware(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Enqueue(r.Context(), Event{Name: KudoCreated})
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/kudos", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []bool{true}, flushedAtPublish)
}

func TestOutboxMiddleware_NoPublisher(t *testing.T) {
	handler := OutboxMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Enqueue(r.Context(), Event{Name: KudoCreated})
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/kudos", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
