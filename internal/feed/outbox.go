package feed

import (
	"context"
	"net/http"
	"sync"
)

type outboxKey struct{}

// Outbox collects the events produced while serving one request. They are
// published only after the handler has written its response.
type Outbox struct {
	mu     sync.Mutex
	events []Event
}

func WithOutbox(ctx context.Context) (context.Context, *Outbox) {
	o := &Outbox{}
	return context.WithValue(ctx, outboxKey{}, o), o
}

// Enqueue records ev on the request's outbox. Without one it is a no-op.
func Enqueue(ctx context.Context, ev Event) {
	o, ok := ctx.Value(outboxKey{}).(*Outbox)
	if !ok {
		return
	}
	o.mu.Lock()
	o.events = append(o.events, ev)
	o.mu.Unlock()
}

// Flush hands every queued event to p and empties the outbox. A nil p
// discards them.
func (o *Outbox) Flush(p Publisher) int {
	o.mu.Lock()
	events := o.events
	o.events = nil
	o.mu.Unlock()

	if p == nil {
		return 0
	}
	for _, ev := range events {
		p.Publish(ev)
	}
	return len(events)
}

// Pending returns a copy of the queued events.
func (o *Outbox) Pending() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Event(nil), o.events...)
}

// OutboxMiddleware gives every request an outbox and flushes it to p once
// the wrapped handler returns and its response has been written out.
func OutboxMiddleware(p Publisher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, outbox := WithOutbox(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			outbox.Flush(p)
		})
	}
}
