package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// HandlerFunc adapts a plain function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

type subscription struct {
	handler EventHandler
	types   []string
}

func (s subscription) wants(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// Dispatcher delivers events synchronously to in-process subscribers, in
// subscription order. It is safe for concurrent use.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

var _ EventEmitter = (*Dispatcher)(nil)

// NewDispatcher returns a Dispatcher with no subscribers.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger.With(slog.String("component", "event_dispatcher"))}
}

// Subscribe registers handler for the given event types. With no types the
// handler receives every event.
func (d *Dispatcher) Subscribe(handler EventHandler, types ...string) {
	d.mu.Lock()
	d.subs = append(d.subs, subscription{handler: handler, types: types})
	n := len(d.subs)
	d.mu.Unlock()

	d.logger.Debug("event handler subscribed",
		slog.Int("subscribers", n),
		slog.Any("types", types))
}

// EmitEvent hands event to every interested subscriber. A failing handler
// does not stop delivery to the rest; all failures come back joined.
func (d *Dispatcher) EmitEvent(ctx context.Context, event *Event) error {
	d.mu.RLock()
	subs := slices.Clone(d.subs)
	d.mu.RUnlock()

	var errs []error
	delivered := 0
	for i, sub := range subs {
		if !sub.wants(event.Type) {
			continue
		}
		delivered++
		if err := sub.handler.HandleEvent(ctx, event); err != nil {
			d.logger.Error("event handler failed",
				slog.String("error", err.Error()),
				slog.Int("subscriber", i),
				slog.String("event_type", event.Type),
				slog.String("event_id", event.ID.String()))
			errs = append(errs, fmt.Errorf("subscriber %d: %w", i, err))
		}
	}

	d.logger.Debug("event dispatched",
		slog.String("event_type", event.Type),
		slog.String("event_id", event.ID.String()),
		slog.Int("delivered", delivered))

	return errors.Join(errs...)
}
