// Package eventbus provides an in-process pub/sub bus for regeneration
// events. The watcher publishes after each run; subscribers such as the
// reload websocket process them asynchronously.
package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/untillpro/goutils/logger"
)

// Regenerated reports one admin.yaml generation for a project.
type Regenerated struct {
	ID            string    `json:"id"`
	Project       string    `json:"project"`
	Path          string    `json:"path"`
	Tables        int       `json:"number_tables"`
	Relationships int       `json:"number_relationships"`
	Warnings      []string  `json:"warnings,omitempty"`
	Error         string    `json:"error,omitempty"`
	At            time.Time `json:"at"`
}

// NewRegenerated stamps an event with a fresh ID and the current time.
func NewRegenerated(project, path string) Regenerated {
	return Regenerated{
		ID:      uuid.New().String(),
		Project: project,
		Path:    path,
		At:      time.Now().UTC(),
	}
}

// Handler processes an event. Implementations must be safe for concurrent
// calls from different goroutines.
type Handler interface {
	HandleEvent(ctx context.Context, evt Regenerated) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt Regenerated) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt Regenerated) error {
	return f(ctx, evt)
}

// Bus is a simple in-process event bus. Events are published to a buffered
// channel and dispatched to all subscribers in a single consumer goroutine,
// so subscribers see events in publish order.
type Bus struct {
	mu          sync.RWMutex
	subscribers []namedHandler
	events      chan Regenerated
	done        chan struct{}
	stopOnce    sync.Once
}

type namedHandler struct {
	name    string
	handler Handler
}

// New creates a new Bus with the given channel buffer size.
func New(bufSize int) *Bus {
	if bufSize < 1 {
		bufSize = 64
	}
	return &Bus{
		events: make(chan Regenerated, bufSize),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a named handler.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, namedHandler{name: name, handler: h})
}

// Publish sends an event to the bus. Non-blocking: if the buffer is full
// the event is dropped and a warning is logged.
func (b *Bus) Publish(evt Regenerated) {
	select {
	case b.events <- evt:
	default:
		logger.Warning("eventbus: buffer full, dropping event", evt.ID, "for", evt.Project)
	}
}

// Start begins the consumer goroutine. It processes events until the
// context is cancelled or Stop is called.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		for {
			select {
			case evt, ok := <-b.events:
				if !ok {
					return
				}
				b.dispatch(ctx, evt)
			case <-ctx.Done():
				// drain what was already published
				for {
					select {
					case evt, ok := <-b.events:
						if !ok {
							return
						}
						b.dispatch(ctx, evt)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop closes the bus and waits for the consumer goroutine to finish.
// Publish must not be called after Stop.
func (b *Bus) Stop() {
	b.stopOnce.Do(func() { close(b.events) })
	<-b.done
}

func (b *Bus) dispatch(ctx context.Context, evt Regenerated) {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, evt); err != nil {
			logger.Error("eventbus:", s.name, "handler error for", evt.ID, err)
		}
	}
}
