package domain

import "context"

// Handler processes one verified event. Handlers must be safe to re-run for
// the same event: every state transition is re-derived from current record
// state, never accumulated.
type Handler func(ctx context.Context, event *Event) error

// Registry is the immutable event-type routing table, built once at startup
// and passed by reference. There is no way to mutate it after construction.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry(handlers map[string]Handler) *Registry {
	copied := make(map[string]Handler, len(handlers))
	for eventType, handler := range handlers {
		if eventType == "" || handler == nil {
			continue
		}
		copied[eventType] = handler
	}
	return &Registry{handlers: copied}
}

// Lookup returns the handler for an event type. Unknown types are not an
// error at this level; the caller acks and counts them.
func (r *Registry) Lookup(eventType string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	handler, ok := r.handlers[eventType]
	return handler, ok
}

// Types lists the registered event types.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	types := make([]string, 0, len(r.handlers))
	for eventType := range r.handlers {
		types = append(types, eventType)
	}
	return types
}
