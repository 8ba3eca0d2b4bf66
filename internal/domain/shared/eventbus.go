package shared

import "context"

// EventHandler reacts to committed domain events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types handled; empty means every type
	EventTypes() []string
}

// EventPublisher hands committed events to their handlers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
