package kernel

// DomainEvent is a fact recorded by an aggregate and published after its transaction commits.
// EventName doubles as the routing key on the message broker.
type DomainEvent interface {
	EventName() string
}

// EventSource is implemented by aggregates that record domain events.
type EventSource interface {
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// EventRecorder is embedded by aggregates to implement EventSource.
type EventRecorder struct {
	events []DomainEvent
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// DomainEvents returns a copy of the pending events.
func (r *EventRecorder) DomainEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// ClearDomainEvents drops pending events once they are published.
func (r *EventRecorder) ClearDomainEvents() {
	r.events = nil
}

// Versioned carries the optimistic-concurrency version of a stored document.
// Repositories compare it on write and advance it after a successful write.
type Versioned struct {
	version int
}

// RestoreVersioned is used by repositories when rebuilding an aggregate.
func RestoreVersioned(version int) Versioned {
	return Versioned{version: version}
}

func (v *Versioned) Version() int {
	return v.version
}

// AdvanceVersion is called by repositories after the document was written.
func (v *Versioned) AdvanceVersion() {
	v.version++
}
