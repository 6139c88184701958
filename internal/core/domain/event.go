package domain

// EventKind classifies the feedback produced by a state change.
type EventKind string

// Event kinds.
const (
	EventDocumentLoaded    EventKind = "document_loaded"
	EventDocumentReloaded  EventKind = "document_reloaded"
	EventToolChanged       EventKind = "tool_changed"
	EventAnnotationAdded   EventKind = "annotation_added"
	EventAnnotationDeleted EventKind = "annotation_deleted"
	EventUndo              EventKind = "undo"
	EventTextMarked        EventKind = "text_marked"
	EventExported          EventKind = "exported"
	EventNone              EventKind = "none"
)

// Event is the explicit notification returned by every mutating operation.
// Driving adapters turn it into toasts, status lines or tool results.
type Event struct {
	Kind        EventKind
	Title       string
	Description string

	// Annotation is the record the event is about, if any.
	Annotation *Annotation
}

// Changed reports whether the event describes an actual state change.
func (e Event) Changed() bool {
	return e.Kind != EventNone && e.Kind != ""
}

// NoChange is returned by no-op operations.
func NoChange() Event {
	return Event{Kind: EventNone}
}
