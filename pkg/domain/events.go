package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	// EventViewCreated fires the first time a view renders.
	EventViewCreated EventType = "view_created"
	// EventViewRefreshed fires when an existing view reruns after an invalidation.
	EventViewRefreshed EventType = "view_refreshed"
	// EventViewStopped fires when a view is torn down.
	EventViewStopped EventType = "view_stopped"
	// EventLookupFailed fires when a name could not be resolved.
	EventLookupFailed EventType = "lookup_failed"
	// EventFlush fires after every flush cycle.
	EventFlush EventType = "flush"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ViewEvent describes a view lifecycle transition.
type ViewEvent struct {
	EventBase
	ViewID int    `json:"view_id"`
	Name   string `json:"name"`
	Err    error  `json:"-"`
}

// LookupEvent describes a failed template lookup.
type LookupEvent struct {
	EventBase
	Name string `json:"name"`
}

// FlushEvent summarizes one flush.
type FlushEvent struct {
	EventBase
	Reruns   int           `json:"reruns"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for render observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnViewCreated   func(*ViewEvent)
	OnViewRefreshed func(*ViewEvent)
	OnViewStopped   func(*ViewEvent)
	OnLookupFailed  func(*LookupEvent)
	OnFlush         func(*FlushEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnViewCreated:   chain(h.OnViewCreated, other.OnViewCreated),
		OnViewRefreshed: chain(h.OnViewRefreshed, other.OnViewRefreshed),
		OnViewStopped:   chain(h.OnViewStopped, other.OnViewStopped),
		OnLookupFailed:  chain(h.OnLookupFailed, other.OnLookupFailed),
		OnFlush:         chain(h.OnFlush, other.OnFlush),
	}
}

func chain[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}
