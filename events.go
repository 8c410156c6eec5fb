package dynload

// Observer receives loader lifecycle events. Implementations must be safe
// for concurrent use; events are emitted from the goroutines running loads.
type Observer interface {
	On(eventData EventData)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(eventData EventData)

func (f ObserverFunc) On(eventData EventData) { f(eventData) }

// Event represents a loader event type.
type Event int

const (
	// EventHit is emitted when Load settles immediately from the cache.
	EventHit Event = iota
	// EventMiss is emitted before every injector attempt.
	EventMiss
	// EventDedup is emitted when Load joins a load already in flight.
	EventDedup
	// EventRetry is emitted when a failed attempt will be retried.
	EventRetry
	// EventSuccess is emitted when a load succeeds.
	EventSuccess
	// EventFailure is emitted when a non-fatal load runs out of retries.
	EventFailure
	// EventFatal is emitted when a fatal load runs out of retries.
	EventFatal
)

func (e Event) String() string {
	switch e {
	case EventHit:
		return "hit"
	case EventMiss:
		return "miss"
	case EventDedup:
		return "dedup"
	case EventRetry:
		return "retry"
	case EventSuccess:
		return "success"
	case EventFailure:
		return "failure"
	case EventFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// EventData carries the details of a loader event. Retry is the budget left
// at the time of the event. Err is set for retry, failure and fatal events.
type EventData struct {
	Event Event
	URL   string
	Name  string
	Retry int
	Err   error
}
