package notification

// Event is a point-in-time fact pushed to subscribers. A missed event is
// recoverable by polling the store, so delivery is best effort.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Event names carried on the push channel.
const (
	EventSessionStarted = "session-started"
	EventSessionEnded   = "session-ended"
	EventUserVerified   = "user-verified"
)

// Publisher is the fan-out channel lifecycle events are pushed to.
// Publish must not block the caller.
type Publisher interface {
	Publish(event Event)
}
