package player

// EventType identifies what happened inside a session.
type EventType string

const (
	EventTrackStarted    EventType = "track_started"
	EventTrackFailed     EventType = "track_failed"
	EventTracksAdded     EventType = "tracks_added"
	EventResolveFailed   EventType = "resolve_failed"
	EventQueueEnded      EventType = "queue_ended"
	EventSessionStopped  EventType = "session_stopped"
	EventTooManyFailures EventType = "too_many_failures"
)

// Event is published on Session.Events so the command layer can post
// follow-up messages without polling.
type Event struct {
	Type    EventType
	GuildID string
	Track   *Track
	Added   []Track
	Input   string
	Err     error
}

func (e EventType) Emoji() string {
	m := map[EventType]string{
		EventTrackStarted:    "▶️",
		EventTrackFailed:     "❌",
		EventTracksAdded:     "🎶",
		EventResolveFailed:   "❌",
		EventQueueEnded:      "⏹",
		EventSessionStopped:  "⏹",
		EventTooManyFailures: "🛑",
	}
	return m[e]
}
