package engine

// EventType names what happened on a board
type EventType string

const (
	// EventStateChanged is emitted after every committed mutation of the board,
	// a space, a robot or a card field
	EventStateChanged EventType = "state_changed"
	// EventGameFinished is emitted once when a robot claims the final checkpoint
	EventGameFinished EventType = "game_finished"
)

// Event is delivered to board listeners
type Event struct {
	Type EventType
	// Subject is "board", "space", "robot" or "field"
	Subject string
	// Robot is the robot the event is about, if any. For EventGameFinished it is the winner.
	Robot *Robot
	// MoveCount is the board's move counter when the event was emitted
	MoveCount int
}

// Listener receives board events. Listeners run synchronously on the
// goroutine that mutated the board and must not mutate it themselves.
type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// Subscribe registers a listener and returns a function that removes it
func (b *Board) Subscribe(fn Listener) (unsubscribe func()) {
	b.nextListenerID++
	id := b.nextListenerID
	b.listeners = append(b.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		for i, entry := range b.listeners {
			if entry.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

func (b *Board) emit(event Event) {
	event.MoveCount = b.counter
	for _, entry := range b.listeners {
		entry.fn(event)
	}
}

func (b *Board) notifyChange(subject string, robot *Robot) {
	b.emit(Event{Type: EventStateChanged, Subject: subject, Robot: robot})
}
