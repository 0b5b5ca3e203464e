package syncer

// Event reports progress of a collection operation to the CLI or UI.
type Event struct {
	Dataset string // Dataset name
	Phase   Phase  // Operation phase
	Message string // Human-readable message for display
	Count   int    // Cached records after the phase
}

// Phase enumerates collection events.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseOnline
	PhaseOffline
	PhaseSeeded
	PhaseLoaded
	PhaseCreated
	PhaseUpdated
	PhaseDeleted
	PhaseWarning
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseOnline:
		return "online"
	case PhaseOffline:
		return "offline"
	case PhaseSeeded:
		return "seeded"
	case PhaseLoaded:
		return "loaded"
	case PhaseCreated:
		return "created"
	case PhaseUpdated:
		return "updated"
	case PhaseDeleted:
		return "deleted"
	case PhaseWarning:
		return "warning"
	default:
		return ""
	}
}

// Mode is the sync state of a collection, recomputed by every operation.
type Mode int

const (
	ModeOffline Mode = iota
	ModeOnline
)

func (m Mode) String() string {
	if m == ModeOnline {
		return "online"
	}
	return "offline"
}

// sendEvent sends an event through the channel without blocking.
func sendEvent(events chan<- Event, e Event) {
	if events == nil {
		return
	}
	select {
	case events <- e:
	default:
	}
}
