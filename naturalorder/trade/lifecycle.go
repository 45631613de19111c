package trade

import (
	"errors"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
)

// Event is a lifecycle action taken against a match.
type Event string

const (
	EventContact    Event = "contact"
	EventDismiss    Event = "dismiss"
	EventRestore    Event = "restore"
	EventRequest    Event = "request"
	EventConfirm    Event = "confirm"
	EventInvalidate Event = "invalidate"
	EventComplete   Event = "complete"
	EventCancel     Event = "cancel"
)

var (
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrTerminalState     = errors.New("match is completed or cancelled and accepts no changes")
	ErrNotParticipant    = errors.New("user is not a participant of this match")
	ErrOwnRequest        = errors.New("cannot confirm your own trade request")
	ErrNoPendingRequest  = errors.New("match has no pending request")
	ErrNotCustomCard     = errors.New("only custom cards can be deleted")
	ErrNotCardAdder      = errors.New("only the user who added a custom card can delete it")
	ErrConflict          = errors.New("match was modified concurrently")
)

// transitions is the full state machine: state × event → next state.
// Everything absent is rejected with ErrInvalidTransition (or
// ErrTerminalState for the two terminal statuses).
var transitions = map[models.MatchStatus]map[Event]models.MatchStatus{
	models.MatchActive: {
		EventContact: models.MatchContacted,
		EventDismiss: models.MatchDismissed,
		EventRequest: models.MatchRequested,
	},
	models.MatchContacted: {
		EventDismiss: models.MatchDismissed,
		EventRequest: models.MatchRequested,
	},
	models.MatchDismissed: {
		EventRestore: models.MatchActive,
		EventRequest: models.MatchRequested,
	},
	models.MatchRequested: {
		EventConfirm:    models.MatchConfirmed,
		EventInvalidate: models.MatchContacted,
	},
	models.MatchConfirmed: {
		EventComplete: models.MatchCompleted,
		EventCancel:   models.MatchCancelled,
	},
}

// Next resolves a transition. Terminal statuses reject every event.
func Next(from models.MatchStatus, ev Event) (models.MatchStatus, error) {
	if from.Terminal() {
		return from, ErrTerminalState
	}
	next, ok := transitions[from][ev]
	if !ok {
		return from, ErrInvalidTransition
	}
	return next, nil
}

// CanEditCards reports whether card-level edits are legal outright in the
// given status. Edits during `requested` are handled separately: they are
// accepted but invalidate the pending request.
func CanEditCards(s models.MatchStatus) bool {
	switch s {
	case models.MatchActive, models.MatchContacted, models.MatchDismissed:
		return true
	}
	return false
}
