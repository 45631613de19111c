package trade

import (
	"errors"
	"testing"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
)

var allStatuses = []models.MatchStatus{
	models.MatchActive,
	models.MatchContacted,
	models.MatchRequested,
	models.MatchConfirmed,
	models.MatchCompleted,
	models.MatchCancelled,
	models.MatchDismissed,
}

var allEvents = []Event{
	EventContact,
	EventDismiss,
	EventRestore,
	EventRequest,
	EventConfirm,
	EventInvalidate,
	EventComplete,
	EventCancel,
}

// The full contract: every state × event pair either lands on the expected
// next state or is rejected.
func Test_Next_exhaustive(t *testing.T) {
	allowed := map[models.MatchStatus]map[Event]models.MatchStatus{
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

	for _, from := range allStatuses {
		for _, ev := range allEvents {
			next, err := Next(from, ev)

			if want, ok := allowed[from][ev]; ok {
				if err != nil {
					t.Errorf("Next(%s, %s) returned error %v, want %s", from, ev, err, want)
				} else if next != want {
					t.Errorf("Next(%s, %s) = %s, want %s", from, ev, next, want)
				}
				continue
			}

			if err == nil {
				t.Errorf("Next(%s, %s) = %s, want rejection", from, ev, next)
				continue
			}
			if from.Terminal() && !errors.Is(err, ErrTerminalState) {
				t.Errorf("Next(%s, %s) error = %v, want ErrTerminalState", from, ev, err)
			}
			if !from.Terminal() && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Next(%s, %s) error = %v, want ErrInvalidTransition", from, ev, err)
			}
		}
	}
}

func Test_CanEditCards(t *testing.T) {
	editable := map[models.MatchStatus]bool{
		models.MatchActive:    true,
		models.MatchContacted: true,
		models.MatchDismissed: true,
	}
	for _, s := range allStatuses {
		if got := CanEditCards(s); got != editable[s] {
			t.Errorf("CanEditCards(%s) = %v, want %v", s, got, editable[s])
		}
	}
}
