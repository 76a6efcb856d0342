// Package form implements the predict, choose and submit steps of the
// pricing form as transitions over an explicit Session value.
package form

import (
	"github.com/PippinModels/commercial-pricing-app/internal/cascade"
	"github.com/PippinModels/commercial-pricing-app/internal/model"
)

// State is the position of a session in the form.
type State string

// Session states. A successful submit returns the session to StateIdle.
const (
	StateIdle      State = "idle"
	StatePredicted State = "predicted"
	StateManual    State = "manual"
	StateChosen    State = "chosen"
)

// ManualOption is always offered next to derived ranges.
const ManualOption = "Other (Enter manually)"

// Notice levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// User-facing notice texts.
const (
	MsgDisclaimer = "Predicted pricing is based on a single parcel search."
	MsgNoMatch    = "No prediction found. Enter your own predicted value."
	MsgNoSource   = "No prediction file found. Run the pipeline first."
	MsgDuplicate  = "You've already submitted this selection."
	MsgRecorded   = "Your selected range has been recorded."
	MsgFailed     = "Failed to record selection: "
	MsgSelected   = "You selected: "
)

// Notice is a message for the user about the last transition.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Session is the state carried between user actions.
type Session struct {
	ID        string             `json:"id"`
	State     State              `json:"state"`
	Choices   []cascade.Choice   `json:"choices,omitempty"`
	Key       model.Key          `json:"key"`
	Ranges    []model.PriceRange `json:"ranges,omitempty"`
	Selection *model.Selection   `json:"selection,omitempty"`
	Notice    *Notice            `json:"notice,omitempty"`
	Submitted *model.AuditRecord `json:"submitted,omitempty"`
}

// NewSession returns an idle session.
func NewSession(id string) Session {
	return Session{ID: id, State: StateIdle}
}

// Offered returns the options the session currently offers: derived range
// displays followed by ManualOption. A session in manual entry offers only
// ManualOption.
func Offered(s Session) []string {
	switch s.State {
	case StatePredicted, StateManual, StateChosen:
	default:
		return nil
	}
	opts := make([]string, 0, len(s.Ranges)+1)
	for _, r := range s.Ranges {
		opts = append(opts, r.Display)
	}
	return append(opts, ManualOption)
}

func notice(level, msg string) *Notice {
	return &Notice{Level: level, Message: msg}
}
