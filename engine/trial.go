package engine

import (
	"time"

	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	StateWaiting
	StateStimulus
	StateResult
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateStimulus:
		return "stimulus"
	case StateResult:
		return "result"
	}
	return "unknown"
}

type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeTooEarly
	OutcomeMeasured
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTooEarly:
		return "too_early"
	case OutcomeMeasured:
		return "measured"
	}
	return "none"
}

// Outcome is the result of a finished trial. ReactionMS is only meaningful
// when Kind is OutcomeMeasured.
type Outcome struct {
	Kind       OutcomeKind
	ReactionMS int64
}

func TooEarly() Outcome { return Outcome{Kind: OutcomeTooEarly} }

func Measured(ms int64) Outcome { return Outcome{Kind: OutcomeMeasured, ReactionMS: ms} }

// Trial is one attempt of the test, from mode selection to result. The zero
// value is the idle menu.
type Trial struct {
	ID             uuid.UUID
	Mode           Mode
	State          State
	ScheduledDelay time.Duration
	StimulusStart  time.Time
	RespondedAt    time.Time
	Outcome        Outcome
}

// HasStimulusStart reports whether StimulusStart carries a value for the
// trial's current state.
func (t Trial) HasStimulusStart() bool {
	switch t.State {
	case StateStimulus:
		return true
	case StateResult:
		return t.Outcome.Kind == OutcomeMeasured
	}
	return false
}
