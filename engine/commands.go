package engine

import (
	"time"

	"github.com/google/uuid"
)

type InputKind int

const (
	InputSelect InputKind = iota
	InputRespond
	InputRetry
	InputBack
	InputAbort
	InputStimulusDue
)

func (k InputKind) String() string {
	switch k {
	case InputSelect:
		return "select"
	case InputRespond:
		return "respond"
	case InputRetry:
		return "retry"
	case InputBack:
		return "back"
	case InputAbort:
		return "abort"
	case InputStimulusDue:
		return "stimulus_due"
	}
	return "unknown"
}

// Input is one event fed to the machine. Mode is read for InputSelect,
// TrialID for InputStimulusDue. At, when set, is when the event happened;
// the session uses its clock otherwise.
type Input struct {
	Kind    InputKind
	Mode    Mode
	TrialID uuid.UUID
	At      time.Time
}

func Select(m Mode) Input { return Input{Kind: InputSelect, Mode: m} }

func Respond() Input { return Input{Kind: InputRespond} }

func Retry() Input { return Input{Kind: InputRetry} }

func Back() Input { return Input{Kind: InputBack} }

func Abort() Input { return Input{Kind: InputAbort} }

func StimulusDue(id uuid.UUID) Input { return Input{Kind: InputStimulusDue, TrialID: id} }

// WithTime stamps the input with the time the device reported it.
func (in Input) WithTime(at time.Time) Input {
	in.At = at
	return in
}

type CommandType int

const (
	CmdCancelTimer CommandType = iota
	CmdScheduleTimer
	CmdActivateAudio
	CmdPlayTone
	CmdTrigger
	CmdRender
	CmdRecord
)

// TriggerEdge says what a CmdTrigger does to its line.
type TriggerEdge int

const (
	EdgePulse TriggerEdge = iota
	EdgeRaise
	EdgeLower
)

func (e TriggerEdge) String() string {
	switch e {
	case EdgePulse:
		return "pulse"
	case EdgeRaise:
		return "raise"
	case EdgeLower:
		return "lower"
	}
	return "unknown"
}

// Command is a side effect requested by the machine. Only the fields that
// belong to Type are set.
type Command struct {
	Type    CommandType
	Delay   time.Duration
	TrialID uuid.UUID
	Line    TriggerLine
	Edge    TriggerEdge
	Display Display
	Trial   Trial
}

func cancelTimer() Command { return Command{Type: CmdCancelTimer} }

func scheduleTimer(t Trial) Command {
	return Command{Type: CmdScheduleTimer, Delay: t.ScheduledDelay, TrialID: t.ID}
}

func render(d Display) Command { return Command{Type: CmdRender, Display: d} }

func pulseLine(l TriggerLine) Command { return Command{Type: CmdTrigger, Line: l, Edge: EdgePulse} }

func raiseLine(l TriggerLine) Command { return Command{Type: CmdTrigger, Line: l, Edge: EdgeRaise} }

func lowerLine(l TriggerLine) Command { return Command{Type: CmdTrigger, Line: l, Edge: EdgeLower} }

func record(t Trial) Command { return Command{Type: CmdRecord, Trial: t} }
