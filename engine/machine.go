package engine

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMinDelay = 2000 * time.Millisecond
	DefaultMaxDelay = 5000 * time.Millisecond
)

// DelayRange is the half-open interval [Min, Max) the wait before a
// stimulus is drawn from, at millisecond resolution.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

func DefaultDelayRange() DelayRange {
	return DelayRange{Min: DefaultMinDelay, Max: DefaultMaxDelay}
}

func (d DelayRange) Sample(r *rand.Rand) time.Duration {
	span := (d.Max - d.Min).Milliseconds()
	if span <= 0 {
		return d.Min
	}
	return d.Min + time.Duration(r.Int63n(span))*time.Millisecond
}

// Machine holds the transition table of the reaction test. Next never
// performs side effects itself; it returns them as commands.
type Machine struct {
	Delays DelayRange
	rng    *rand.Rand
	newID  func() uuid.UUID
}

func NewMachine(delays DelayRange, r *rand.Rand) *Machine {
	return &Machine{Delays: delays, rng: r, newID: uuid.New}
}

func (m *Machine) Next(t Trial, in Input, now time.Time) (Trial, []Command) {
	switch in.Kind {
	case InputSelect:
		if t.State != StateIdle {
			return t, nil
		}
		next := m.start(in.Mode)
		return next, []Command{
			{Type: CmdActivateAudio},
			cancelTimer(),
			scheduleTimer(next),
			render(waitingDisplay(next.Mode)),
		}

	case InputRetry:
		if t.State != StateResult {
			return t, nil
		}
		next := m.start(t.Mode)
		return next, []Command{
			cancelTimer(),
			scheduleTimer(next),
			render(waitingDisplay(next.Mode)),
		}

	case InputBack:
		if t.State != StateResult {
			return t, nil
		}
		return Trial{}, []Command{cancelTimer(), render(menuDisplay())}

	case InputAbort:
		if t.State == StateIdle {
			return t, nil
		}
		cmds := []Command{cancelTimer()}
		if t.State == StateStimulus {
			cmds = append(cmds, lowerLine(onsetLine(t.Mode)))
		}
		return Trial{}, append(cmds, render(menuDisplay()))

	case InputStimulusDue:
		if t.State != StateWaiting || in.TrialID != t.ID {
			return t, nil
		}
		t.State = StateStimulus
		t.StimulusStart = now
		cmds := []Command{}
		if t.Mode == ModeAudio {
			cmds = append(cmds, Command{Type: CmdPlayTone})
		}
		cmds = append(cmds, render(stimulusDisplay(t.Mode)), raiseLine(onsetLine(t.Mode)))
		return t, cmds

	case InputRespond:
		switch t.State {
		case StateWaiting:
			t.State = StateResult
			t.RespondedAt = now
			t.Outcome = TooEarly()
			return t, []Command{
				cancelTimer(),
				pulseLine(LineResponse),
				render(resultDisplay(t.Outcome)),
				record(t),
			}
		case StateStimulus:
			t.State = StateResult
			t.RespondedAt = now
			// A press stamped before the onset was made while waiting and
			// only delivered after it.
			if now.Before(t.StimulusStart) {
				t.Outcome = TooEarly()
			} else {
				t.Outcome = Measured(elapsedMS(t.StimulusStart, now))
			}
			return t, []Command{
				lowerLine(onsetLine(t.Mode)),
				pulseLine(LineResponse),
				render(resultDisplay(t.Outcome)),
				record(t),
			}
		}
	}
	return t, nil
}

func (m *Machine) start(mode Mode) Trial {
	return Trial{
		ID:             m.newID(),
		Mode:           mode,
		State:          StateWaiting,
		ScheduledDelay: m.Delays.Sample(m.rng),
	}
}

// elapsedMS rounds to the nearest millisecond and never goes negative.
func elapsedMS(from, to time.Time) int64 {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return d.Round(time.Millisecond).Milliseconds()
}
