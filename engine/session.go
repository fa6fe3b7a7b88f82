package engine

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Presenter shows a Display. Implementations only store or draw it; they
// must not feed input back into the session.
type Presenter interface {
	Present(d Display)
}

// Session is the presentation-side owner of the active trial. It runs the
// machine, executes the commands it returns and owns the single stimulus
// timer. It is not safe for concurrent use: Dispatch and Poll are called
// from the UI loop only.
type Session struct {
	machine *Machine
	clock   clockwork.Clock
	trial   Trial

	timer   clockwork.Timer
	timerID uuid.UUID

	presenter Presenter
	audio     AudioOutput
	tone      *SoundResource
	trigger   Trigger
	results   *ResultLog
}

type SessionOptions struct {
	Clock     clockwork.Clock
	Presenter Presenter
	Audio     AudioOutput
	Tone      *SoundResource
	Trigger   Trigger
	Results   *ResultLog
}

func NewSession(m *Machine, opts SessionOptions) *Session {
	s := &Session{
		machine:   m,
		clock:     opts.Clock,
		presenter: opts.Presenter,
		audio:     opts.Audio,
		tone:      opts.Tone,
		trigger:   opts.Trigger,
		results:   opts.Results,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.trigger == nil {
		s.trigger = noTrigger{}
	}
	if s.results == nil {
		s.results = &ResultLog{}
	}
	if s.tone == nil {
		s.tone = SynthesizeTone(DefaultToneSpec())
	}
	if s.presenter != nil {
		s.presenter.Present(menuDisplay())
	}
	return s
}

func (s *Session) Trial() Trial { return s.trial }

func (s *Session) Results() *ResultLog { return s.results }

// Dispatch feeds one input through the machine and runs the resulting
// commands in order.
func (s *Session) Dispatch(in Input) {
	prev := s.trial.State
	now := s.clock.Now()
	if !in.At.IsZero() {
		now = in.At
	}
	next, cmds := s.machine.Next(s.trial, in, now)
	s.trial = next

	if len(cmds) > 0 {
		log.Debug().
			Str("input", in.Kind.String()).
			Str("from", prev.String()).
			Str("to", next.State.String()).
			Msg("transition")
	}

	for _, c := range cmds {
		s.exec(c)
	}
}

// Poll delivers the stimulus timer if it has fired. The UI loop calls it
// once per frame, so the stimulus runs on the same thread as input.
func (s *Session) Poll() {
	if s.timer == nil {
		return
	}
	select {
	case <-s.timer.Chan():
		id := s.timerID
		s.timer = nil
		s.timerID = uuid.Nil
		s.Dispatch(StimulusDue(id))
	default:
	}
}

// Pending reports whether a stimulus timer is outstanding.
func (s *Session) Pending() bool { return s.timer != nil }

// Close drops the timer and lowers an onset line left raised by a stimulus
// on screen.
func (s *Session) Close() {
	s.cancelTimer()
	if s.trial.State == StateStimulus {
		s.trigger.Unset(onsetLine(s.trial.Mode))
	}
}

func (s *Session) exec(c Command) {
	switch c.Type {
	case CmdCancelTimer:
		s.cancelTimer()

	case CmdScheduleTimer:
		s.cancelTimer()
		s.timer = s.clock.NewTimer(c.Delay)
		s.timerID = c.TrialID
		log.Debug().
			Str("trial_id", c.TrialID.String()).
			Dur("delay", c.Delay).
			Msg("scheduled stimulus")

	case CmdActivateAudio:
		s.activateAudio()

	case CmdPlayTone:
		s.activateAudio()
		if s.audio == nil || !s.audio.Play(s.tone) {
			log.Warn().Msg("tone not played")
		}

	case CmdTrigger:
		switch c.Edge {
		case EdgeRaise:
			s.trigger.Set(c.Line)
		case EdgeLower:
			s.trigger.Unset(c.Line)
		default:
			s.trigger.Pulse(c.Line)
		}

	case CmdRender:
		if s.presenter != nil {
			s.presenter.Present(c.Display)
		}

	case CmdRecord:
		rec := s.results.Log(c.Trial, s.clock.Now())
		ev := log.Info().
			Str("trial_id", rec.TrialID.String()).
			Str("mode", rec.Mode.String()).
			Str("outcome", rec.Outcome.Kind.String()).
			Int64("delay_ms", rec.DelayMS)
		if rec.Outcome.Kind == OutcomeMeasured {
			ev = ev.Int64("reaction_ms", rec.Outcome.ReactionMS)
		}
		ev.Msg("trial finished")
	}
}

// activateAudio resumes a suspended output. Failure is logged only; the
// trial goes on without sound.
func (s *Session) activateAudio() {
	if s.audio == nil || !s.audio.Paused() {
		return
	}
	if err := s.audio.Resume(); err != nil {
		log.Warn().Err(err).Msg("audio resume failed")
	}
}

// cancelTimer stops and drains the outstanding timer, if any.
func (s *Session) cancelTimer() {
	if s.timer == nil {
		return
	}
	if !s.timer.Stop() {
		select {
		case <-s.timer.Chan():
		default:
		}
	}
	s.timer = nil
	s.timerID = uuid.Nil
}
