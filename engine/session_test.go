package engine

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type fakePresenter struct {
	shown []Display
}

func (p *fakePresenter) Present(d Display) { p.shown = append(p.shown, d) }

func (p *fakePresenter) last() Display { return p.shown[len(p.shown)-1] }

type fakeAudio struct {
	paused    bool
	resumeErr error
	resumes   int
	played    int
}

func (a *fakeAudio) Paused() bool { return a.paused }

func (a *fakeAudio) Resume() error {
	a.resumes++
	if a.resumeErr != nil {
		return a.resumeErr
	}
	a.paused = false
	return nil
}

func (a *fakeAudio) Play(*SoundResource) bool {
	a.played++
	return !a.paused
}

// fakeTrigger records "+line", "-line" and "^line" for Set, Unset and Pulse.
type fakeTrigger struct {
	events []string
}

func (f *fakeTrigger) Set(l TriggerLine) { f.events = append(f.events, "+"+string(l)) }

func (f *fakeTrigger) Unset(l TriggerLine) { f.events = append(f.events, "-"+string(l)) }

func (f *fakeTrigger) Pulse(l TriggerLine) { f.events = append(f.events, "^"+string(l)) }

type sessionFixture struct {
	clock     *clockwork.FakeClock
	presenter *fakePresenter
	audio     *fakeAudio
	trigger   *fakeTrigger
	session   *Session
}

func newSessionFixture(delays DelayRange) *sessionFixture {
	f := &sessionFixture{
		clock:     clockwork.NewFakeClockAt(t0),
		presenter: &fakePresenter{},
		audio:     &fakeAudio{paused: true},
		trigger:   &fakeTrigger{},
	}
	f.session = NewSession(NewMachine(delays, rand.New(rand.NewSource(11))), SessionOptions{
		Clock:     f.clock,
		Presenter: f.presenter,
		Audio:     f.audio,
		Trigger:   f.trigger,
	})
	return f
}

// advance moves the fake clock and runs one frame of the UI loop.
func (f *sessionFixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.session.Poll()
}

func TestSessionStartsAtMenu(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())

	if f.presenter.last().Screen != ScreenMenu {
		t.Fatalf("screen = %d, want menu", f.presenter.last().Screen)
	}
	if f.session.Trial().State != StateIdle {
		t.Fatalf("state = %s, want idle", f.session.Trial().State)
	}
}

func TestStimulusFiresExactlyAtDelay(t *testing.T) {
	for _, mode := range []Mode{ModeVisual, ModeAudio} {
		t.Run(mode.String(), func(t *testing.T) {
			f := newSessionFixture(DefaultDelayRange())
			f.session.Dispatch(Select(mode))
			delay := f.session.Trial().ScheduledDelay

			f.advance(delay - time.Millisecond)
			if got := f.session.Trial().State; got != StateWaiting {
				t.Fatalf("state after %s = %s, want waiting", delay-time.Millisecond, got)
			}

			f.advance(time.Millisecond)
			tr := f.session.Trial()
			if tr.State != StateStimulus {
				t.Fatalf("state after %s = %s, want stimulus", delay, tr.State)
			}
			if !tr.StimulusStart.Equal(t0.Add(delay)) {
				t.Fatalf("stimulus start = %s, want %s", tr.StimulusStart, t0.Add(delay))
			}
			if f.session.Pending() {
				t.Fatal("timer still pending after firing")
			}
		})
	}
}

func TestTooEarlyCancelsStimulus(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())
	f.session.Dispatch(Select(ModeVisual))
	delay := f.session.Trial().ScheduledDelay

	f.advance(delay / 2)
	f.session.Dispatch(Respond())

	if f.session.Pending() {
		t.Fatal("timer still pending after too early response")
	}
	f.advance(10 * time.Second)

	tr := f.session.Trial()
	if tr.State != StateResult || tr.Outcome.Kind != OutcomeTooEarly {
		t.Fatalf("trial = %s/%s, want result/too_early", tr.State, tr.Outcome.Kind)
	}
	if f.presenter.last().Message != "Too Early!" {
		t.Fatalf("message = %q, want Too Early!", f.presenter.last().Message)
	}
	for _, d := range f.presenter.shown {
		if d.Screen == ScreenFlash {
			t.Fatal("stimulus shown after cancellation")
		}
	}
}

func TestMeasuredMatchesClock(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())
	f.session.Dispatch(Select(ModeVisual))
	f.advance(f.session.Trial().ScheduledDelay)

	f.advance(237 * time.Millisecond)
	f.session.Dispatch(Respond())

	tr := f.session.Trial()
	if tr.Outcome != Measured(237) {
		t.Fatalf("outcome = %+v, want Measured(237)", tr.Outcome)
	}
	if f.presenter.last().Message != "237 ms" {
		t.Fatalf("message = %q, want \"237 ms\"", f.presenter.last().Message)
	}
	if got := len(f.session.Results().Entries); got != 1 {
		t.Fatalf("recorded %d results, want 1", got)
	}
}

func TestRespondIgnoredInIdleAndResult(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())

	f.session.Dispatch(Respond())
	if f.session.Trial() != (Trial{}) {
		t.Fatalf("respond in idle changed trial: %+v", f.session.Trial())
	}

	f.session.Dispatch(Select(ModeVisual))
	f.session.Dispatch(Respond())
	before := f.session.Trial()
	shown := len(f.presenter.shown)

	f.advance(time.Second)
	f.session.Dispatch(Respond())

	if f.session.Trial() != before {
		t.Fatalf("respond in result changed trial: %+v -> %+v", before, f.session.Trial())
	}
	if len(f.presenter.shown) != shown {
		t.Fatal("respond in result redrew the screen")
	}
	if got := len(f.session.Results().Entries); got != 1 {
		t.Fatalf("recorded %d results, want 1", got)
	}
}

func TestRetryReschedules(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())
	f.session.Dispatch(Select(ModeAudio))
	first := f.session.Trial()
	f.session.Dispatch(Respond())

	f.session.Dispatch(Retry())

	tr := f.session.Trial()
	if tr.State != StateWaiting || tr.Mode != ModeAudio {
		t.Fatalf("trial = %s/%s, want waiting/audio", tr.State, tr.Mode)
	}
	if tr.ID == first.ID {
		t.Fatal("retry kept the old trial id")
	}
	if !f.session.Pending() {
		t.Fatal("retry did not schedule a stimulus")
	}

	f.advance(tr.ScheduledDelay)
	if f.session.Trial().State != StateStimulus {
		t.Fatalf("state = %s, want stimulus", f.session.Trial().State)
	}
}

func TestBackClearsTimer(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())
	f.session.Dispatch(Select(ModeVisual))
	f.session.Dispatch(Respond())

	f.session.Dispatch(Back())

	if f.session.Trial().State != StateIdle {
		t.Fatalf("state = %s, want idle", f.session.Trial().State)
	}
	if f.session.Pending() {
		t.Fatal("timer outstanding after back")
	}
	if f.presenter.last().Screen != ScreenMenu {
		t.Fatalf("screen = %d, want menu", f.presenter.last().Screen)
	}
}

func TestAbortWhileWaitingDropsTimer(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())
	f.session.Dispatch(Select(ModeVisual))

	f.session.Dispatch(Abort())
	f.advance(10 * time.Second)

	if f.session.Trial().State != StateIdle {
		t.Fatalf("state = %s, want idle", f.session.Trial().State)
	}
	if len(f.session.Results().Entries) != 0 {
		t.Fatal("aborted trial was recorded")
	}
}

func TestAudioScenario(t *testing.T) {
	f := newSessionFixture(DelayRange{Min: 3000 * time.Millisecond, Max: 3001 * time.Millisecond})

	f.session.Dispatch(Select(ModeAudio))
	if f.audio.resumes != 1 || f.audio.paused {
		t.Fatalf("audio not activated by mode selection: resumes=%d paused=%v", f.audio.resumes, f.audio.paused)
	}

	f.advance(3000 * time.Millisecond)
	if f.session.Trial().State != StateStimulus {
		t.Fatalf("state = %s, want stimulus", f.session.Trial().State)
	}
	if f.audio.played != 1 {
		t.Fatalf("tone played %d times, want 1", f.audio.played)
	}
	if f.presenter.last().Message != "CLICK!" {
		t.Fatalf("message = %q, want CLICK!", f.presenter.last().Message)
	}

	f.advance(150 * time.Millisecond)
	f.session.Dispatch(Respond())

	tr := f.session.Trial()
	if tr.State != StateResult || tr.Outcome != Measured(150) {
		t.Fatalf("trial = %s/%+v, want result/Measured(150)", tr.State, tr.Outcome)
	}
	want := []string{"+2", "-2", "^4"}
	if !reflect.DeepEqual(f.trigger.events, want) {
		t.Fatalf("trigger events = %v, want %v", f.trigger.events, want)
	}
}

func TestToneResumesSuspendedOutput(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())
	f.session.Dispatch(Select(ModeAudio))
	// the platform suspended the device again while waiting
	f.audio.paused = true

	f.advance(f.session.Trial().ScheduledDelay)

	if f.audio.resumes != 2 {
		t.Fatalf("resumes = %d, want 2", f.audio.resumes)
	}
	if f.audio.played != 1 {
		t.Fatalf("played = %d, want 1", f.audio.played)
	}
}

func TestAudioFailureIsNotFatal(t *testing.T) {
	f := newSessionFixture(DefaultDelayRange())
	f.audio.resumeErr = errors.New("blocked by policy")

	f.session.Dispatch(Select(ModeAudio))
	f.advance(f.session.Trial().ScheduledDelay)
	f.advance(300 * time.Millisecond)
	f.session.Dispatch(Respond())

	if got := f.session.Trial().Outcome; got != Measured(300) {
		t.Fatalf("outcome = %+v, want Measured(300)", got)
	}
}

func TestSessionWithoutAudio(t *testing.T) {
	s := NewSession(NewMachine(DefaultDelayRange(), rand.New(rand.NewSource(1))), SessionOptions{
		Clock: clockwork.NewFakeClockAt(t0),
	})
	defer s.Close()

	s.Dispatch(Select(ModeAudio))
	s.Dispatch(Respond())

	if s.Trial().Outcome.Kind != OutcomeTooEarly {
		t.Fatalf("outcome = %s, want too_early", s.Trial().Outcome.Kind)
	}
}

func TestOnsetLineHeldUntilResponse(t *testing.T) {
	tests := []struct {
		name   string
		finish func(f *sessionFixture)
		want   []string
	}{
		{
			name:   "response",
			finish: func(f *sessionFixture) { f.session.Dispatch(Respond()) },
			want:   []string{"+1", "-1", "^4"},
		},
		{
			name:   "abort",
			finish: func(f *sessionFixture) { f.session.Dispatch(Abort()) },
			want:   []string{"+1", "-1"},
		},
		{
			name:   "window closed",
			finish: func(f *sessionFixture) { f.session.Close() },
			want:   []string{"+1", "-1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(DelayRange{Min: 2000 * time.Millisecond, Max: 2001 * time.Millisecond})
			f.session.Dispatch(Select(ModeVisual))
			f.advance(2000 * time.Millisecond)

			if !reflect.DeepEqual(f.trigger.events, []string{"+1"}) {
				t.Fatalf("events at onset = %v, want [+1]", f.trigger.events)
			}

			tt.finish(f)

			if !reflect.DeepEqual(f.trigger.events, tt.want) {
				t.Fatalf("trigger events = %v, want %v", f.trigger.events, tt.want)
			}
		})
	}
}

func TestRespondUsesEventTime(t *testing.T) {
	f := newSessionFixture(DelayRange{Min: 2000 * time.Millisecond, Max: 2001 * time.Millisecond})
	f.session.Dispatch(Select(ModeVisual))
	f.advance(2000 * time.Millisecond)
	onset := f.clock.Now()

	// The press happened 180 ms after onset; the frame loop only got to it
	// 16 ms later.
	f.clock.Advance(196 * time.Millisecond)
	f.session.Dispatch(Respond().WithTime(onset.Add(180 * time.Millisecond)))

	if got := f.session.Trial().Outcome; got != Measured(180) {
		t.Fatalf("outcome = %+v, want Measured(180)", got)
	}
}

func TestPressBeforeOnsetDeliveredLate(t *testing.T) {
	f := newSessionFixture(DelayRange{Min: 2000 * time.Millisecond, Max: 2001 * time.Millisecond})
	f.session.Dispatch(Select(ModeVisual))
	f.advance(2000 * time.Millisecond)
	onset := f.clock.Now()

	f.session.Dispatch(Respond().WithTime(onset.Add(-3 * time.Millisecond)))

	if got := f.session.Trial().Outcome; got != TooEarly() {
		t.Fatalf("outcome = %+v, want too early", got)
	}
}
