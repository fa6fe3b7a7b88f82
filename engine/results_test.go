package engine

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func resultTrial(mode Mode, outcome Outcome, delay time.Duration) Trial {
	return Trial{
		ID:             uuid.New(),
		Mode:           mode,
		State:          StateResult,
		ScheduledDelay: delay,
		Outcome:        outcome,
	}
}

func TestResultLogSaveAndRead(t *testing.T) {
	l := &ResultLog{}
	l.Log(resultTrial(ModeVisual, Measured(231), 2500*time.Millisecond), t0)
	l.Log(resultTrial(ModeAudio, TooEarly(), 4100*time.Millisecond), t0.Add(time.Minute))

	path := filepath.Join(t.TempDir(), "results.csv")
	if err := l.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "trial_id,mode,outcome,reaction_ms,delay_ms,completed_at" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], ",audio,too_early,,4100,") {
		t.Fatalf("too early row = %q, want empty reaction_ms", lines[2])
	}

	got, err := ReadResults(path)
	if err != nil {
		t.Fatalf("ReadResults() error = %v", err)
	}
	if len(got.Entries) != len(l.Entries) {
		t.Fatalf("read %d entries, want %d", len(got.Entries), len(l.Entries))
	}
	for i := range l.Entries {
		want, have := l.Entries[i], got.Entries[i]
		if have.TrialID != want.TrialID || have.Mode != want.Mode || have.Outcome != want.Outcome ||
			have.DelayMS != want.DelayMS || !have.CompletedAt.Equal(want.CompletedAt) {
			t.Errorf("entry %d = %+v, want %+v", i, have, want)
		}
	}
}

func TestReadResultsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "short row", body: uuid.NewString() + ",visual\n"},
		{name: "bad id", body: "nope,visual,measured,200,3000,2026-01-02T15:04:05Z\n"},
		{name: "bad mode", body: uuid.NewString() + ",smell,measured,200,3000,2026-01-02T15:04:05Z\n"},
		{name: "bad outcome", body: uuid.NewString() + ",visual,late,200,3000,2026-01-02T15:04:05Z\n"},
		{name: "bad reaction", body: uuid.NewString() + ",visual,measured,,3000,2026-01-02T15:04:05Z\n"},
		{name: "bad time", body: uuid.NewString() + ",visual,measured,200,3000,yesterday\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.csv")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := ReadResults(path); err == nil {
				t.Fatal("ReadResults() error = nil")
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	l := &ResultLog{}
	for _, ms := range []int64{200, 250, 300} {
		l.Log(resultTrial(ModeVisual, Measured(ms), 3*time.Second), t0)
	}
	l.Log(resultTrial(ModeVisual, TooEarly(), 3*time.Second), t0)
	l.Log(resultTrial(ModeAudio, Measured(180), 3*time.Second), t0)

	s := l.Summarize()

	if s.Trials != 5 {
		t.Fatalf("Trials = %d, want 5", s.Trials)
	}
	v := s.ByMode[ModeVisual]
	if v.Trials != 4 || v.TooEarly != 1 || v.Measured != 3 {
		t.Fatalf("visual counts = %+v", v)
	}
	if v.MeanMS != 250 {
		t.Errorf("visual mean = %g, want 250", v.MeanMS)
	}
	if math.Abs(v.SDMS-50) > 1e-9 {
		t.Errorf("visual sd = %g, want 50", v.SDMS)
	}
	if v.FastestMS != 200 || v.SlowestMS != 300 {
		t.Errorf("visual range = %d..%d, want 200..300", v.FastestMS, v.SlowestMS)
	}

	a := s.ByMode[ModeAudio]
	if a.Measured != 1 || a.MeanMS != 180 || a.SDMS != 0 {
		t.Errorf("audio = %+v, want one trial at 180 ms", a)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "results.csv", want: "results_20260102-150405.csv"},
		{path: "out/rt", want: "out/rt_20260102-150405"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := OutputName(tt.path, t0); got != tt.want {
				t.Fatalf("OutputName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
