package engine

import "fmt"

// Mode is the stimulus channel of a trial.
type Mode int

const (
	ModeVisual Mode = iota
	ModeAudio
)

func (m Mode) String() string {
	if m == ModeAudio {
		return "audio"
	}
	return "visual"
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "visual":
		return ModeVisual, nil
	case "audio":
		return ModeAudio, nil
	}
	return 0, fmt.Errorf("unknown mode: %q", s)
}

// Screen selects what the renderer draws.
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenWaiting
	ScreenFlash
	ScreenCue
	ScreenEarly
	ScreenResult
)

// Display is everything the renderer needs for one screen.
type Display struct {
	Screen       Screen
	Message      string
	ShowControls bool
}

const (
	TextTooEarly = "Too Early!"
	TextCue      = "CLICK!"
)

func waitingText(m Mode) string {
	if m == ModeAudio {
		return "Wait for Beep..."
	}
	return "Wait for White..."
}

func menuDisplay() Display {
	return Display{Screen: ScreenMenu}
}

func waitingDisplay(m Mode) Display {
	return Display{Screen: ScreenWaiting, Message: waitingText(m)}
}

// stimulusDisplay is a pure flash for visual trials. Audio trials keep a
// text cue since nothing else changes on screen.
func stimulusDisplay(m Mode) Display {
	if m == ModeAudio {
		return Display{Screen: ScreenCue, Message: TextCue}
	}
	return Display{Screen: ScreenFlash}
}

func resultDisplay(o Outcome) Display {
	if o.Kind == OutcomeTooEarly {
		return Display{Screen: ScreenEarly, Message: TextTooEarly, ShowControls: true}
	}
	return Display{Screen: ScreenResult, Message: fmt.Sprintf("%d ms", o.ReactionMS), ShowControls: true}
}

// Trigger lines of the DLP-IO8-G.
type TriggerLine string

const (
	LineVisualOnset TriggerLine = "1"
	LineAudioOnset  TriggerLine = "2"
	LineResponse    TriggerLine = "4"
)

func onsetLine(m Mode) TriggerLine {
	if m == ModeAudio {
		return LineAudioOnset
	}
	return LineVisualOnset
}
