package engine

import "github.com/Zyko0/go-sdl3/sdl"

type Button int

const (
	ButtonNone Button = iota
	ButtonVisual
	ButtonAudio
	ButtonRetry
	ButtonBack
)

func (b Button) Label() string {
	switch b {
	case ButtonVisual:
		return "Visual"
	case ButtonAudio:
		return "Audio"
	case ButtonRetry:
		return "Retry"
	case ButtonBack:
		return "Back"
	}
	return ""
}

type Rect struct {
	X, Y, W, H float32
}

func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

func (r Rect) FRect() sdl.FRect { return sdl.FRect{X: r.X, Y: r.Y, W: r.W, H: r.H} }

const (
	buttonW   = 220
	buttonH   = 70
	buttonGap = 40
)

// Layout places the buttons of each screen on a W x H window.
type Layout struct {
	W, H float32
}

func NewLayout(w, h int) Layout {
	return Layout{W: float32(w), H: float32(h)}
}

// FingerPoint maps a touch position normalized to [0,1] onto the window.
func (l Layout) FingerPoint(nx, ny float32) (float32, float32) {
	return nx * l.W, ny * l.H
}

type PlacedButton struct {
	Button Button
	Rect   Rect
}

// Buttons returns the buttons visible for d. The menu shows the two mode
// buttons in the middle of the window; result screens show Retry and Back
// below the message.
func (l Layout) Buttons(d Display) []PlacedButton {
	switch {
	case d.Screen == ScreenMenu:
		return l.row(l.H/2-buttonH/2, ButtonVisual, ButtonAudio)
	case d.ShowControls:
		return l.row(l.H*2/3, ButtonRetry, ButtonBack)
	}
	return nil
}

func (l Layout) row(y float32, left, right Button) []PlacedButton {
	x := l.W/2 - buttonW - buttonGap/2
	return []PlacedButton{
		{Button: left, Rect: Rect{X: x, Y: y, W: buttonW, H: buttonH}},
		{Button: right, Rect: Rect{X: x + buttonW + buttonGap, Y: y, W: buttonW, H: buttonH}},
	}
}

func (l Layout) HitTest(d Display, x, y float32) Button {
	for _, b := range l.Buttons(d) {
		if b.Rect.Contains(x, y) {
			return b.Button
		}
	}
	return ButtonNone
}

// PointerInput turns a pointer press into a machine input. A press on a
// button is never also a respond signal. ok is false when the press has no
// meaning on the current screen.
func (l Layout) PointerInput(d Display, x, y float32) (in Input, ok bool) {
	switch l.HitTest(d, x, y) {
	case ButtonVisual:
		return Select(ModeVisual), true
	case ButtonAudio:
		return Select(ModeAudio), true
	case ButtonRetry:
		return Retry(), true
	case ButtonBack:
		return Back(), true
	}
	if d.Screen == ScreenMenu {
		return Input{}, false
	}
	return Respond(), true
}
