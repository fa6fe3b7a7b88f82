package engine

import (
	"github.com/Zyko0/go-sdl3/sdl"
)

// screenPresenter holds the display the frame loop draws. The session
// updates it through Present; Draw runs once per frame.
type screenPresenter struct {
	cfg      *Config
	renderer *sdl.Renderer
	text     *TextCache
	layout   Layout
	current  Display
}

func (p *screenPresenter) Present(d Display) { p.current = d }

func (p *screenPresenter) Display() Display { return p.current }

func (p *screenPresenter) background() sdl.Color {
	switch p.current.Screen {
	case ScreenFlash:
		return p.cfg.FlashColor
	case ScreenEarly:
		return p.cfg.EarlyColor
	}
	return p.cfg.BGColor
}

func (p *screenPresenter) Draw() {
	bg := p.background()
	p.renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A)
	p.renderer.Clear()

	switch p.current.Screen {
	case ScreenFlash:
		// nothing but the flash colour
	case ScreenMenu:
		p.drawText("Reaction Time Test", p.layout.W/2, p.layout.H/4)
	case ScreenWaiting:
		p.drawText(p.current.Message, p.layout.W/2, p.layout.H/3)
		if p.cfg.UseFixation {
			drawFixationCross(p.renderer, p.layout.W/2, p.layout.H/2, p.cfg.TextColor)
		}
	default:
		y := p.layout.H / 2
		if p.current.ShowControls {
			y = p.layout.H / 3
		}
		p.drawText(p.current.Message, p.layout.W/2, y)
	}

	for _, b := range p.layout.Buttons(p.current) {
		p.drawButton(b)
	}

	p.renderer.Present()
}

// drawText centres text on (cx, cy).
func (p *screenPresenter) drawText(text string, cx, cy float32) {
	t := p.text.Get(text, p.cfg.TextColor)
	if t == nil {
		return
	}
	r := sdl.FRect{X: cx - t.W/2, Y: cy - t.H/2, W: t.W, H: t.H}
	p.renderer.RenderTexture(t.Texture, nil, &r)
}

func (p *screenPresenter) drawButton(b PlacedButton) {
	c := p.cfg.ButtonColor
	box := b.Rect.FRect()
	p.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	p.renderer.RenderFillRect(&box)
	t := p.cfg.TextColor
	p.renderer.SetDrawColor(t.R, t.G, t.B, t.A)
	p.renderer.RenderRect(&box)
	p.drawText(b.Button.Label(), b.Rect.X+b.Rect.W/2, b.Rect.Y+b.Rect.H/2)
}

const CrossSize = 20

func drawFixationCross(renderer *sdl.Renderer, mx, my float32, color sdl.Color) {
	renderer.SetDrawColor(color.R, color.G, color.B, color.A)
	renderer.RenderLine(mx-CrossSize, my, mx+CrossSize, my)
	renderer.RenderLine(mx, my-CrossSize, mx, my+CrossSize)
}
