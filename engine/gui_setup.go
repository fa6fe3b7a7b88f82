package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
	"github.com/rs/zerolog/log"
)

type resOption struct {
	W, H  int
	Label string
}

var resOptions = []resOption{
	{800, 600, "800x600 (SVGA)"},
	{1024, 768, "1024x768 (XGA)"},
	{1280, 720, "1280x720 (HD)"},
	{1920, 1080, "1920x1080 (FHD)"},
	{2560, 1440, "2560x1440 (QHD)"},
	{3840, 2160, "3840x2160 (4K UHD)"},
}

// Text boxes of the setup form.
const (
	fieldOutput = iota
	fieldDLP
	fieldMinDelay
	fieldMaxDelay
	numFields
)

var fieldLabels = [numFields]string{
	"Output Results CSV:",
	"DLP-IO8-G device (empty: none):",
	"Shortest delay (ms):",
	"Longest delay (ms, exclusive):",
}

type setupAction int

const (
	setupNone setupAction = iota
	setupBrowseOutput
	setupStart
)

const (
	setupW = 800
	setupH = 750
)

func fieldRect(i int) Rect { return Rect{X: 50, Y: float32(50 + i*70), W: 650, H: 30} }

func browseRect() Rect { return Rect{X: 710, Y: 50, W: 70, H: 30} }

func resRect(i int) Rect { return Rect{X: 50, Y: float32(330 + i*35), W: 250, H: 30} }

func fixationRect() Rect { return Rect{X: 50, Y: 550, W: 250, H: 30} }

func fullscreenRect() Rect { return Rect{X: 50, Y: 590, W: 250, H: 30} }

func startRect() Rect { return Rect{X: 350, Y: 650, W: 100, H: 40} }

func checkBox(r Rect) Rect { return Rect{X: r.X, Y: r.Y, W: 20, H: 20} }

// setupForm is the state of the setup window. Edits stay in the form until
// Apply copies them into the config.
type setupForm struct {
	cfg        *Config
	text       [numFields]string
	focus      int
	res        int
	fixation   bool
	fullscreen bool
	status     string
}

func newSetupForm(cfg *Config) *setupForm {
	f := &setupForm{
		cfg:        cfg,
		focus:      -1,
		res:        2,
		fixation:   cfg.UseFixation,
		fullscreen: cfg.Fullscreen,
	}
	f.text[fieldOutput] = cfg.OutputFile
	f.text[fieldDLP] = cfg.DLPDevice
	f.text[fieldMinDelay] = strconv.FormatInt(cfg.MinDelay.Milliseconds(), 10)
	f.text[fieldMaxDelay] = strconv.FormatInt(cfg.MaxDelay.Milliseconds(), 10)
	for i, r := range resOptions {
		if cfg.ScreenWidth == r.W && cfg.ScreenHeight == r.H {
			f.res = i
			break
		}
	}
	return f
}

// Click handles a press at (x, y) and reports what the window must do.
func (f *setupForm) Click(x, y float32) setupAction {
	f.focus = -1
	for i := 0; i < numFields; i++ {
		if fieldRect(i).Contains(x, y) {
			f.focus = i
		}
	}
	switch {
	case browseRect().Contains(x, y):
		return setupBrowseOutput
	case fixationRect().Contains(x, y):
		f.fixation = !f.fixation
	case fullscreenRect().Contains(x, y):
		f.fullscreen = !f.fullscreen
	case startRect().Contains(x, y):
		return setupStart
	}
	for i := range resOptions {
		if resRect(i).Contains(x, y) {
			f.res = i
		}
	}
	return setupNone
}

// Type appends text to the focused box. Delay boxes take digits only.
func (f *setupForm) Type(s string) {
	if f.focus < 0 {
		return
	}
	if f.focus == fieldMinDelay || f.focus == fieldMaxDelay {
		s = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
	}
	f.text[f.focus] += s
}

func (f *setupForm) Backspace() {
	if f.focus < 0 {
		return
	}
	t := f.text[f.focus]
	_, size := utf8.DecodeLastRuneInString(t)
	f.text[f.focus] = t[:len(t)-size]
}

func (f *setupForm) SetOutput(path string) {
	f.text[fieldOutput] = path
}

// Apply validates the form and copies it into the config. The config is
// left untouched on error.
func (f *setupForm) Apply() error {
	c := *f.cfg
	c.OutputFile = strings.TrimSpace(f.text[fieldOutput])
	if c.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	c.DLPDevice = strings.TrimSpace(f.text[fieldDLP])

	minMS, err := strconv.Atoi(f.text[fieldMinDelay])
	if err != nil {
		return fmt.Errorf("shortest delay: %w", err)
	}
	maxMS, err := strconv.Atoi(f.text[fieldMaxDelay])
	if err != nil {
		return fmt.Errorf("longest delay: %w", err)
	}
	c.MinDelay = time.Duration(minMS) * time.Millisecond
	c.MaxDelay = time.Duration(maxMS) * time.Millisecond

	c.ScreenWidth = resOptions[f.res].W
	c.ScreenHeight = resOptions[f.res].H
	c.UseFixation = f.fixation
	c.Fullscreen = f.fullscreen

	if err := c.Validate(); err != nil {
		return err
	}
	*f.cfg = c
	return nil
}

// RunGuiSetup shows the settings window. It returns true when the user
// pressed START with valid settings, which are then in cfg and cached.
func RunGuiSetup(cfg *Config) bool {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.Error().Err(err).Msg("SDL_Init failed")
		return false
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		log.Error().Err(err).Msg("TTF_Init failed")
		return false
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer("reactime setup", setupW, setupH, 0)
	if err != nil {
		log.Error().Err(err).Msg("CreateWindowAndRenderer failed")
		return false
	}
	defer window.Destroy()
	defer renderer.Destroy()

	guiFont, err := openFont(cfg.FontFile, 18)
	if err != nil {
		log.Error().Err(err).Msg("no font for the setup window")
		return false
	}
	defer guiFont.Close()

	form := newSetupForm(cfg)
	// The save dialog may answer from another thread.
	chosen := make(chan string, 1)

	window.StartTextInput()
	defer window.StopTextInput()

	for {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				return false
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				switch form.Click(me.X, me.Y) {
				case setupBrowseOutput:
					filters := []sdl.DialogFileFilter{{Name: "CSV Files", Pattern: "csv"}}
					cb := sdl.NewDialogFileCallback(func(fileList []string, filter int32) {
						if len(fileList) > 0 {
							select {
							case chosen <- fileList[0]:
							default:
							}
						}
					})
					sdl.ShowSaveFileDialog(cb, window, filters, form.text[fieldOutput])
				case setupStart:
					if err := form.Apply(); err != nil {
						form.status = err.Error()
						continue
					}
					if err := cfg.SaveCache(CacheFile); err != nil {
						log.Warn().Err(err).Msg("settings not cached")
					}
					return true
				}
			case sdl.EVENT_TEXT_INPUT:
				form.Type(e.TextInputEvent().Text)
			case sdl.EVENT_KEY_DOWN:
				if e.KeyboardEvent().Key == sdl.K_BACKSPACE {
					form.Backspace()
				}
			}
		}

		select {
		case path := <-chosen:
			form.SetOutput(path)
		default:
		}

		drawSetup(renderer, guiFont, form)
		renderer.Present()
		sdl.Delay(10)
	}
}

func drawSetup(renderer *sdl.Renderer, font *ttf.Font, form *setupForm) {
	black := sdl.Color{R: 0, G: 0, B: 0, A: 255}
	label := func(text string, x, y float32, c sdl.Color) {
		if text == "" {
			return
		}
		surf, err := font.RenderTextBlended(text, c)
		if err != nil || surf == nil {
			return
		}
		defer surf.Destroy()
		tex, err := renderer.CreateTextureFromSurface(surf)
		if err != nil {
			return
		}
		r := sdl.FRect{X: x, Y: y, W: float32(surf.W), H: float32(surf.H)}
		renderer.RenderTexture(tex, nil, &r)
		tex.Destroy()
	}
	box := func(r Rect, fill, border sdl.Color) {
		fr := r.FRect()
		renderer.SetDrawColor(fill.R, fill.G, fill.B, fill.A)
		renderer.RenderFillRect(&fr)
		renderer.SetDrawColor(border.R, border.G, border.B, border.A)
		renderer.RenderRect(&fr)
	}
	check := func(r Rect, on bool, text string) {
		cb := checkBox(r)
		box(cb, sdl.Color{R: 255, G: 255, B: 255, A: 255}, black)
		if on {
			mark := Rect{X: cb.X + 4, Y: cb.Y + 4, W: 12, H: 12}.FRect()
			renderer.SetDrawColor(0, 150, 0, 255)
			renderer.RenderFillRect(&mark)
		}
		label(text, r.X+30, r.Y, black)
	}

	renderer.SetDrawColor(240, 240, 240, 255)
	renderer.Clear()

	white := sdl.Color{R: 255, G: 255, B: 255, A: 255}
	for i := 0; i < numFields; i++ {
		r := fieldRect(i)
		label(fieldLabels[i], r.X, r.Y-30, black)
		border := sdl.Color{R: 180, G: 180, B: 180, A: 255}
		if form.focus == i {
			border = sdl.Color{R: 0, G: 120, B: 255, A: 255}
		}
		box(r, white, border)
		label(form.text[i], r.X+5, r.Y+5, black)
	}

	br := browseRect()
	box(br, sdl.Color{R: 200, G: 200, B: 200, A: 255}, black)
	label("...", br.X+25, br.Y+5, black)

	for i, opt := range resOptions {
		check(resRect(i), form.res == i, opt.Label)
	}
	check(fixationRect(), form.fixation, "Show fixation cross")
	check(fullscreenRect(), form.fullscreen, "Fullscreen mode")

	sr := startRect()
	box(sr, sdl.Color{R: 0, G: 150, B: 0, A: 255}, sdl.Color{R: 0, G: 150, B: 0, A: 255})
	label("START", sr.X+25, sr.Y+10, white)

	label(form.status, 50, 705, sdl.Color{R: 200, G: 0, B: 0, A: 255})
}
