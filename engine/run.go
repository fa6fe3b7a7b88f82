package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Run opens the test window and blocks until the user quits. Results are
// written next to cfg.OutputFile when the window closes.
func Run(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Touch presses are handled as finger events; without this SDL would
	// also synthesize a mouse click for each one.
	sdl.SetHint("SDL_TOUCH_MOUSE_EVENTS", "0")

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("SDL_Init: %w", err)
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		return fmt.Errorf("TTF_Init: %w", err)
	}
	defer ttf.Quit()

	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}

	window, renderer, err := sdl.CreateWindowAndRenderer("reactime", cfg.ScreenWidth, cfg.ScreenHeight, windowFlags)
	if err != nil {
		return fmt.Errorf("CreateWindowAndRenderer: %w", err)
	}
	defer window.Destroy()
	defer renderer.Destroy()

	if cfg.VSync {
		renderer.SetVSync(1)
	} else {
		renderer.SetVSync(0)
	}

	font, err := openFont(cfg.FontFile, cfg.FontSize)
	if err != nil {
		log.Warn().Err(err).Msg("text disabled")
	} else {
		defer font.Close()
	}

	text := NewTextCache(renderer, font)
	defer text.Destroy()

	mixer := NewAudioMixer()
	var audio AudioOutput
	if out, err := openAudio(mixer); err != nil {
		log.Warn().Err(err).Msg("audio unavailable")
	} else {
		defer out.Close()
		audio = out
	}

	var trig Trigger
	if cfg.DLPDevice != "" {
		dlp, err := OpenDLPIO8G(cfg.DLPDevice, 9600)
		if err != nil {
			log.Warn().Err(err).Str("device", cfg.DLPDevice).Msg("trigger box unavailable")
		} else {
			defer dlp.Close()
			trig = dlp
		}
	}

	layout := windowLayout(window, cfg)
	if !DisplaySplash(renderer, cfg.SplashFile, int(layout.W), int(layout.H), cfg.BGColor) {
		return nil
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	clock := clockwork.NewRealClock()
	presenter := &screenPresenter{cfg: cfg, renderer: renderer, text: text, layout: layout}
	results := &ResultLog{}
	session := NewSession(NewMachine(cfg.Delays(), rand.New(rand.NewSource(seed))), SessionOptions{
		Clock:     clock,
		Presenter: presenter,
		Audio:     audio,
		Tone:      SynthesizeTone(cfg.Tone()),
		Trigger:   trig,
		Results:   results,
	})
	defer session.Close()

	started := time.Now()
	runLoop(cfg, window, clock, session, presenter)

	if len(results.Entries) == 0 {
		return nil
	}
	outputName := OutputName(cfg.OutputFile, started)
	if err := results.Save(outputName); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	log.Info().Str("file", outputName).Int("trials", len(results.Entries)).Msg("results saved")
	return nil
}

// windowLayout sizes the layout to the window as shown, which differs from
// the configured size when fullscreen or resized.
func windowLayout(window *sdl.Window, cfg *Config) Layout {
	w, h, err := window.Size()
	if err != nil || w <= 0 || h <= 0 {
		return NewLayout(cfg.ScreenWidth, cfg.ScreenHeight)
	}
	return NewLayout(int(w), int(h))
}

func runLoop(cfg *Config, window *sdl.Window, clock clockwork.Clock, session *Session, presenter *screenPresenter) {
	// stamp dates an input with the moment SDL saw the event rather than
	// the moment this loop got to it.
	stamp := func(in Input, ts uint64) Input {
		return in.WithTime(eventTime(clock.Now(), sdl.TicksNS(), ts))
	}
	pointer := func(x, y float32, ts uint64) {
		if in, ok := presenter.layout.PointerInput(presenter.Display(), x, y); ok {
			session.Dispatch(stamp(in, ts))
		}
	}

	for {
		for {
			var ev sdl.Event
			if !sdl.PollEvent(&ev) {
				break
			}
			switch ev.Type {
			case sdl.EVENT_QUIT:
				return
			case sdl.EVENT_WINDOW_RESIZED, sdl.EVENT_WINDOW_PIXEL_SIZE_CHANGED:
				presenter.layout = windowLayout(window, cfg)
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := ev.MouseButtonEvent()
				pointer(me.X, me.Y, me.Timestamp)
			case sdl.EVENT_FINGER_DOWN:
				fe := ev.TouchFingerEvent()
				x, y := presenter.layout.FingerPoint(fe.X, fe.Y)
				pointer(x, y, fe.Timestamp)
			case sdl.EVENT_KEY_DOWN:
				ke := ev.KeyboardEvent()
				if ke.Repeat {
					continue
				}
				switch ke.Key {
				case sdl.K_ESCAPE:
					if session.Trial().State == StateIdle {
						return
					}
					session.Dispatch(Abort())
				case sdl.K_V:
					session.Dispatch(Select(ModeVisual))
				case sdl.K_A:
					session.Dispatch(Select(ModeAudio))
				case sdl.K_SPACE:
					session.Dispatch(stamp(Respond(), ke.Timestamp))
				case sdl.K_R:
					session.Dispatch(Retry())
				case sdl.K_B:
					session.Dispatch(Back())
				}
			}
		}

		session.Poll()
		presenter.Draw()

		if !cfg.VSync {
			sdl.Delay(1)
		}
	}
}
