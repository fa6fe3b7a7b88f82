package engine

import (
	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/rs/zerolog/log"
)

// DisplaySplash shows an instruction image until a key or pointer press.
// It returns false if the user closed the window.
func DisplaySplash(renderer *sdl.Renderer, filePath string, screenW, screenH int, bgColor sdl.Color) bool {
	if filePath == "" {
		return true
	}
	tex, err := img.LoadTexture(renderer, filePath)
	if err != nil {
		log.Warn().Err(err).Str("file", filePath).Msg("splash image not loaded")
		return true
	}
	defer tex.Destroy()

	tw, th, _ := tex.Size()
	scale := float32(1)
	if tw > float32(screenW) || th > float32(screenH) {
		scale = min(float32(screenW)/tw, float32(screenH)/th)
	}
	dst := sdl.FRect{
		X: (float32(screenW) - tw*scale) / 2.0,
		Y: (float32(screenH) - th*scale) / 2.0,
		W: tw * scale,
		H: th * scale,
	}

	renderer.SetDrawColor(bgColor.R, bgColor.G, bgColor.B, bgColor.A)
	renderer.Clear()
	renderer.RenderTexture(tex, nil, &dst)
	renderer.Present()

	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			break
		}
		switch event.Type {
		case sdl.EVENT_QUIT:
			return false
		case sdl.EVENT_KEY_DOWN, sdl.EVENT_MOUSE_BUTTON_DOWN, sdl.EVENT_FINGER_DOWN:
			return true
		}
	}
	return true
}
