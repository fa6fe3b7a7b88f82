package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

func GetDefaultFontPath() string {
	// Check local fonts directory
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".ttf" || ext == ".ttc" {
					return filepath.Join("fonts", entry.Name())
				}
			}
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func openFont(path string, size int) (*ttf.Font, error) {
	if path == "" {
		path = GetDefaultFontPath()
	}
	if path == "" {
		return nil, fmt.Errorf("no font found")
	}
	font, err := ttf.OpenFont(path, float32(size))
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	return font, nil
}

type TextTexture struct {
	Texture *sdl.Texture
	W, H    float32
}

// TextCache keeps one texture per rendered string and colour. The set of
// strings is small: the fixed messages plus one "<N> ms" per result.
type TextCache struct {
	renderer *sdl.Renderer
	font     *ttf.Font
	entries  map[string]*TextTexture
}

func NewTextCache(renderer *sdl.Renderer, font *ttf.Font) *TextCache {
	return &TextCache{
		renderer: renderer,
		font:     font,
		entries:  make(map[string]*TextTexture),
	}
}

// Get returns nil when there is no font or rendering fails.
func (c *TextCache) Get(text string, color sdl.Color) *TextTexture {
	if c.font == nil || text == "" {
		return nil
	}
	key := fmt.Sprintf("%s:%s", FormatColor(color), text)
	if entry, ok := c.entries[key]; ok {
		return entry
	}

	surf, err := c.font.RenderTextBlended(text, color)
	if err != nil || surf == nil {
		return nil
	}
	defer surf.Destroy()

	tex, err := c.renderer.CreateTextureFromSurface(surf)
	if err != nil {
		return nil
	}
	entry := &TextTexture{Texture: tex, W: float32(surf.W), H: float32(surf.H)}
	c.entries[key] = entry
	return entry
}

func (c *TextCache) Destroy() {
	for _, entry := range c.entries {
		if entry.Texture != nil {
			entry.Texture.Destroy()
		}
	}
	c.entries = map[string]*TextTexture{}
}
