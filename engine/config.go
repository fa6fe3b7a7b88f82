package engine

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	OutputFile   string        `yaml:"output_file"`
	SplashFile   string        `yaml:"splash_file"`
	FontFile     string        `yaml:"font_file"`
	DLPDevice    string        `yaml:"dlp_device"`
	FontSize     int           `yaml:"font_size"`
	ScreenWidth  int           `yaml:"screen_w"`
	ScreenHeight int           `yaml:"screen_h"`
	Fullscreen   bool          `yaml:"fullscreen"`
	VSync        bool          `yaml:"vsync"`
	UseFixation  bool          `yaml:"use_fixation"`
	MinDelay     time.Duration `yaml:"min_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	ToneFreqHz   float64       `yaml:"tone_freq_hz"`
	ToneVolume   float64       `yaml:"tone_volume"`
	Seed         int64         `yaml:"seed"`
	LogLevel     string        `yaml:"log_level"`
	BGColor      sdl.Color     `yaml:"-"`
	TextColor    sdl.Color     `yaml:"-"`
	FlashColor   sdl.Color     `yaml:"-"`
	EarlyColor   sdl.Color     `yaml:"-"`
	ButtonColor  sdl.Color     `yaml:"-"`
}

// colorFields is how colours travel through YAML: "R,G,B[,A]" strings.
type colorFields struct {
	BG     string `yaml:"bg_color,omitempty"`
	Text   string `yaml:"text_color,omitempty"`
	Flash  string `yaml:"flash_color,omitempty"`
	Early  string `yaml:"early_color,omitempty"`
	Button string `yaml:"button_color,omitempty"`
}

// ParseColor reads "R,G,B" or "R,G,B,A" with components in 0-255. Alpha
// defaults to opaque.
func ParseColor(s string) (sdl.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return sdl.Color{}, fmt.Errorf("color %q: want R,G,B or R,G,B,A", s)
	}
	v := [4]uint8{3: 255}
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return sdl.Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		v[i] = uint8(n)
	}
	return sdl.Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

func FormatColor(c sdl.Color) string {
	return fmt.Sprintf("%d,%d,%d,%d", c.R, c.G, c.B, c.A)
}

func DefaultConfig() *Config {
	return &Config{
		OutputFile:   "results.csv",
		FontSize:     48,
		ScreenWidth:  1280,
		ScreenHeight: 720,
		VSync:        true,
		UseFixation:  true,
		MinDelay:     DefaultMinDelay,
		MaxDelay:     DefaultMaxDelay,
		ToneFreqHz:   1000,
		ToneVolume:   0.5,
		LogLevel:     "info",
		BGColor:      sdl.Color{R: 0, G: 0, B: 0, A: 255},
		TextColor:    sdl.Color{R: 255, G: 255, B: 255, A: 255},
		FlashColor:   sdl.Color{R: 255, G: 255, B: 255, A: 255},
		EarlyColor:   sdl.Color{R: 200, G: 40, B: 40, A: 255},
		ButtonColor:  sdl.Color{R: 60, G: 60, B: 60, A: 255},
	}
}

func (cfg *Config) Validate() error {
	if cfg.MinDelay <= 0 || cfg.MaxDelay <= cfg.MinDelay {
		return fmt.Errorf("invalid delay range [%s, %s)", cfg.MinDelay, cfg.MaxDelay)
	}
	if cfg.ScreenWidth <= 0 || cfg.ScreenHeight <= 0 {
		return fmt.Errorf("invalid screen size %dx%d", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.ToneVolume < 0 || cfg.ToneVolume > 1 {
		return fmt.Errorf("tone volume %g out of [0,1]", cfg.ToneVolume)
	}
	return nil
}

func (cfg *Config) Delays() DelayRange {
	return DelayRange{Min: cfg.MinDelay, Max: cfg.MaxDelay}
}

func (cfg *Config) Tone() ToneSpec {
	ts := DefaultToneSpec()
	ts.FreqHz = cfg.ToneFreqHz
	ts.Peak = cfg.ToneVolume
	if ts.Floor > ts.Peak {
		ts.Floor = ts.Peak
	}
	return ts
}

// MarshalYAML writes colours as "R,G,B,A" strings next to the plain fields.
func (cfg *Config) MarshalYAML() (interface{}, error) {
	type plain Config
	return struct {
		plain       `yaml:",inline"`
		colorFields `yaml:",inline"`
	}{
		plain: plain(*cfg),
		colorFields: colorFields{
			BG:     FormatColor(cfg.BGColor),
			Text:   FormatColor(cfg.TextColor),
			Flash:  FormatColor(cfg.FlashColor),
			Early:  FormatColor(cfg.EarlyColor),
			Button: FormatColor(cfg.ButtonColor),
		},
	}, nil
}

func (cfg *Config) UnmarshalYAML(node *yaml.Node) error {
	type plain Config
	if err := node.Decode((*plain)(cfg)); err != nil {
		return err
	}
	var colors colorFields
	if err := node.Decode(&colors); err != nil {
		return err
	}
	return cfg.applyColors(colors)
}

// applyColors sets the non-empty colours of c. Nothing changes if any of
// them is malformed.
func (cfg *Config) applyColors(c colorFields) error {
	fields := []struct {
		dst *sdl.Color
		s   string
	}{
		{&cfg.BGColor, c.BG},
		{&cfg.TextColor, c.Text},
		{&cfg.FlashColor, c.Flash},
		{&cfg.EarlyColor, c.Early},
		{&cfg.ButtonColor, c.Button},
	}
	parsed := make([]sdl.Color, len(fields))
	for i, f := range fields {
		if f.s == "" {
			parsed[i] = *f.dst
			continue
		}
		col, err := ParseColor(f.s)
		if err != nil {
			return err
		}
		parsed[i] = col
	}
	for i, f := range fields {
		*f.dst = parsed[i]
	}
	return nil
}

// LoadFile overlays the YAML file at path on cfg.
func (cfg *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

const EnvPrefix = "REACTIME_"

// LoadEnv reads envFile (if present) into the environment, then overlays
// REACTIME_* variables on cfg. Values already in the environment win over
// the file.
func (cfg *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg.OutputFile = getEnv("OUTPUT", cfg.OutputFile)
	cfg.SplashFile = getEnv("SPLASH", cfg.SplashFile)
	cfg.FontFile = getEnv("FONT", cfg.FontFile)
	cfg.DLPDevice = getEnv("DLP", cfg.DLPDevice)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.FontSize = getEnvAsInt("FONT_SIZE", cfg.FontSize)
	cfg.ScreenWidth = getEnvAsInt("WIDTH", cfg.ScreenWidth)
	cfg.ScreenHeight = getEnvAsInt("HEIGHT", cfg.ScreenHeight)
	cfg.Fullscreen = getEnvAsBool("FULLSCREEN", cfg.Fullscreen)
	cfg.VSync = getEnvAsBool("VSYNC", cfg.VSync)
	cfg.UseFixation = getEnvAsBool("FIXATION", cfg.UseFixation)
	cfg.MinDelay = getEnvAsDuration("MIN_DELAY", cfg.MinDelay)
	cfg.MaxDelay = getEnvAsDuration("MAX_DELAY", cfg.MaxDelay)
	cfg.ToneFreqHz = getEnvAsFloat("TONE_FREQ", cfg.ToneFreqHz)
	cfg.ToneVolume = getEnvAsFloat("TONE_VOLUME", cfg.ToneVolume)
	cfg.Seed = int64(getEnvAsInt("SEED", int(cfg.Seed)))
	if err := cfg.applyColors(colorFields{
		BG:     getEnv("BG_COLOR", ""),
		Text:   getEnv("TEXT_COLOR", ""),
		Flash:  getEnv("FLASH_COLOR", ""),
		Early:  getEnv("EARLY_COLOR", ""),
		Button: getEnv("BUTTON_COLOR", ""),
	}); err != nil {
		return fmt.Errorf("environment colors: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := getEnv(key, ""); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("2.5s") or bare milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}

// ApplyLogLevel sets the global zerolog level from cfg.LogLevel. An empty
// or unknown name leaves the level unchanged.
func (cfg *Config) ApplyLogLevel() error {
	if cfg.LogLevel == "" {
		return nil
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

const CacheFile = ".reactime_cache.yaml"

// SaveCache remembers the settings of this run for the next start.
func (cfg *Config) SaveCache(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadCache restores the settings of the previous run. A missing cache is
// not an error.
func (cfg *Config) LoadCache(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return cfg.LoadFile(path)
}
