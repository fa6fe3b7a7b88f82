package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"reactime/engine"
)

func init() {
	// SDL3 requires the main thread for some operations.
	runtime.LockOSThread()
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg := engine.DefaultConfig()

	configFile := flag.String("config", "", "YAML config file")
	envFile := flag.String("env", ".env", "Environment file with REACTIME_* overrides")
	last := flag.Bool("last", false, "Start from the settings of the previous run")
	summary := flag.String("summary", "", "Print the summary of a results CSV and exit")

	outputFile := flag.String("output", cfg.OutputFile, "Output CSV file")
	splash := flag.String("splash", "", "Instruction splash image shown before the menu")
	fontFile := flag.String("font", "", "TTF font file")
	fontSize := flag.Int("font-size", cfg.FontSize, "Font size")
	dlpDevice := flag.String("dlp", "", "DLP-IO8-G device")
	screenW := flag.Int("width", cfg.ScreenWidth, "Screen width")
	screenH := flag.Int("height", cfg.ScreenHeight, "Screen height")
	fullscreen := flag.Bool("fullscreen", false, "Enable fullscreen")
	noVSync := flag.Bool("no-vsync", false, "Disable VSync")
	noFixation := flag.Bool("no-fixation", false, "Disable fixation cross while waiting")
	minDelay := flag.Duration("min-delay", cfg.MinDelay, "Shortest wait before the stimulus")
	maxDelay := flag.Duration("max-delay", cfg.MaxDelay, "Upper bound (exclusive) of the wait")
	toneFreq := flag.Float64("tone-freq", cfg.ToneFreqHz, "Beep frequency in Hz")
	toneVolume := flag.Float64("tone-volume", cfg.ToneVolume, "Beep peak volume (0-1)")
	seed := flag.Int64("seed", 0, "Random seed for delays (0: time based)")
	bgColorStr := flag.String("bg-color", "0,0,0,255", "Background color (R,G,B,A)")
	textColorStr := flag.String("text-color", "255,255,255,255", "Text color (R,G,B,A)")
	flashColorStr := flag.String("flash-color", "255,255,255,255", "Flash color (R,G,B,A)")
	earlyColorStr := flag.String("early-color", "200,40,40,255", "Too-early background color (R,G,B,A)")
	buttonColorStr := flag.String("button-color", "60,60,60,255", "Button fill color (R,G,B,A)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	flag.Parse()

	if *summary != "" {
		results, err := engine.ReadResults(*summary)
		if err != nil {
			log.Fatal().Err(err).Str("file", *summary).Msg("failed to read results")
		}
		printSummary(os.Stdout, results.Summarize())
		return
	}

	if *last {
		if err := cfg.LoadCache(engine.CacheFile); err != nil {
			log.Warn().Err(err).Msg("previous settings not loaded")
		}
	}
	if *configFile != "" {
		if err := cfg.LoadFile(*configFile); err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
	}
	if err := cfg.LoadEnv(*envFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load environment")
	}

	// Flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.OutputFile = *outputFile
		case "splash":
			cfg.SplashFile = *splash
		case "font":
			cfg.FontFile = *fontFile
		case "font-size":
			cfg.FontSize = *fontSize
		case "dlp":
			cfg.DLPDevice = *dlpDevice
		case "width":
			cfg.ScreenWidth = *screenW
		case "height":
			cfg.ScreenHeight = *screenH
		case "fullscreen":
			cfg.Fullscreen = *fullscreen
		case "no-vsync":
			cfg.VSync = !*noVSync
		case "no-fixation":
			cfg.UseFixation = !*noFixation
		case "min-delay":
			cfg.MinDelay = *minDelay
		case "max-delay":
			cfg.MaxDelay = *maxDelay
		case "tone-freq":
			cfg.ToneFreqHz = *toneFreq
		case "tone-volume":
			cfg.ToneVolume = *toneVolume
		case "seed":
			cfg.Seed = *seed
		case "bg-color":
			cfg.BGColor = colorFlag(f.Name, *bgColorStr)
		case "text-color":
			cfg.TextColor = colorFlag(f.Name, *textColorStr)
		case "flash-color":
			cfg.FlashColor = colorFlag(f.Name, *flashColorStr)
		case "early-color":
			cfg.EarlyColor = colorFlag(f.Name, *earlyColorStr)
		case "button-color":
			cfg.ButtonColor = colorFlag(f.Name, *buttonColorStr)
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.ApplyLogLevel(); err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := cfg.SaveCache(engine.CacheFile); err != nil {
		log.Warn().Err(err).Msg("settings not cached")
	}

	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	if err := engine.Run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func colorFlag(name, value string) sdl.Color {
	c, err := engine.ParseColor(value)
	if err != nil {
		log.Fatal().Err(err).Str("flag", name).Msg("invalid color")
	}
	return c
}

func printSummary(w io.Writer, s engine.Summary) {
	fmt.Fprintf(w, "Trials: %d\n", s.Trials)

	modes := make([]engine.Mode, 0, len(s.ByMode))
	for m := range s.ByMode {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })

	for _, m := range modes {
		ms := s.ByMode[m]
		fmt.Fprintf(w, "\n%s: %d trials, %d too early\n", m, ms.Trials, ms.TooEarly)
		if ms.Measured == 0 {
			continue
		}
		fmt.Fprintf(w, "  mean %.1f ms, sd %.1f ms\n", ms.MeanMS, ms.SDMS)
		fmt.Fprintf(w, "  fastest %s, slowest %s\n",
			time.Duration(ms.FastestMS)*time.Millisecond,
			time.Duration(ms.SlowestMS)*time.Millisecond)
	}
}
