package main

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"reactime/engine"
)

func init() {
	runtime.LockOSThread()
}

// Desktop launcher: starts from the settings of the previous run and lets
// the user change them in the setup window before the test opens.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	cfg := engine.DefaultConfig()
	if err := cfg.LoadCache(engine.CacheFile); err != nil {
		log.Warn().Err(err).Msg("previous settings not loaded")
	}
	if err := cfg.LoadEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("environment not loaded")
	}
	if err := cfg.ApplyLogLevel(); err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
	}

	// Default splash if present
	if cfg.SplashFile == "" {
		splash := filepath.Join("assets", "instructions.png")
		if _, err := os.Stat(splash); err == nil {
			cfg.SplashFile = splash
		}
	}

	if !engine.RunGuiSetup(cfg) {
		return
	}
	if err := engine.Run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
