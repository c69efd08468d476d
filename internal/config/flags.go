package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMuted      = flag.Bool("muted", false, "Disable sound cues")
	flagSeed       = flag.Uint64("seed", 0, "Random seed (0 = time-based)")
	flagWatch      = flag.Bool("watch", false, "Reload state table and sprites when their files change")

	flagWriteConfig = flag.String("write-config", "", `Write the resolved config to this path ("default" = config dir) and exit`)
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagMuted {
		cfg.Audio.Muted = true
	}
	if *flagSeed != 0 {
		cfg.Pet.Seed = *flagSeed
	}
	if *flagWatch {
		cfg.Pet.Watch = true
	}
}
