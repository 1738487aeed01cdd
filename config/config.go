// Package config loads the daemon's TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml"
)

// Config is everything nestd reads from its configuration file. All
// fields have working defaults, so a missing file is fine.
type Config struct {
	// Socket is the Wayland socket name to listen on. Empty picks
	// the first free wayland-N name.
	Socket string `toml:"socket,omitempty"`

	// TickRate is how many times per second queued client requests
	// are dispatched, and so also the frame callback rate.
	TickRate int `toml:"tick_rate,omitempty"`

	// Width and Height size both the advertised output and the
	// canvas viewport.
	Width  int `toml:"width,omitempty"`
	Height int `toml:"height,omitempty"`

	// LogLevel is a logrus level name.
	LogLevel string `toml:"log_level,omitempty"`

	// Background is an SVG 1.1 color name for the canvas background.
	Background string `toml:"background,omitempty"`
}

// Default returns the configuration used when no file says otherwise.
func Default() Config {
	return Config{
		TickRate:   60,
		Width:      1280,
		Height:     720,
		LogLevel:   "info",
		Background: "black",
	}
}

// Load reads the configuration at path, or at the default location
// under the XDG config directories if path is empty. Fields the file
// does not set keep their defaults, and with no file at all the
// defaults are returned as is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, err := xdg.SearchConfigFile("nest/config.toml")
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
