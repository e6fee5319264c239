package config

import (
	"time"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	DefaultThrottle = 1000 * time.Millisecond
	DefaultBind     = ":3000"
)

// Config holds the settings of the ratedemo program. Durations are written
// as Go duration strings in the config file, such as "500ms" or "1s".
type Config struct {
	// Debounce is the quiet period before a text change triggers a search.
	Debounce time.Duration `koanf:"debounce"`
	// Throttle is the minimum interval between pointer tracking calls.
	Throttle time.Duration `koanf:"throttle"`
	// Bind is the listen address of the serve command.
	Bind     string        `koanf:"bind"`
	Watch    []string      `koanf:"watch"`
	Ignore   []string      `koanf:"ignore"`
	LogFile  string        `koanf:"log_file"`
	Debug    bool          `koanf:"debug"`
}

// Default returns a Config with a 500ms search debounce and a 1s pointer
// throttle.
func Default() Config {
	return Config{
		Debounce: DefaultDebounce,
		Throttle: DefaultThrottle,
		Bind:     DefaultBind,
		Watch:    []string{"."},
		Ignore:   []string{".git", "node_modules"},
	}
}
