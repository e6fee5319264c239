package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// durationKeys are decoded with time.ParseDuration. A bare number would
// otherwise be read as nanoseconds.
var durationKeys = []string{"debounce", "throttle"}

// Load returns the default configuration overlaid with the YAML file at
// path. An empty path returns the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}

	for _, key := range durationKeys {
		if !k.Exists(key) {
			continue
		}
		if _, ok := k.Get(key).(string); !ok {
			return cfg, errors.Errorf(
				"failed to parse config %s: %s must be a duration string "+
					"such as \"500ms\", got %v", path, key, k.Get(key),
			)
		}
	}

	// Lists are decoded into nil slices, as decoding into a default slice
	// would leave its trailing elements behind.
	def := cfg
	cfg.Watch, cfg.Ignore = nil, nil
	if err := k.Unmarshal("", &cfg); err != nil {
		return def, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if cfg.Watch == nil {
		cfg.Watch = def.Watch
	}
	if cfg.Ignore == nil {
		cfg.Ignore = def.Ignore
	}

	return cfg, nil
}
