package cli

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds per-command defaults loadable from a TOML file via --config.
// Flags set explicitly on the command line override config values.
//
// Example file:
//
//	[extract]
//	all = true
//
//	[render]
//	format = "png"
//	detailed = true
type Config struct {
	Extract ExtractConfig `toml:"extract"`
	Render  RenderConfig  `toml:"render"`
}

// ExtractConfig configures the extract command.
type ExtractConfig struct {
	// Edge is the central edge id to extract from; -1 means the first root edge.
	Edge int `toml:"edge"`
	// All extracts one topology per DAG edge instead of a single one.
	All bool `toml:"all"`
	// Mask also prints the tree mask edge list in single-edge mode.
	Mask bool `toml:"mask"`
}

// RenderConfig configures the render command.
type RenderConfig struct {
	// Format is one of "dot", "svg", or "png".
	Format string `toml:"format"`
	// Detailed includes node ids and raw bit strings in labels.
	Detailed bool `toml:"detailed"`
	// Edge highlights the tree mask extracted from this central edge; -1 disables.
	Edge int `toml:"edge"`
}

func defaultConfig() Config {
	return Config{
		Extract: ExtractConfig{Edge: -1},
		Render:  RenderConfig{Format: "svg", Edge: -1},
	}
}

// loadConfig reads a TOML config file on top of the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

const configKey ctxKey = 1

func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

func configFromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey).(Config); ok {
		return cfg
	}
	return defaultConfig()
}
