// Package auction parses executor flags and launches the auction daemon.
package auction

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/gavel/internal/platform/cmd"
	server "github.com/louisbranch/gavel/internal/services/auction/app"
)

// Config holds auction executor command configuration.
type Config struct {
	Port int `env:"GAVEL_AUCTION_PORT" envDefault:"8091"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The auction executor health port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the auction executor daemon.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAuction, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
