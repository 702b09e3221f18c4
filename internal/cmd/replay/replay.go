// Package replay applies a recorded operation log against auction storage.
//
// Replay exists to check executor determinism offline: feeding the same
// log to a fresh store must reproduce the ledger state, record IDs
// included. Rejected operations are normal replay output, not failures;
// only I/O problems exit non-zero.
package replay

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	entrypoint "github.com/louisbranch/gavel/internal/platform/cmd"
	"github.com/louisbranch/gavel/internal/services/auction/domain"
	"github.com/louisbranch/gavel/internal/services/auction/oplog"
	"github.com/louisbranch/gavel/internal/services/auction/service"
	"github.com/louisbranch/gavel/internal/services/auction/storage"
	"github.com/louisbranch/gavel/internal/services/auction/storage/memory"
	auctionsqlite "github.com/louisbranch/gavel/internal/services/auction/storage/sqlite"
)

// Config holds replay command configuration.
type Config struct {
	OpsPath    string
	Backend    string
	DBPath     string `env:"GAVEL_AUCTION_DB_PATH"`
	Settlement string `env:"GAVEL_AUCTION_OPEN_ENDED_SETTLEMENT"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.OpsPath, "ops", "", "Path to the JSONL operation log")
	fs.StringVar(&cfg.Backend, "store", "memory", "Storage backend: memory or sqlite")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run replays the operation log and prints a per-operation summary.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceReplay, func(ctx context.Context) error {
		return run(ctx, cfg, os.Stdout)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	if strings.TrimSpace(cfg.OpsPath) == "" {
		return fmt.Errorf("operation log path is required")
	}

	policy, err := domain.ParseOpenEndedSettlement(cfg.Settlement)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	file, err := os.Open(cfg.OpsPath)
	if err != nil {
		return fmt.Errorf("open operation log: %w", err)
	}
	defer file.Close()

	applier := oplog.NewApplier(service.New(store, service.WithOpenEndedSettlement(policy)))

	applied, rejected := 0, 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		payload := strings.TrimSpace(scanner.Text())
		if payload == "" {
			continue
		}

		op, err := oplog.Decode([]byte(payload))
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		result := applier.Apply(ctx, op)
		if result.Err != nil {
			rejected++
			fmt.Fprintf(out, "%d\t%s\trejected\t%v\n", line, op.Kind, result.Err)
			continue
		}
		applied++
		fmt.Fprintf(out, "%d\t%s\tapplied\t%s\n", line, op.Kind, result.Record.ID)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read operation log: %w", err)
	}

	fmt.Fprintf(out, "replayed %d operations: %d applied, %d rejected\n", applied+rejected, applied, rejected)
	return nil
}

func openStore(cfg Config) (storage.AuctionStore, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return memory.New(), func() {}, nil
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return nil, nil, fmt.Errorf("sqlite backend requires GAVEL_AUCTION_DB_PATH")
		}
		store, err := auctionsqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open auction sqlite store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
