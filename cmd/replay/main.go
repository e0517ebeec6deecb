// Command replay rebuilds a match from its stored log and prints the result.
// It exits non-zero when the log does not replay or the checksum differs from
// the expected one.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/arrakis/arrakis-server-go/internal/game"
	"github.com/arrakis/arrakis-server-go/internal/storage"
)

var (
	driver   = flag.String("driver", storage.DriverFile, "storage driver: file, sqlite or postgres")
	source   = flag.String("source", "data/matches", "storage directory, database path or connection string")
	matchID  = flag.String("match", "", "match id to load from storage")
	logFile  = flag.String("log", "", "read a JSON match log from this file instead of storage (- for stdin)")
	expected = flag.String("expect", "", "fail unless the final checksum equals this value")
	steps    = flag.Bool("steps", false, "print the checksum after every entry")
	verbose  = flag.Bool("v", false, "log replayed commands")
)

func main() {
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	if err := run(context.Background(), os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, logger *zap.Logger) error {
	log, err := loadLog(ctx, logger)
	if err != nil {
		return err
	}

	e, err := game.LoadFrom(log.Config, log.Entries, game.WithLogger(logger))
	if err != nil {
		var replayErr *game.ReplayError
		if errors.As(err, &replayErr) {
			return fmt.Errorf("entry %d (%s) does not apply: %w", replayErr.Index, replayErr.Kind, replayErr.Err)
		}
		return err
	}

	if *steps {
		for n := 1; n <= e.Len(); n++ {
			prefix, err := e.UndoTo(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%4d %-24s %s\n", n-1, log.Entries[n-1].Record.Kind, prefix.Checksum())
		}
	}

	phase, mainPhase := e.CurrentPhase()
	fmt.Fprintf(out, "commands: %d\n", e.Len())
	fmt.Fprintf(out, "turn:     %d\n", e.Game().Turn)
	fmt.Fprintf(out, "phase:    %s / %s\n", mainPhase, phase)
	if e.Ended() {
		fmt.Fprintf(out, "winners:  %v\n", e.Winners())
	} else {
		fmt.Fprintf(out, "awaiting: %v\n", e.Awaited())
	}
	sum := e.Checksum()
	fmt.Fprintf(out, "checksum: %s\n", sum)

	if *expected != "" && *expected != sum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", *expected, sum)
	}
	return nil
}

func loadLog(ctx context.Context, logger *zap.Logger) (game.MatchLog, error) {
	if *logFile != "" {
		var r io.Reader = os.Stdin
		if *logFile != "-" {
			f, err := os.Open(*logFile)
			if err != nil {
				return game.MatchLog{}, err
			}
			defer f.Close()
			r = f
		}
		var log game.MatchLog
		if err := json.NewDecoder(r).Decode(&log); err != nil {
			return game.MatchLog{}, fmt.Errorf("decode %s: %w", *logFile, err)
		}
		return log, nil
	}

	if *matchID == "" {
		return game.MatchLog{}, errors.New("either -match or -log is required")
	}
	store, err := storage.Open(ctx, *driver, *source, logger)
	if err != nil {
		return game.MatchLog{}, err
	}
	defer store.Close()
	return store.LoadMatch(ctx, *matchID)
}
