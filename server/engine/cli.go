package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/server/registry"
	"github.com/kmelnikov/scrabbled/server/runner"
)

type (
	// CLIConfig contains the fields needed to create an operator cli.
	CLIConfig struct {
		// Log is used to print command results.
		Log *log.Logger
	}

	// Disconnector force-closes a live connection.
	Disconnector interface {
		Disconnect(k registry.Key)
	}

	// CLI reads operator commands from a stream and runs them against the
	// engine.
	CLI struct {
		CLIConfig
		runner       runner.Runner
		engine       *Engine
		disconnector Disconnector
	}
)

// NewCLI creates a cli for the engine.
func (cfg CLIConfig) NewCLI(e *Engine, d Disconnector) (*CLI, error) {
	switch {
	case cfg.Log == nil:
		return nil, fmt.Errorf("creating cli: log required")
	case e == nil:
		return nil, fmt.Errorf("creating cli: engine required")
	case d == nil:
		return nil, fmt.Errorf("creating cli: disconnector required")
	}
	cli := CLI{
		CLIConfig:    cfg,
		engine:       e,
		disconnector: d,
	}
	return &cli, nil
}

// Run executes commands from the reader until it is drained, the context is
// cancelled, or the quit command is read.  BLOCKING
func (cli *CLI) Run(ctx context.Context, in io.Reader) {
	if err := cli.runner.Begin(); err != nil {
		cli.Log.Printf("running cli: %v", err)
		return
	}
	defer cli.runner.Finish()
	cli.Log.Print("commands: q | new | start <game> <word> | load <game> | disconnect <game> <player>")
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "q" {
			return
		}
		if err := cli.runCommand(ctx, fields); err != nil {
			cli.Log.Printf("%v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		cli.Log.Printf("reading commands: %v", err)
	}
}

func (cli *CLI) runCommand(ctx context.Context, fields []string) error {
	switch fields[0] {
	case "new":
		id, err := cli.engine.NewGame(ctx)
		if err != nil {
			return err
		}
		cli.Log.Printf("new game id: %v", id)
	case "start":
		if len(fields) != 3 {
			return fmt.Errorf("usage: start <game> <word>")
		}
		id, err := parseGameID(fields[1])
		if err != nil {
			return err
		}
		if err := cli.engine.StartGame(ctx, id, fields[2]); err != nil {
			return err
		}
	case "load":
		if len(fields) != 2 {
			return fmt.Errorf("usage: load <game>")
		}
		id, err := parseGameID(fields[1])
		if err != nil {
			return err
		}
		if err := cli.engine.LoadGame(ctx, id); err != nil {
			return err
		}
		cli.Log.Printf("loaded game %v", id)
	case "disconnect":
		if len(fields) != 3 {
			return fmt.Errorf("usage: disconnect <game> <player>")
		}
		id, err := parseGameID(fields[1])
		if err != nil {
			return err
		}
		cli.disconnector.Disconnect(registry.Key{Username: fields[2], GameID: id})
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}

func parseGameID(s string) (game.ID, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid game id %q", s)
	}
	return game.ID(id), nil
}
