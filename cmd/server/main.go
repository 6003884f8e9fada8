// Package main starts the game server after configuring it from supplied or
// standard arguments.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kmelnikov/scrabbled/server"
	"github.com/kmelnikov/scrabbled/server/engine"
)

// main configures and runs the server.
func main() {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()
	logFlags := log.Ldate | log.Ltime | log.LUTC | log.Lshortfile | log.Lmsgprefix
	log := log.New(os.Stdout, "", logFlags)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env file: %v", err)
	}
	m := newMainFlags(os.Args, os.LookupEnv)
	events, err := createEventStore(ctx, m)
	if err != nil {
		log.Fatalf("setting up event store: %v", err)
	}
	e, err := createEngine(m, log, events)
	if err != nil {
		log.Fatalf("creating engine: %v", err)
	}
	r, err := createRegistry(m, log, e)
	if err != nil {
		log.Fatalf("creating connection registry: %v", err)
	}
	s, err := createServer(m, log, r)
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}
	cliCfg := engine.CLIConfig{
		Log: log,
	}
	cli, err := cliCfg.NewCLI(e, r)
	if err != nil {
		log.Fatalf("creating cli: %v", err)
	}
	go e.Run(ctx, r)
	go func() {
		cli.Run(ctx, os.Stdin) // BLOCKING
		cancelFunc()
	}()
	if err := runServer(ctx, s, log); err != nil {
		log.Fatalf("running server: %v", err)
	}
	log.Println("server run stopped successfully")
}

// runServer runs the server until it is interrupted, terminated, or quit
// from the cli.
func runServer(ctx context.Context, s *server.Server, log *log.Logger) error {
	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	errC := s.Run(ctx)
	select { // BLOCKING
	case err := <-errC:
		switch {
		case err == http.ErrServerClosed:
			log.Printf("server shutdown triggered")
		default:
			log.Printf("server stopped unexpectedly: %v", err)
		}
	case signal := <-done:
		log.Printf("handled signal: %v", signal)
	case <-ctx.Done():
		log.Printf("quit command handled")
	}
	if err := s.Stop(context.Background()); err != nil {
		return fmt.Errorf("stopping server: %v", err)
	}
	return nil
}
