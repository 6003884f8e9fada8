package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/kmelnikov/scrabbled/game"
	"github.com/kmelnikov/scrabbled/server"
	"github.com/kmelnikov/scrabbled/server/engine"
	"github.com/kmelnikov/scrabbled/server/registry"
	"github.com/kmelnikov/scrabbled/server/socket"
	"github.com/kmelnikov/scrabbled/store"
	"github.com/kmelnikov/scrabbled/store/file"
	"github.com/kmelnikov/scrabbled/store/firestore"
	"github.com/kmelnikov/scrabbled/store/mongo"
	"github.com/kmelnikov/scrabbled/store/postgres"
)

const (
	pingPeriod  = 1 * time.Second
	readWait    = 2 * time.Second
	writeWait   = 5 * time.Second
	stopDur     = 5 * time.Second
	queryPeriod = 10 * time.Second
)

// createEventStore creates the event store backend named by the store flag.
func createEventStore(ctx context.Context, m mainFlags) (store.Events, error) {
	storeCfg := store.Config{
		QueryPeriod: queryPeriod,
	}
	switch m.storeType {
	case "file":
		cfg := file.Config{
			Dir: m.eventsDir,
		}
		return cfg.NewEventStore()
	case "postgres":
		if len(m.databaseURL) == 0 {
			return nil, fmt.Errorf("missing data-source uri")
		}
		es, err := postgres.NewEventStore(ctx, storeCfg, m.databaseURL)
		if err != nil {
			return nil, err
		}
		if err := es.Setup(ctx); err != nil {
			return nil, fmt.Errorf("setting up event store: %w", err)
		}
		return es, nil
	case "mongo":
		if len(m.mongoURL) == 0 {
			return nil, fmt.Errorf("missing mongo-url uri")
		}
		return mongo.NewEventStore(ctx, storeCfg, m.mongoURL)
	case "firestore":
		if len(m.firestoreProject) == 0 {
			return nil, fmt.Errorf("missing firestore-project id")
		}
		return firestore.NewEventStore(ctx, storeCfg, m.firestoreProject)
	}
	return nil, fmt.Errorf("unknown store type %q", m.storeType)
}

// createEngine creates the engine which owns the games in the event store.
func createEngine(m mainFlags, log *log.Logger, events store.Events) (*engine.Engine, error) {
	timeFunc := func() int64 {
		return time.Now().UTC().Unix()
	}
	shuffleFunc := func(letters []game.Letter) {
		rand.Shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
	}
	cfg := engine.Config{
		Debug:       m.debug,
		Log:         log,
		Lang:        m.lang,
		TimeFunc:    timeFunc,
		ShuffleFunc: shuffleFunc,
	}
	return cfg.NewEngine(events)
}

// createRegistry creates the connection registry which feeds the engine.
func createRegistry(m mainFlags, log *log.Logger, e *engine.Engine) (*registry.Registry, error) {
	cfg := registry.Config{
		Debug:      m.debug,
		Log:        log,
		PingPeriod: pingPeriod,
	}
	return cfg.NewRegistry(e)
}

// createServer creates the http server which upgrades websocket requests
// into registry connections.
func createServer(m mainFlags, log *log.Logger, r *registry.Registry) (*server.Server, error) {
	upgraderCfg := socket.GorillaConfig{
		ReadWait:  readWait,
		WriteWait: writeWait,
	}
	upgrader, err := upgraderCfg.NewUpgrader()
	if err != nil {
		return nil, fmt.Errorf("creating websocket upgrader: %w", err)
	}
	cfg := server.Config{
		Host:    m.host,
		Port:    m.port,
		StopDur: stopDur,
	}
	return cfg.NewServer(log, upgrader, r)
}
