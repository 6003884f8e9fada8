package main

import (
	"context"
	"io"
	"log"
	"testing"
)

func TestCreateEventStore(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		mainFlags
		wantOk bool
	}{
		{mainFlags: mainFlags{storeType: "bolt"}},
		{mainFlags: mainFlags{storeType: "postgres"}},  // no data source
		{mainFlags: mainFlags{storeType: "mongo"}},     // no url
		{mainFlags: mainFlags{storeType: "firestore"}}, // no project
		{mainFlags: mainFlags{storeType: "file"}, wantOk: true},
	}
	for i, test := range tests {
		if test.wantOk {
			test.eventsDir = t.TempDir()
		}
		es, err := createEventStore(ctx, test.mainFlags)
		switch {
		case err != nil:
			if test.wantOk {
				t.Errorf("Test %v: unwanted error: %v", i, err)
			}
		case !test.wantOk:
			t.Errorf("Test %v: wanted error", i)
		case es == nil:
			t.Errorf("Test %v: wanted event store", i)
		}
	}
}

func TestCreateServerParts(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	m := mainFlags{
		port:      defaultPort,
		storeType: "file",
		eventsDir: t.TempDir(),
		lang:      defaultLang,
	}
	events, err := createEventStore(context.Background(), m)
	if err != nil {
		t.Fatalf("unwanted error creating event store: %v", err)
	}
	e, err := createEngine(m, logger, events)
	if err != nil {
		t.Fatalf("unwanted error creating engine: %v", err)
	}
	r, err := createRegistry(m, logger, e)
	if err != nil {
		t.Fatalf("unwanted error creating registry: %v", err)
	}
	s, err := createServer(m, logger, r)
	switch {
	case err != nil:
		t.Fatalf("unwanted error creating server: %v", err)
	case s == nil:
		t.Fatal("wanted server")
	}
}
