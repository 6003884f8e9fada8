package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

const (
	environmentVariableHost             = "HOST"
	environmentVariablePort             = "PORT"
	environmentVariableStore            = "STORE"
	environmentVariableEventsDir        = "EVENTS_DIR"
	environmentVariableDatabaseURL      = "DATABASE_URL"
	environmentVariableMongoURL         = "MONGO_URL"
	environmentVariableFirestoreProject = "FIRESTORE_PROJECT_ID"
	environmentVariableLang             = "LANG_CODE"
	environmentVariableDebug            = "DEBUG_MESSAGES"
)

const (
	defaultPort      = 5678
	defaultStore     = "file"
	defaultEventsDir = "games"
	defaultLang      = "en"
)

// mainFlags are the configuration options which can be easily configured at
// startup for different environments.
type mainFlags struct {
	host             string
	port             int
	storeType        string
	eventsDir        string
	databaseURL      string
	mongoURL         string
	firestoreProject string
	lang             string
	debug            bool
}

// usage prints how to run the server to the flagset's output.
func usage(fs *flag.FlagSet) {
	envVars := []string{
		environmentVariableHost,
		environmentVariablePort,
		environmentVariableStore,
		environmentVariableEventsDir,
		environmentVariableDatabaseURL,
		environmentVariableMongoURL,
		environmentVariableFirestoreProject,
		environmentVariableLang,
		environmentVariableDebug,
	}
	fmt.Fprintf(fs.Output(), "Runs the game server\n")
	fmt.Fprintf(fs.Output(), "Reads environment variables when possible: [%s]\n", strings.Join(envVars, ","))
	fmt.Fprintf(fs.Output(), "Usage of %s:\n", fs.Name())
	fs.PrintDefaults()
}

// newFlagSet creates a flagSet that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(osLookupEnvFunc func(string) (string, bool)) *flag.FlagSet {
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() {
		usage(fs) // [lazy evaluation]
	}
	envValue := func(key, defaultValue string) string {
		if envValue, ok := osLookupEnvFunc(key); ok {
			return envValue
		}
		return defaultValue
	}
	envValueInt := func(key string, defaultValue int) int {
		v1 := envValue(key, "")
		v2, err := strconv.Atoi(v1)
		if err != nil {
			return defaultValue
		}
		return v2
	}
	envPresent := func(key string) bool {
		_, ok := osLookupEnvFunc(key)
		return ok
	}
	fs.StringVar(&m.host, "host", envValue(environmentVariableHost, ""), "The interface the server listens on.  Listens on all interfaces when empty.")
	fs.IntVar(&m.port, "port", envValueInt(environmentVariablePort, defaultPort), "The TCP port for server http requests.")
	fs.StringVar(&m.storeType, "store", envValue(environmentVariableStore, defaultStore), "The event store backend: file, postgres, mongo, or firestore.")
	fs.StringVar(&m.eventsDir, "events-dir", envValue(environmentVariableEventsDir, defaultEventsDir), "The directory game event files are kept in when using the file store.")
	fs.StringVar(&m.databaseURL, "data-source", envValue(environmentVariableDatabaseURL, ""), "The data source to the PostgreSQL database (connection URI).")
	fs.StringVar(&m.mongoURL, "mongo-url", envValue(environmentVariableMongoURL, ""), "The connection URI of the MongoDB deployment.")
	fs.StringVar(&m.firestoreProject, "firestore-project", envValue(environmentVariableFirestoreProject, ""), "The Google Cloud project id of the Firestore database.")
	fs.StringVar(&m.lang, "lang", envValue(environmentVariableLang, defaultLang), "The language code of the letter distribution for new games.")
	fs.BoolVar(&m.debug, "debug", envPresent(environmentVariableDebug), "Logs the requests the engine and registry process.")
	return fs
}

// newMainFlags creates a new, populated mainFlags structure.
// Fields are populated from command line arguments.
// If fields are not specified on the command line, environment variable
// values are used before defaulting to other defaults.
func newMainFlags(osArgs []string, osLookupEnvFunc func(string) (string, bool)) mainFlags {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	var m mainFlags
	fs := m.newFlagSet(osLookupEnvFunc)
	fs.Parse(programArgs)
	return m
}
