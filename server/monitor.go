package server

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"runtime/pprof"
)

// handleMonitor writes runtime information to the response.
func (s *Server) handleMonitor(w http.ResponseWriter, r *http.Request) {
	m := new(runtime.MemStats)
	runtime.ReadMemStats(m)
	p := pprof.Lookup("goroutine")
	writeMemoryStats(w, m)
	fmt.Fprintln(w)
	writeGoroutineExpectations(w)
	fmt.Fprintln(w)
	writeGoroutineStackTraces(w, p)
}

// writeMemoryStats writes the memory runtime statistics of the server.
func writeMemoryStats(w io.Writer, m *runtime.MemStats) {
	fmt.Fprintln(w, "--- Memory Stats ---")
	fmt.Fprintln(w, "Alloc (bytes on heap)", m.Alloc)
	fmt.Fprintln(w, "TotalAlloc (total heap size)", m.TotalAlloc)
	fmt.Fprintln(w, "Sys (bytes used to run server)", m.Sys)
	fmt.Fprintln(w, "Live object count (Mallocs - Frees)", m.Mallocs-m.Frees)
}

// writeGoroutineExpectations writes a message about the expected goroutines.
func writeGoroutineExpectations(w io.Writer) {
	fmt.Fprintln(w, "--- Goroutine Expectations ---")
	fmt.Fprintln(w, "Five (5) goroutines are expected on an idling server.")
	fmt.Fprintln(w, "* a goroutine to run the main procedure")
	fmt.Fprintln(w, "* a goroutine to run the http server")
	fmt.Fprintln(w, "* a goroutine to run the engine")
	fmt.Fprintln(w, "* a goroutine to read operator commands")
	fmt.Fprintln(w, "* a goroutine to write profiling information about goroutines")
	fmt.Fprintln(w, "Each connected player should have two (2) goroutines to read and write websocket messages.")
}

// writeGoroutineStackTraces writes the goroutine runtime profile's stack traces.
func writeGoroutineStackTraces(w io.Writer, p *pprof.Profile) {
	fmt.Fprintln(w, "--- Goroutine Stack Traces ---")
	p.WriteTo(w, 1)
}
