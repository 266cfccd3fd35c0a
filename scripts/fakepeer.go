// Fakepeer is a test HTTP peer whose health can be toggled at runtime,
// used to exercise the circuit breaker end to end.
//
// Usage:
//
//	go run fakepeer.go -port 8081
//
// Endpoints:
//   - /health — 200 while healthy, 500 while failing
//   - /fail   — start failing all health probes
//   - /recover — go back to healthy
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
)

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	startFailing := flag.Bool("failing", false, "start in the failing state")
	flag.Parse()

	var failing atomic.Bool
	failing.Store(*startFailing)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if probeID := r.Header.Get("X-Probe-ID"); probeID != "" {
			log.Printf("probe: id=%s from=%s failing=%v", probeID, r.RemoteAddr, failing.Load())
		}
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("failing"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		failing.Store(true)
		log.Printf("now failing")
		w.Write([]byte("failing\n"))
	})

	mux.HandleFunc("/recover", func(w http.ResponseWriter, r *http.Request) {
		failing.Store(false)
		log.Printf("now healthy")
		w.Write([]byte("healthy\n"))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting fake peer on %s (failing=%v)", addr, failing.Load())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
