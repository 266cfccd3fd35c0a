package main

import (
	"net/http"

	"github.com/michalkomar/exo/internal/metrics"
	"github.com/michalkomar/exo/internal/peerhealth"
)

func setupRouter(tracker *peerhealth.Tracker, collector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", collector.StatusHandler(tracker))
	mux.Handle("/metrics", collector.PromHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}
