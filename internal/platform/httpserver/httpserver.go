package httpserver

import (
	"net/http"
	"time"
)

// Timeouts bounds the server's connection handling.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
}

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler, timeouts Timeouts) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeouts.Read,
		WriteTimeout:      timeouts.Write,
		IdleTimeout:       2 * time.Minute,
	}
}
