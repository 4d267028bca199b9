package httpserver

import (
	"net/http"
	"time"
)

// New builds the shell's HTTP server. Every request is a small JSON page
// descriptor or a profile mutation, so the read and write timeouts are kept
// tight; idle keep-alive is longer because a browsing session issues many
// short requests over one connection.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
