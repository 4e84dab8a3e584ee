package main

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

func run() error {
	server, cleanup, err := live(context.Background())
	if err != nil {
		log.Fatalf("failed to configure server: %v", err)
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:              server.Addr,
		Handler:           server.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("listening on %s", server.Addr)
	return httpServer.ListenAndServe()
}

func main() {
	if err := run(); err != nil {
		log.Fatal("ListenAndServe:", err)
	}
}
