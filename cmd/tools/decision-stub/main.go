// cmd/tools/decision-stub/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	"loan-intake/internal/common/logger"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	path := flag.String("path", "/api/loan", "loan submission path")
	limit := flag.Int("approve-up-to", 20000, "highest requested amount that is approved")
	level := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.NewStructured(*level, "console", "stderr")

	router := httprouter.New()
	newStubHandler(*limit, log).RegisterRoutes(router, *path)

	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("decision stub listening", map[string]interface{}{
			"address":     *addr,
			"path":        *path,
			"approveUpTo": *limit,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("decision stub failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
