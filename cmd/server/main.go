package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/milops/asset-console/backend"
	"github.com/milops/asset-console/internal/config"
	"github.com/milops/asset-console/internal/obs"
	"github.com/milops/asset-console/server"
	"github.com/milops/asset-console/session"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())
	obs.Init()

	backendClient := backend.New(c.GetAPIBaseURL(), backend.WithTimeout(c.GetHTTPTimeout()))
	sessionRepo := session.NewInMemoryRepo()
	go sweepSessions(sessionRepo)

	consoleServer, err := server.New(c, backendClient, sessionRepo)
	if err != nil {
		return fmt.Errorf("server.New %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: obs.Instrument(consoleServer)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// sweepSessions drops expired console sessions every few minutes so the
// in-memory repo does not grow without bound.
func sweepSessions(repo *session.InMemoryRepo) {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		if removed := repo.DeleteExpired(time.Now()); removed > 0 {
			log.Printf("Swept %d expired sessions\n", removed)
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
