package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rphilander/lispy/journal"
	"github.com/rphilander/lispy/session"
)

func main() {
	sockPath := os.Getenv("LISPY_SOCK")
	if sockPath == "" {
		sockPath = "/tmp/lispy.sock"
	}

	// Empty means no journal: the session starts fresh every time.
	journalPath := os.Getenv("LISPY_JOURNAL")

	var rec session.Recorder
	var j *journal.Journal
	if journalPath != "" {
		var err error
		j, err = journal.Open(journalPath)
		if err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		rec = j
	}

	srv, err := session.New(rec)
	if err != nil {
		log.Fatalf("failed to start session: %v", err)
	}
	if err := srv.Listen(sockPath); err != nil {
		log.Fatalf("failed to start session: %v", err)
	}

	// Handle shutdown signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("shutting down...")
		srv.Shutdown()
		if j != nil {
			j.Close()
		}
		os.Remove(sockPath)
		os.Exit(0)
	}()

	log.Printf("lispy session listening (socket: %s, journal: %q)", sockPath, journalPath)
	srv.Run()
}
