// ABOUTME: Entry point for the soundboard
// ABOUTME: Parses CLI flags, sets up logging and runs the application until quit or signal
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sendspin/soundboard-go/internal/app"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
)

var (
	dbPath     = flag.String("db", "soundboard.db", "SQLite database path")
	backend    = flag.String("backend", output.DefaultBackend, "Audio backend (pulse, malgo, portaudio, oto, mock)")
	logFile    = flag.String("log-file", "soundboard.log", "Log file path")
	noRouting  = flag.Bool("no-routing", false, "Do not create or remove the virtual routing graph")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	rows       = flag.Int("rows", 3, "Rows of the default grid")
	cols       = flag.Int("cols", 3, "Columns of the default grid")
	remotePort = flag.Int("remote-port", 8928, "Port for the remote trigger API (0 disables it)")
	noMDNS     = flag.Bool("no-mdns", false, "Do not advertise the remote trigger API via mDNS")
	name       = flag.String("name", "", "Soundboard friendly name (default: hostname-soundboard)")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	boardName := *name
	if boardName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		boardName = fmt.Sprintf("%s-soundboard", hostname)
	}

	a := app.New(app.Config{
		DBPath:     *dbPath,
		Backend:    *backend,
		Routing:    !*noRouting,
		UseTUI:     useTUI,
		Rows:       *rows,
		Cols:       *cols,
		RemotePort: *remotePort,
		MDNS:       !*noMDNS,
		Name:       boardName,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-sigChan
		log.Printf("Shutdown signal received: %v", sig)
		a.Stop()
	}()

	if err := a.Start(); err != nil {
		log.Printf("Soundboard failed: %v", err)
		fmt.Fprintf(os.Stderr, "soundboard: %v\n", err)
		_ = f.Close()
		os.Exit(1)
	}
}
