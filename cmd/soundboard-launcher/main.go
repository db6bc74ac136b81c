// ABOUTME: Wrapper process that owns the routing graph around a soundboard run
// ABOUTME: Ensures the graph, runs the app as a child and always cleans up after it exits
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Sendspin/soundboard-go/internal/routing"
	"golang.org/x/sync/errgroup"
)

var (
	appPath = flag.String("app", "", "Soundboard binary to run (default: soundboard next to the launcher)")
	logFile = flag.String("log-file", "launcher.log", "Log file path")
)

const cleanupTimeout = 10 * time.Second

func main() {
	flag.Parse()

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()
	log.SetOutput(io.MultiWriter(os.Stdout, f))

	app := *appPath
	if app == "" {
		app = defaultApp()
	}

	code, err := run(context.Background(), routing.NewManager(routing.NewPactl()), app, flag.Args())
	if err != nil {
		log.Printf("Launcher error: %v", err)
		if code == 0 {
			code = 1
		}
	}

	_ = f.Close()
	os.Exit(code)
}

// defaultApp looks for the soundboard binary beside the launcher
func defaultApp() string {
	exe, err := os.Executable()
	if err != nil {
		return "soundboard"
	}
	return filepath.Join(filepath.Dir(exe), "soundboard")
}

// run ensures the routing graph, runs the child to completion and tears the graph down.
// It returns the child's exit code.
func run(ctx context.Context, mgr *routing.Manager, app string, args []string) (int, error) {
	log.Printf("Launcher starting %s", app)

	if err := mgr.Ensure(ctx); err != nil {
		log.Printf("Warning: virtual routing graph is incomplete: %v", err)
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := mgr.Cleanup(cleanupCtx); err != nil {
			log.Printf("Warning: routing cleanup incomplete: %v", err)
		}
		log.Printf("Launcher finished")
	}()

	cmd := exec.Command(app, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("failed to start %s: %w", app, err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	g, gctx := errgroup.WithContext(ctx)
	exited := make(chan struct{})

	g.Go(func() error {
		defer close(exited)
		return cmd.Wait()
	})
	g.Go(func() error {
		for {
			select {
			case sig := <-sigChan:
				log.Printf("Forwarding %v to %s", sig, app)
				if err := cmd.Process.Signal(sig); err != nil {
					log.Printf("Warning: could not signal child: %v", err)
				}
			case <-exited:
				return nil
			case <-gctx.Done():
				return nil
			}
		}
	})

	err := g.Wait()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		log.Printf("%s exited with status %d", app, exitErr.ExitCode())
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return 1, err
	}
	log.Printf("%s exited normally", app)
	return 0, nil
}
