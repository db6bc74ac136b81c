// ABOUTME: Main soundboard application orchestration
// ABOUTME: Startup sequence, host surfaces (TUI, remote API, mDNS) and guaranteed routing cleanup
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/Sendspin/soundboard-go/internal/devices"
	"github.com/Sendspin/soundboard-go/internal/discovery"
	"github.com/Sendspin/soundboard-go/internal/playback"
	"github.com/Sendspin/soundboard-go/internal/remote"
	"github.com/Sendspin/soundboard-go/internal/routing"
	"github.com/Sendspin/soundboard-go/internal/selection"
	"github.com/Sendspin/soundboard-go/internal/store"
	"github.com/Sendspin/soundboard-go/internal/ui"
	"github.com/Sendspin/soundboard-go/internal/version"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

const cleanupTimeout = 10 * time.Second

// Config holds application configuration
type Config struct {
	DBPath     string
	Backend    string
	Routing    bool
	UseTUI     bool
	Rows       int
	Cols       int
	RemotePort int
	MDNS       bool
	Name       string

	// Controller drives the routing graph; nil means pactl
	Controller routing.Controller
}

// App is the running soundboard process
type App struct {
	config Config

	routing    *routing.Manager
	store      *store.Store
	backend    output.Backend
	dispatcher *playback.Dispatcher
	soundboard *Soundboard
	discovery  *discovery.Manager
	tuiProg    *tea.Program

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// New creates the application
func New(config Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Soundboard returns the soundboard service once setup has run
func (a *App) Soundboard() *Soundboard {
	return a.soundboard
}

// setup runs the startup sequence up to the point where triggers can be served
func (a *App) setup() error {
	log.Printf("Starting %s: %s", version.String(), a.config.Name)

	if a.config.Routing {
		ctrl := a.config.Controller
		if ctrl == nil {
			ctrl = routing.NewPactl()
		}
		a.routing = routing.NewManager(ctrl)
		if err := a.routing.Ensure(a.ctx); err != nil {
			log.Printf("Warning: virtual routing graph is incomplete: %v", err)
		}
	}

	st, err := store.Open(a.config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.store = st

	backend, err := output.New(a.config.Backend)
	if err != nil {
		return fmt.Errorf("failed to open audio backend: %w", err)
	}
	a.backend = backend

	inventory := devices.New(backend)
	inventory.LogDevices()

	sel := selection.New(st, inventory)
	if _, err := sel.ResolveInitialDevice(); err != nil {
		log.Printf("Warning: could not resolve an output device: %v", err)
	}
	index, name := sel.Current()
	log.Printf("Using output device [%d] %s", index, name)

	a.dispatcher = playback.NewDispatcher(playback.NewEngine(backend))
	a.soundboard = NewSoundboard(st, inventory, sel, a.dispatcher, a.config.Rows, a.config.Cols)
	if err := a.soundboard.LoadLastUsed(); err != nil {
		log.Printf("Warning: failed to load last configuration: %v", err)
	}

	return nil
}

// Start runs the application until Stop is called or the TUI quits.
// The routing graph is torn down on every return path.
func (a *App) Start() error {
	defer a.shutdown()

	if err := a.setup(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(a.ctx)

	if a.config.RemotePort > 0 {
		a.startRemote(gctx, g)
	}

	if a.config.UseTUI {
		a.tuiProg = ui.Run(a.soundboard)
		g.Go(func() error {
			go func() {
				<-gctx.Done()
				a.tuiProg.Quit()
			}()
			_, err := a.tuiProg.Run()
			log.Printf("TUI exited")
			a.Stop()
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// startRemote serves the remote trigger API and advertises it over mDNS.
// Both are optional: a busy port is logged and the app keeps running.
func (a *App) startRemote(ctx context.Context, g *errgroup.Group) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.RemotePort))
	if err != nil {
		log.Printf("Warning: remote trigger API disabled: failed to listen on port %d: %v", a.config.RemotePort, err)
		return
	}

	srv := remote.New(remote.Config{Port: a.config.RemotePort, Name: a.config.Name}, a.soundboard)
	g.Go(func() error {
		if err := srv.Serve(ctx, ln); err != nil {
			log.Printf("Warning: remote trigger API stopped: %v", err)
		}
		return nil
	})

	if !a.config.MDNS {
		return
	}
	a.discovery = discovery.NewManager(discovery.Config{
		ServiceName: a.config.Name,
		Port:        a.config.RemotePort,
	})
	if err := a.discovery.Advertise(); err != nil {
		log.Printf("Failed to start mDNS advertisement: %v", err)
	}
	a.discovery.Browse()
	go a.logPeers(ctx)
}

// logPeers reports other soundboards on the network once each
func (a *App) logPeers(ctx context.Context) {
	seen := make(map[string]bool)
	for {
		select {
		case sb := <-a.discovery.Soundboards():
			if seen[sb.Name] {
				continue
			}
			seen[sb.Name] = true
			log.Printf("Found soundboard %s at %s", sb.Name, sb.URL())
		case <-ctx.Done():
			return
		}
	}
}

// Stop asks Start to return
func (a *App) Stop() {
	a.stopOnce.Do(a.cancel)
}

// shutdown releases everything setup acquired; safe after a partial setup
func (a *App) shutdown() {
	a.Stop()

	if a.discovery != nil {
		a.discovery.Stop()
	}
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			log.Printf("Error closing audio backend: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	if a.routing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := a.routing.Cleanup(ctx); err != nil {
			log.Printf("Warning: routing cleanup incomplete: %v", err)
		}
	}

	log.Printf("Soundboard stopped")
}
