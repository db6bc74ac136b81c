// ABOUTME: Websocket server for triggering buttons from other devices
// ABOUTME: Serves list and trigger requests on /soundboard and streams results back
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Sendspin/soundboard-go/internal/playback"
	"github.com/Sendspin/soundboard-go/internal/store"
	"github.com/Sendspin/soundboard-go/internal/version"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Path is the websocket endpoint
const Path = "/soundboard"

const (
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// Soundboard is the part of the application the API drives
type Soundboard interface {
	Grid() (rows, cols int, buttons []store.Button, config string)
	TriggerCell(row, col int) (<-chan playback.Result, error)
	TriggerLabel(label string) (<-chan playback.Result, error)
}

// Config holds server configuration
type Config struct {
	Port int
	Name string
}

// Server is the remote trigger API
type Server struct {
	config   Config
	board    Soundboard
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	ctx    context.Context
	cancel context.CancelFunc

	clientsMu sync.Mutex
	clients   map[string]*client
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan any
}

// New creates a server; call Run to listen or mount Handler yourself
func New(config Config, board Soundboard) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config: config,
		board:  board,
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin != "" {
					log.Printf("Warning: accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[string]*client),
	}
	s.mux.HandleFunc(Path, s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Clients returns the number of connected clients
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// Run listens on the configured port until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.config.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{Handler: s.mux}
	log.Printf("Remote trigger API listening on %s%s", ln.Addr(), Path)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		return nil
	})
	return g.Wait()
}

// Close disconnects every client
func (s *Server) Close() {
	s.cancel()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New remote connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan any, 16),
	}

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		s.clientsMu.Unlock()
		log.Printf("Remote client disconnected: %s", c.id)
	}()

	g, ctx := errgroup.WithContext(s.ctx)

	g.Go(func() error {
		return s.writer(ctx, c)
	})
	g.Go(func() error {
		// Unblocks the reader when the writer fails or the server closes
		<-ctx.Done()
		conn.Close()
		return nil
	})
	g.Go(func() error {
		s.queue(ctx, c, Hello{
			Type:     TypeHello,
			ClientID: c.id,
			Name:     s.config.Name,
			Product:  version.Product,
			Version:  version.Version,
		})
		return s.reader(ctx, c)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			log.Printf("WebSocket error: %v", err)
		}
	}
}

func (s *Server) reader(ctx context.Context, c *client) error {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			s.queue(ctx, c, Error{Type: TypeError, Message: fmt.Sprintf("invalid message: %v", err)})
			continue
		}
		s.handleRequest(ctx, c, req)
	}
}

func (s *Server) writer(ctx context.Context, c *client) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(msg); err != nil {
				return fmt.Errorf("error writing message: %w", err)
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// queue hands a message to the writer; dropped once the connection is gone
func (s *Server) queue(ctx context.Context, c *client, msg any) {
	select {
	case c.send <- msg:
	case <-ctx.Done():
	}
}

func (s *Server) handleRequest(ctx context.Context, c *client, req Request) {
	switch req.Type {
	case TypeList:
		rows, cols, buttons, config := s.board.Grid()
		if buttons == nil {
			buttons = []store.Button{}
		}
		s.queue(ctx, c, Grid{
			Type:    TypeGrid,
			ID:      req.ID,
			Config:  config,
			Rows:    rows,
			Cols:    cols,
			Buttons: buttons,
		})

	case TypeTrigger:
		s.handleTrigger(ctx, c, req)

	default:
		s.queue(ctx, c, Error{Type: TypeError, ID: req.ID, Message: fmt.Sprintf("unknown message type %q", req.Type)})
	}
}

func (s *Server) handleTrigger(ctx context.Context, c *client, req Request) {
	var (
		results <-chan playback.Result
		err     error
		label   = req.Label
	)

	switch {
	case req.Label != "":
		results, err = s.board.TriggerLabel(req.Label)
	case req.Row != nil && req.Col != nil:
		label = fmt.Sprintf("%d,%d", *req.Row, *req.Col)
		results, err = s.board.TriggerCell(*req.Row, *req.Col)
	default:
		err = errors.New("trigger needs a label or a row and col")
	}

	if err != nil {
		s.queue(ctx, c, Result{Type: TypeResult, ID: req.ID, Label: label, Error: err.Error()})
		return
	}

	log.Printf("Remote trigger from %s: %s", c.id, label)

	go func() {
		select {
		case res, ok := <-results:
			if !ok {
				return
			}
			s.queue(ctx, c, resultMessage(req.ID, label, res))
		case <-ctx.Done():
		}
	}()
}

func resultMessage(id, label string, res playback.Result) Result {
	msg := Result{
		Type:       TypeResult,
		ID:         id,
		Label:      label,
		OK:         res.Err == nil,
		DurationMs: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		msg.Error = res.Err.Error()
		msg.Hint = playback.Hint(res.Err)
	}
	return msg
}
