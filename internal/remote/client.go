// ABOUTME: WebSocket client for the remote trigger API
// ABOUTME: Connects, reads the hello and runs list/trigger requests one at a time
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const helloTimeout = 5 * time.Second

// Client talks to a remote soundboard
type Client struct {
	conn  *websocket.Conn
	hello Hello

	mu sync.Mutex
}

// envelope is decoded first to route a reply
type envelope struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Dial connects to a soundboard at host:port and waits for its hello
func Dial(ctx context.Context, addr string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	return DialURL(ctx, u.String())
}

// DialURL connects to a full ws:// URL
func DialURL(ctx context.Context, rawURL string) (*Client, error) {
	log.Printf("Connecting to %s", rawURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	c := &Client{conn: conn}

	conn.SetReadDeadline(time.Now().Add(helloTimeout))
	if err := conn.ReadJSON(&c.hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	if c.hello.Type != TypeHello {
		conn.Close()
		return nil, fmt.Errorf("expected %s, got %s", TypeHello, c.hello.Type)
	}

	log.Printf("Connected to %s (%s %s)", c.hello.Name, c.hello.Product, c.hello.Version)
	return c, nil
}

// Hello returns the server's greeting
func (c *Client) Hello() Hello {
	return c.hello
}

// List returns the remote grid
func (c *Client) List(ctx context.Context) (Grid, error) {
	var grid Grid
	err := c.roundTrip(ctx, Request{Type: TypeList}, TypeGrid, &grid)
	return grid, err
}

// Trigger plays a button by label and waits for the result
func (c *Client) Trigger(ctx context.Context, label string) (Result, error) {
	var res Result
	err := c.roundTrip(ctx, Request{Type: TypeTrigger, Label: label}, TypeResult, &res)
	return res, err
}

// TriggerCell plays a button by position and waits for the result
func (c *Client) TriggerCell(ctx context.Context, row, col int) (Result, error) {
	var res Result
	err := c.roundTrip(ctx, Request{Type: TypeTrigger, Row: &row, Col: &col}, TypeResult, &res)
	return res, err
}

// roundTrip sends req and decodes the reply carrying the same id into out
func (c *Client) roundTrip(ctx context.Context, req Request, want string, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	req.ID = uuid.New().String()
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("failed to send %s: %w", req.Type, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetReadDeadline(deadline)
		defer c.conn.SetReadDeadline(time.Time{})
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read reply: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("invalid reply: %w", err)
		}
		if env.ID != req.ID {
			continue
		}

		switch env.Type {
		case want:
			return json.Unmarshal(data, out)
		case TypeError:
			var e Error
			if err := json.Unmarshal(data, &e); err != nil {
				return fmt.Errorf("invalid error reply: %w", err)
			}
			return fmt.Errorf("remote error: %s", e.Message)
		default:
			return fmt.Errorf("unexpected reply type %s", env.Type)
		}
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
