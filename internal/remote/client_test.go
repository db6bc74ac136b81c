// ABOUTME: Tests for the remote trigger client
// ABOUTME: Runs the client against a real server over httptest
package remote

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	srv := New(Config{Name: "Desk"}, newFakeBoard())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, strings.TrimPrefix(ts.URL, "http://"))
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClientHello(t *testing.T) {
	c := newTestClient(t)
	if hello := c.Hello(); hello.Name != "Desk" || hello.ClientID == "" {
		t.Errorf("unexpected hello %+v", hello)
	}
}

func TestClientList(t *testing.T) {
	c := newTestClient(t)

	grid, err := c.List(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	if grid.Rows != 2 || grid.Cols != 2 || grid.Buttons[0].Label != "Airhorn" {
		t.Errorf("unexpected grid %+v", grid)
	}
}

func TestClientTrigger(t *testing.T) {
	c := newTestClient(t)
	ctx := testContext(t)

	res, err := c.Trigger(ctx, "Airhorn")
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK {
		t.Errorf("expected success, got %+v", res)
	}

	res, err = c.TriggerCell(ctx, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK || res.Hint == "" {
		t.Errorf("expected playback failure with hint, got %+v", res)
	}

	// Sequential requests on one connection stay matched to their replies
	for i := 0; i < 3; i++ {
		if _, err := c.List(ctx); err != nil {
			t.Fatal(err)
		}
	}
}
