// ABOUTME: soundboardctl commands that talk to a running soundboard
// ABOUTME: Connects over the remote trigger API, discovering the soundboard when no URL is given
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/Sendspin/soundboard-go/internal/discovery"
	"github.com/Sendspin/soundboard-go/internal/remote"
)

const remoteTimeout = 30 * time.Second

func remoteFlags(c *cli, name string) (*flag.FlagSet, *string) {
	fs := newFlagSet(c, name)
	rawURL := fs.String("url", "", "Soundboard URL (default: first one found via mDNS)")
	return fs, rawURL
}

func (c *cli) connect(ctx context.Context, rawURL string) (*remote.Client, error) {
	if rawURL == "" {
		found, err := discovery.Lookup(0)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, errors.New("no soundboards found; pass -url")
		}
		rawURL = found[0].URL()
	}
	return remote.DialURL(ctx, rawURL)
}

func runGrid(c *cli, args []string) error {
	fs, rawURL := remoteFlags(c, "grid")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.ctx, remoteTimeout)
	defer cancel()

	client, err := c.connect(ctx, *rawURL)
	if err != nil {
		return err
	}
	defer client.Close()

	grid, err := client.List(ctx)
	if err != nil {
		return err
	}

	config := grid.Config
	if config == "" {
		config = "(unsaved)"
	}
	headColor.Fprintf(c.out, "%s · %s (%dx%d)\n", client.Hello().Name, config, grid.Rows, grid.Cols)
	for _, btn := range grid.Buttons {
		clip := btn.AudioPath
		if clip == "" {
			clip = warnColor.Sprint("no clip")
		}
		fmt.Fprintf(c.out, "  %d,%d  %-24s %s\n", btn.Row, btn.Col, btn.Label, clip)
	}
	return nil
}

func runTrigger(c *cli, args []string) error {
	fs, rawURL := remoteFlags(c, "trigger")
	row := fs.Int("row", -1, "Button row")
	col := fs.Int("col", -1, "Button column")
	if err := fs.Parse(args); err != nil {
		return err
	}

	byCell := *row >= 0 && *col >= 0
	if !byCell && fs.NArg() != 1 {
		return errors.New("trigger needs a label or -row and -col")
	}

	ctx, cancel := context.WithTimeout(c.ctx, remoteTimeout)
	defer cancel()

	client, err := c.connect(ctx, *rawURL)
	if err != nil {
		return err
	}
	defer client.Close()

	var res remote.Result
	if byCell {
		res, err = client.TriggerCell(ctx, *row, *col)
	} else {
		res, err = client.Trigger(ctx, fs.Arg(0))
	}
	if err != nil {
		return err
	}

	if !res.OK {
		if res.Hint != "" {
			warnColor.Fprintf(c.out, "hint: %s\n", res.Hint)
		}
		return errors.New(res.Error)
	}
	fmt.Fprintf(c.out, "%s %s (%.1fs)\n", okColor.Sprint("played"), res.Label, float64(res.DurationMs)/1000)
	return nil
}
