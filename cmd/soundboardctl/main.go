// ABOUTME: Operator CLI for the soundboard
// ABOUTME: Inspects devices and the routing graph, plays clips and finds soundboards on the network
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/Sendspin/soundboard-go/internal/routing"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
	"github.com/fatih/color"
)

// cli carries the collaborators commands run against
type cli struct {
	ctx        context.Context
	out        io.Writer
	controller routing.Controller
	newBackend func(name string) (output.Backend, error)
}

type command struct {
	usage string
	help  string
	run   func(c *cli, args []string) error
}

var commands = map[string]command{
	"devices":  {"devices [-backend name]", "List audio devices and their output channels", runDevices},
	"ensure":   {"ensure", "Create the virtual routing graph", runEnsure},
	"cleanup":  {"cleanup", "Remove every soundboard routing module", runCleanup},
	"status":   {"status", "Show which routing nodes exist", runStatus},
	"play":     {"play [-backend name] [-device N] [-db path] file", "Play a clip synchronously", runPlay},
	"configs":  {"configs [-db path]", "List saved button configurations", runConfigs},
	"discover": {"discover [-timeout 3s]", "Find soundboards on the local network", runDiscover},
	"grid":     {"grid [-url ws://host:port/soundboard]", "Show the grid of a running soundboard", runGrid},
	"trigger":  {"trigger [-url ws://host:port/soundboard] [-row R -col C] [label]", "Play a button on a running soundboard", runTrigger},
	"tone":     {"tone [-freq 440] [-rate 48000] [-channels 2] [-duration 1s] [-bits 16] out.wav", "Write a test tone", runTone},
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	headColor = color.New(color.Bold)
)

func main() {
	log.SetOutput(io.Discard)
	if os.Getenv("SOUNDBOARDCTL_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	}

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	c := &cli{
		ctx:        context.Background(),
		out:        os.Stdout,
		controller: routing.NewPactl(),
		newBackend: output.New,
	}

	if err := c.dispatch(os.Args[1], os.Args[2:]); err != nil {
		errColor.Fprintf(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) dispatch(name string, args []string) error {
	if name == "help" || name == "-h" || name == "--help" {
		usage(c.out)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try \"soundboardctl help\")", name)
	}
	return cmd.run(c, args)
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	headColor.Fprintln(w, "Usage: soundboardctl <command> [flags]")
	fmt.Fprintln(w)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-70s %s\n", cmd.usage, cmd.help)
	}
}

// mark renders a coloured yes/no cell
func mark(ok bool, yes, no string) string {
	if ok {
		return okColor.Sprint(yes)
	}
	return warnColor.Sprint(no)
}
