// ABOUTME: soundboardctl subcommands
// ABOUTME: Each command parses its own flag set and writes a human-readable report
package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/Sendspin/soundboard-go/internal/devices"
	"github.com/Sendspin/soundboard-go/internal/discovery"
	"github.com/Sendspin/soundboard-go/internal/playback"
	"github.com/Sendspin/soundboard-go/internal/routing"
	"github.com/Sendspin/soundboard-go/internal/selection"
	"github.com/Sendspin/soundboard-go/internal/store"
	"github.com/Sendspin/soundboard-go/pkg/audio/encode"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
)

func newFlagSet(c *cli, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func runDevices(c *cli, args []string) error {
	fs := newFlagSet(c, "devices")
	backendName := fs.String("backend", output.DefaultBackend, "Audio backend")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend, err := c.newBackend(*backendName)
	if err != nil {
		return err
	}
	defer backend.Close()

	all, err := backend.Devices()
	if err != nil {
		return err
	}

	headColor.Fprintf(c.out, "%-5s %-40s %-8s %s\n", "INDEX", "NAME", "OUTPUTS", "RATE")
	for _, dev := range all {
		outputs := fmt.Sprintf("%d", dev.MaxOutputChannels)
		if dev.MaxOutputChannels > 0 {
			outputs = okColor.Sprint(outputs)
		} else {
			outputs = warnColor.Sprint(outputs)
		}
		fmt.Fprintf(c.out, "%-5d %-40s %-8s %d\n", dev.Index, dev.Name, outputs, dev.DefaultSampleRate)
	}
	return nil
}

func runEnsure(c *cli, args []string) error {
	report := routing.NewManager(c.controller).EnsureReport(c.ctx)

	for _, node := range report.Created {
		fmt.Fprintf(c.out, "%s %s\n", okColor.Sprint("created"), node)
	}
	for _, node := range report.Present {
		fmt.Fprintf(c.out, "%s %s\n", okColor.Sprint("present"), node)
	}
	for _, failed := range report.Failed {
		fmt.Fprintf(c.out, "%s %s: %v\n", errColor.Sprint("failed "), failed.Node, failed.Err)
	}

	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d nodes could not be set up", len(report.Failed), len(routing.NodeNames))
	}
	return nil
}

func runCleanup(c *cli, args []string) error {
	removed, err := routing.NewManager(c.controller).CleanupReport(c.ctx)

	for _, mod := range removed {
		fmt.Fprintf(c.out, "%s module %d (%s)\n", okColor.Sprint("unloaded"), mod.ID, mod.Name)
	}
	if len(removed) == 0 && err == nil {
		fmt.Fprintln(c.out, "nothing to clean up")
	}
	return err
}

func runStatus(c *cli, args []string) error {
	statuses, err := routing.NewManager(c.controller).Status(c.ctx)
	if err != nil {
		return err
	}

	headColor.Fprintf(c.out, "%-28s %s\n", "NODE", "STATE")
	for _, st := range statuses {
		fmt.Fprintf(c.out, "%-28s %s\n", st.Name, mark(st.Present, "present", "missing"))
	}
	return nil
}

func runPlay(c *cli, args []string) error {
	fs := newFlagSet(c, "play")
	backendName := fs.String("backend", output.DefaultBackend, "Audio backend")
	device := fs.Int("device", -1, "Output device index (default: the soundboard's selection)")
	dbPath := fs.String("db", "soundboard.db", "SQLite database holding the selected device")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("play needs exactly one file")
	}
	clip := fs.Arg(0)

	backend, err := c.newBackend(*backendName)
	if err != nil {
		return err
	}
	defer backend.Close()

	index := *device
	if index < 0 {
		st, err := store.Open(*dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		sel := selection.New(st, devices.New(backend))
		if index, err = sel.ResolveInitialDevice(); err != nil {
			return err
		}
	}

	start := time.Now()
	if err := playback.NewEngine(backend).Play(clip, index); err != nil {
		if hint := playback.Hint(err); hint != "" {
			warnColor.Fprintf(c.out, "hint: %s\n", hint)
		}
		return err
	}

	fmt.Fprintf(c.out, "%s %s on device %d (%.1fs)\n", okColor.Sprint("played"), clip, index, time.Since(start).Seconds())
	return nil
}

func runConfigs(c *cli, args []string) error {
	fs := newFlagSet(c, "configs")
	dbPath := fs.String("db", "soundboard.db", "SQLite database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	configs, err := st.ListConfigs()
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Fprintln(c.out, "no saved configurations")
		return nil
	}

	headColor.Fprintf(c.out, "%-4s %-30s %-6s %s\n", "ID", "NAME", "GRID", "BUTTONS")
	for _, cfg := range configs {
		buttons, err := st.GetConfigButtons(cfg.ID)
		if err != nil {
			return err
		}
		name := cfg.Name
		if cfg.LastUsed {
			name = okColor.Sprint(name + " *")
		}
		fmt.Fprintf(c.out, "%-4d %-30s %-6s %d\n", cfg.ID, name, fmt.Sprintf("%dx%d", cfg.Rows, cfg.Cols), len(buttons))
	}
	return nil
}

func runDiscover(c *cli, args []string) error {
	fs := newFlagSet(c, "discover")
	timeout := fs.Duration("timeout", 3*time.Second, "How long to listen for answers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	found, err := discovery.Lookup(*timeout)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(c.out, "no soundboards found")
		return nil
	}
	for _, sb := range found {
		fmt.Fprintf(c.out, "%s %s %s\n", okColor.Sprint(sb.Name), sb.URL(), sb.Version)
	}
	return nil
}

func runTone(c *cli, args []string) error {
	fs := newFlagSet(c, "tone")
	freq := fs.Float64("freq", 440, "Frequency in Hz")
	rate := fs.Int("rate", 48000, "Sample rate")
	channels := fs.Int("channels", 2, "Channels (1 or 2)")
	duration := fs.Duration("duration", time.Second, "Length")
	bits := fs.Int("bits", 16, "Bit depth")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("tone needs an output path")
	}
	if *rate <= 0 || *duration <= 0 {
		return errors.New("rate and duration must be positive")
	}

	path := fs.Arg(0)
	if err := encode.WriteWAVFile(path, encode.Tone(*freq, *rate, *channels, *duration), *bits); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s (%.0f Hz, %d Hz, %dch, %s)\n", okColor.Sprint("wrote"), path, *freq, *rate, *channels, *duration)
	return nil
}
