package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"rsc.io/getopt"

	"stilch/internal/core"
	"stilch/internal/logx"
)

func main() {
	os.Exit(run())
}

// run wires flags, config, an event source, and internal/core.Core into
// the single-threaded loop §5 describes, and returns the process exit
// code (§6/§7: 0 clean shutdown, 1 init failure, 2 config-load fatal
// error).
func run() int {
	err := parseFlags(&getopt.CommandLine, os.Args[1:])
	if err == flag.ErrHelp {
		fmt.Fprintln(os.Stderr, "Usage: stilchd [options]")
		getopt.CommandLine.SetOutput(os.Stderr)
		getopt.CommandLine.PrintDefaults()
		return 0
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *flagDebug {
		logx.SetLevel(logx.LevelDebug)
	}
	log := logx.New("stilchd")

	backend := "none"
	switch {
	case *flagTTYUdev:
		backend = "tty-udev"
	case *flagWinit:
		backend = "winit"
	case *flagX11:
		backend = "x11"
	}
	log.Infof("starting with %d workspaces, backend=%s (input/render backends are not implemented by this core)", *flagWorkspaces, backend)

	c := core.New(*flagWorkspaces, *flagDebug)

	if *flagConfigPath != "" {
		data, err := os.ReadFile(*flagConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stilchd: reading config %s: %v\n", *flagConfigPath, err)
			return 1
		}
		if errs := c.LoadConfig(data); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "stilchd: config: %s\n", e.Error())
			}
			return 2
		}
	}

	in, out, cleanup, err := openEventStream()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stilchd: %v\n", err)
		return 1
	}
	defer cleanup()

	var watchEvents <-chan fsnotify.Event
	var watchErrors <-chan error
	if *flagConfigPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			fmt.Fprintf(os.Stderr, "stilchd: config watcher: %v\n", err)
			return 1
		}
		defer watcher.Close()
		// Watch the containing directory, not the file itself: editors
		// commonly replace a config file via rename rather than an
		// in-place write, which drops inotify's watch on the original
		// inode.
		if err := watcher.Add(filepath.Dir(*flagConfigPath)); err != nil {
			fmt.Fprintf(os.Stderr, "stilchd: config watcher: %v\n", err)
			return 1
		}
		watchEvents = watcher.Events
		watchErrors = watcher.Errors
	}

	lines := make(chan string)
	readErrs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		readErrs <- scanner.Err()
	}()

	enc := json.NewEncoder(out)
	target := filepath.Clean(*flagConfigPath)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				if err := <-readErrs; err != nil {
					log.Errorf("reading events: %s", err)
					return 1
				}
				log.Infof("event stream closed, shutting down")
				return 0
			}
			if line == "" {
				continue
			}
			var wire WireInbound
			if err := json.Unmarshal([]byte(line), &wire); err != nil {
				log.Warnf("malformed event: %s", err)
				continue
			}
			ev, err := wire.toCore()
			if err != nil {
				log.Warnf("event: %s", err)
				continue
			}
			for _, eff := range c.Apply(ev) {
				if err := enc.Encode(fromCoreEffect(eff)); err != nil {
					log.Errorf("writing effect: %s", err)
					return 1
				}
			}

		case ev, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			data, err := os.ReadFile(*flagConfigPath)
			if err != nil {
				log.Warnf("config reload: %s", err)
				continue
			}
			for _, eff := range c.Apply(core.InboundEvent{ConfigReload: &core.ConfigReload{Data: data}}) {
				if err := enc.Encode(fromCoreEffect(eff)); err != nil {
					log.Errorf("writing effect: %s", err)
					return 1
				}
			}

		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			log.Warnf("config watcher: %s", err)
		}
	}
}

// openEventStream returns the inbound event reader and outbound effect
// writer: --socket PATH makes stilchd the listening side (mirroring niri
// itself, not the teacher's waybar client which dials out to
// NIRI_SOCKET), accepting a single backend connection; the default is
// stdin/stdout, for driving stilchd directly or from a test harness.
func openEventStream() (io.Reader, io.Writer, func(), error) {
	if *flagSocket == "" {
		return os.Stdin, os.Stdout, func() {}, nil
	}

	_ = os.Remove(*flagSocket)
	listener, err := net.Listen("unix", *flagSocket)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listening on %s: %w", *flagSocket, err)
	}
	conn, err := listener.Accept()
	if err != nil {
		listener.Close()
		return nil, nil, nil, fmt.Errorf("accepting on %s: %w", *flagSocket, err)
	}
	cleanup := func() {
		conn.Close()
		listener.Close()
		os.Remove(*flagSocket)
	}
	return conn, conn, cleanup, nil
}
