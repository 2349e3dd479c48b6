package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"rsc.io/getopt"
)

var (
	flagTTYUdev    = flag.Bool("tty-udev", false, "Run against a udev/DRM TTY backend (not implemented by this core; recorded for logging only)")
	flagWinit      = flag.Bool("winit", false, "Run nested in a winit window (not implemented by this core; recorded for logging only)")
	flagX11        = flag.Bool("x11", false, "Run nested under X11 (not implemented by this core; recorded for logging only)")
	flagConfigPath = flag.String("config", "", "Path to a stilch config file")
	flagWorkspaces = flag.Int("workspaces", 10, "Number of fixed global workspaces")
	flagDebug      = flag.Bool("debug", false, "Panic instead of rolling back on an invariant violation, and raise the log level to debug")
	flagSocket     = flag.String("socket", "", "Unix socket to read inbound events from and write outbound effects to (default: stdin/stdout)")
)

// boolFlag mirrors flag.boolFlag, used to let a boolean short option
// inside a combined run like -dn4 set its flag without consuming an
// argument.
type boolFlag interface {
	IsBoolFlag() bool
}

func init() {
	getopt.CommandLine.Init("stilchd", flag.ContinueOnError)
	getopt.CommandLine.SetOutput(io.Discard)
	getopt.Alias("c", "config")
	getopt.Alias("n", "workspaces")
	getopt.Alias("d", "debug")
	getopt.Alias("s", "socket")
	getopt.CommandLine.Usage = func() {}
}

// parseFlags implements GNU-style combined short options (`-dn4`) on top
// of the standard flag.FlagSet, which rsc.io/getopt's long-option
// aliasing alone doesn't provide.
func parseFlags(f *getopt.FlagSet, args []string) error {
	for len(args) > 0 {
		arg := args[0]
		if len(arg) < 2 || arg[0] != '-' {
			break
		}
		args = args[1:]
		if arg[:2] == "--" {
			if arg == "--" {
				break
			}
			name := arg[2:]
			value := ""
			haveValue := false
			if i := strings.Index(name, "="); i >= 0 {
				name, value = name[:i], name[i+1:]
				haveValue = true
			}
			fg := f.Lookup(name)
			if fg == nil {
				if name == "h" || name == "help" {
					return flag.ErrHelp
				}
				return fmt.Errorf("flag provided but not defined: --%s", name)
			}
			if b, ok := fg.Value.(boolFlag); ok && b.IsBoolFlag() {
				if haveValue {
					if err := fg.Value.Set(value); err != nil {
						return fmt.Errorf("invalid boolean value %q for --%s: %v", value, name, err)
					}
				} else if err := fg.Value.Set("true"); err != nil {
					return fmt.Errorf("invalid boolean flag %s: %v", name, err)
				}
				continue
			}
			if !haveValue {
				if len(args) == 0 {
					return fmt.Errorf("missing argument for --%s", name)
				}
				value, args = args[0], args[1:]
			}
			if err := fg.Value.Set(value); err != nil {
				return fmt.Errorf("invalid value %q for flag --%s: %v", value, name, err)
			}
			continue
		}

		for arg = arg[1:]; arg != ""; {
			r, size := utf8.DecodeRuneInString(arg)
			if r == utf8.RuneError && size == 1 {
				return fmt.Errorf("invalid UTF8 in command-line flags")
			}
			name := arg[:size]
			arg = arg[size:]
			fg := f.Lookup(name)
			if fg == nil {
				if name == "h" {
					return flag.ErrHelp
				}
				return fmt.Errorf("flag provided but not defined: -%s", name)
			}
			if b, ok := fg.Value.(boolFlag); ok && b.IsBoolFlag() {
				if err := fg.Value.Set("true"); err != nil {
					return fmt.Errorf("invalid boolean flag %s: %v", name, err)
				}
				continue
			}
			if arg == "" {
				if len(args) == 0 {
					return fmt.Errorf("missing argument for -%s", name)
				}
				arg, args = args[0], args[1:]
			}
			if err := fg.Value.Set(arg); err != nil {
				return fmt.Errorf("invalid value %q for flag -%s: %v", arg, name, err)
			}
			break
		}
	}

	f.FlagSet.Parse(append([]string{"--"}, args...))
	return nil
}
