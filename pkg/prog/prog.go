// Package prog provides the entry point to rawkey. Its subpackages correspond
// to subprograms of rawkey.
package prog

// This package parses flags, sets up logging and calls the appropriate
// "subprogram": the interactive key dump or the key log replay.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"src.rawkey.dev/pkg/logutil"
)

// Flags keeps command-line flags.
type Flags struct {
	Log, Config string

	Help, JSON bool

	Record, Replay string

	EscapeTimeout time.Duration

	// Set records the names of flags given on the command line, so that they
	// can take precedence over the config file.
	Set map[string]bool
}

func newFlagSet(f *Flags) *flag.FlagSet {
	fs := flag.NewFlagSet("keydump", flag.ContinueOnError)
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)

	fs.StringVar(&f.Log, "log", "", "a file to write debug log to")
	fs.StringVar(&f.Config, "config", "", "path to the config file")

	fs.BoolVar(&f.Help, "help", false, "show usage help and quit")
	fs.BoolVar(&f.JSON, "json", false, "show keys as JSON lines")

	fs.StringVar(&f.Record, "record", "", "record decoded keys to a key log database")
	fs.StringVar(&f.Replay, "replay", "", "print the keys recorded in a key log database and quit")

	fs.DurationVar(&f.EscapeTimeout, "timeout", 0, "how long to wait for an escape sequence after ESC (default 50ms)")

	return fs
}

func usage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: keydump [flags]")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// Run parses command-line flags and runs the first applicable subprogram. It
// returns the exit status of the program.
func Run(fds [3]*os.File, args []string, p Program) int {
	f := &Flags{}
	fs := newFlagSet(f)
	err := fs.Parse(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			// (*flag.FlagSet).Parse returns ErrHelp when -h or -help was
			// requested but *not* defined. -help is defined but -h is not;
			// treat -h like any other undefined flag.
			fmt.Fprintln(fds[2], "flag provided but not defined: -h")
		} else {
			fmt.Fprintln(fds[2], err)
		}
		usage(fds[2], fs)
		return 2
	}
	f.Set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.Set[fl.Name] = true })

	if f.Log != "" {
		err = logutil.SetOutputFile(f.Log)
		if err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}

	if f.Help {
		usage(fds[1], fs)
		return 0
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(fds[2], "unexpected arguments:", fs.Args())
		usage(fds[2], fs)
		return 2
	}

	return exitStatus(fds[2], fs, p.Run(fds, f))
}

// Maps the error returned by a subprogram to an exit status, reporting it on
// stderr unless it is empty.
func exitStatus(stderr io.Writer, fs *flag.FlagSet, err error) int {
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(stderr, msg)
	}
	if exit := (exitError{}); errors.As(err, &exit) {
		return exit.exit
	}
	if errors.As(err, new(badUsageError)) {
		usage(stderr, fs)
	}
	return 2
}

// Composite returns a Program that runs the first of programs that accepts the
// flags. keydump puts the replay program first, since it only accepts -replay,
// and the interactive dump last.
func Composite(programs ...Program) Program {
	return compositeProgram(programs)
}

type compositeProgram []Program

func (cp compositeProgram) Run(fds [3]*os.File, f *Flags) error {
	for _, p := range cp {
		err := p.Run(fds, f)
		if err != ErrNotSuitable {
			return err
		}
	}
	return ErrNotSuitable
}

// ErrNotSuitable is returned by a Program that does not handle the given
// flags, so that Composite moves on to the next one.
var ErrNotSuitable = errors.New("internal error: no suitable subprogram")

// BadUsage returns an error for flags that are well-formed but can't be used
// together or have bad values. Run prints msg and the usage, then exits with
// 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns an error that makes Run exit with the given status and print
// nothing. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }

// Program is a subprogram of keydump.
type Program interface {
	// Run runs the subprogram with stdin, stdout and stderr in fds. It returns
	// ErrNotSuitable if f asks for another subprogram.
	Run(fds [3]*os.File, f *Flags) error
}
