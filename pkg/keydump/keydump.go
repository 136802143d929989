// Package keydump implements the keydump subprograms, which show the keys
// decoded from the terminal and the keys recorded in a key log.
package keydump

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"src.rawkey.dev/pkg/errutil"
	"src.rawkey.dev/pkg/keylog"
	"src.rawkey.dev/pkg/keys"
	"src.rawkey.dev/pkg/logutil"
	"src.rawkey.dev/pkg/prog"
	"src.rawkey.dev/pkg/sys"
	"src.rawkey.dev/pkg/term"
)

var logger = logutil.GetLogger("[keydump] ")

// Program is the interactive key dump. It always runs, so it should be the
// last Program of a composite.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags) error {
	s, err := loadSettings(f)
	if err != nil {
		return err
	}
	in := fds[0]
	if !sys.IsATTY(in) {
		// Redirected input has no line discipline to disable.
		logger.Println("stdin is not a terminal, reading it as is")
		return Dump(in, fds[1], s.options())
	}
	return term.WithRaw(in, func(*term.RawMode) error {
		fmt.Fprintf(fds[1], "Press any key (%s to exit):\n", s.quitKey)
		return Dump(in, fds[1], s.options())
	})
}

// Options controls Dump.
type Options struct {
	EscapeTimeout time.Duration
	// QuitKey stops the dump after it is shown.
	QuitKey keys.Key
	// Record is the path of a key log to add decoded keys to. If empty, keys
	// are not recorded.
	Record string
	JSON   bool
}

func (s *settings) options() Options {
	return Options{s.escapeTimeout, s.quitKey, s.record, s.json}
}

// Dump decodes keys from in and shows them on out, until the quit key is
// decoded or in ends.
func Dump(in *os.File, out io.Writer, opts Options) (err error) {
	src, err := term.NewFileSource(in)
	if err != nil {
		return err
	}
	defer func() { err = errutil.Multi(err, src.Close()) }()
	return dumpKeys(src, out, opts)
}

func dumpKeys(src term.ByteSource, out io.Writer, opts Options) (err error) {
	decOpts := []term.Option{term.WithLogger(logger)}
	if opts.EscapeTimeout > 0 {
		decOpts = append(decOpts, term.WithEscapeTimeout(opts.EscapeTimeout))
	}
	var recordErr error
	if opts.Record != "" {
		kl, openErr := keylog.Open(opts.Record)
		if openErr != nil {
			return openErr
		}
		defer func() { err = errutil.Multi(err, recordErr, kl.Close()) }()
		decOpts = append(decOpts, term.WithObserver(keylog.Observer(kl, func(e error) {
			if recordErr == nil {
				recordErr = e
			}
		})))
	}
	d := term.NewDecoder(src, decOpts...)
	show := newShower(out, opts.JSON)

	for {
		k, err := d.ReadKey()
		var seqErr *term.SeqError
		switch {
		case errors.As(err, &seqErr):
			fmt.Fprintf(out, "Unrecognized sequence: %q\n", seqErr.Seq)
			continue
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}
		if err := show(k); err != nil {
			return err
		}
		if k == opts.QuitKey {
			return nil
		}
	}
}

func newShower(out io.Writer, useJSON bool) func(keys.Key) error {
	if useJSON {
		enc := json.NewEncoder(out)
		return func(k keys.Key) error { return enc.Encode(k) }
	}
	return func(k keys.Key) error {
		_, err := fmt.Fprintln(out, describe(k))
		return err
	}
}

func describe(k keys.Key) string {
	return fmt.Sprintf("Key pressed: %s (code %d), Modifiers: %07b", k, k.Code, k.Mod)
}
