package keydump

import (
	"fmt"
	"io"
	"os"

	"src.rawkey.dev/pkg/errutil"
	"src.rawkey.dev/pkg/keylog"
	"src.rawkey.dev/pkg/prog"
)

// ReplayProgram prints the keys recorded in a key log. It is only suitable
// when -replay is given.
type ReplayProgram struct{}

func (ReplayProgram) Run(fds [3]*os.File, f *prog.Flags) error {
	if f.Replay == "" {
		return prog.ErrNotSuitable
	}
	if f.Set["record"] {
		return prog.BadUsage("-replay and -record can't be used together")
	}
	s, err := loadSettings(f)
	if err != nil {
		return err
	}
	return Replay(f.Replay, fds[1], s.json)
}

// Replay writes all entries of the key log at path to out, oldest first.
func Replay(path string, out io.Writer, useJSON bool) (err error) {
	// keylog.Open creates missing databases.
	if _, err := os.Stat(path); err != nil {
		return err
	}
	kl, err := keylog.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = errutil.Multi(err, kl.Close()) }()

	show := newShower(out, useJSON)
	var showErr error
	err = kl.Iterate(0, 0, func(e keylog.Entry) {
		if showErr != nil {
			return
		}
		if !useJSON {
			fmt.Fprintf(out, "%d\t", e.Seq)
		}
		showErr = show(e.Key)
	})
	return errutil.Multi(err, showErr)
}
