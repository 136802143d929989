//go:build unix

package term

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"src.rawkey.dev/pkg/errutil"
	"src.rawkey.dev/pkg/sys"
	"src.rawkey.dev/pkg/sys/eunix"
)

// ErrNotTerminal is returned when raw mode is requested on a file that is not
// a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// RawMode is a handle on the raw mode of a terminal. The terminal settings in
// effect when the handle is first enabled are saved, and every Restore returns
// to them.
//
// Terminal settings are shared by the whole process, so a program should own
// one RawMode per terminal and restore it on every exit path.
type RawMode struct {
	file *os.File
	fd   int

	mu     sync.Mutex
	saved  *term.State
	active bool
}

// EnableRaw puts the terminal referred to by f into raw mode: no line
// buffering, no local echo, no signals from control characters, no software
// flow control and no CR to NL translation.
func EnableRaw(f *os.File) (*RawMode, error) {
	rm := &RawMode{file: f, fd: int(f.Fd())}
	if err := rm.Enable(); err != nil {
		return nil, err
	}
	return rm, nil
}

// Enable puts the terminal into raw mode again after Restore. It does nothing
// if raw mode is already active.
func (rm *RawMode) Enable() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.active {
		return nil
	}
	if !sys.IsATTY(rm.file) {
		return ErrNotTerminal
	}
	if rm.saved == nil {
		saved, err := term.GetState(rm.fd)
		if err != nil {
			return fmt.Errorf("can't get terminal attribute: %w", err)
		}
		rm.saved = saved
	}

	t, err := eunix.GetTermios(rm.fd)
	if err != nil {
		return fmt.Errorf("can't get terminal attribute: %w", err)
	}
	eunix.MakeRaw(t)
	if err := eunix.SetTermios(rm.fd, t); err != nil {
		return fmt.Errorf("can't set up terminal attribute: %w", err)
	}
	rm.active = true
	logger.Println("raw mode enabled on fd", rm.fd)
	return nil
}

// Active reports whether raw mode is in effect.
func (rm *RawMode) Active() bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.active
}

// Restore restores the saved terminal settings. It does nothing if raw mode
// is not active, so it is safe to call more than once.
func (rm *RawMode) Restore() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if !rm.active {
		return nil
	}
	if err := term.Restore(rm.fd, rm.saved); err != nil {
		return fmt.Errorf("can't restore terminal attribute: %w", err)
	}
	rm.active = false
	logger.Println("raw mode restored on fd", rm.fd)
	return nil
}

// RestoreOnSignal restores the terminal when the process receives one of sigs,
// then lets the signal take its default action. Without arguments it watches
// sys.TerminationSignals. The returned function stops watching for signals.
func (rm *RawMode) RestoreOnSignal(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = sys.TerminationSignals
	}
	sigCh, stopNotify := sys.NotifySignals(sigs...)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Println("restoring terminal on signal", sig)
			if err := rm.Restore(); err != nil {
				logger.Println(err)
			}
			stopNotify()
			sys.Reraise(sig)
		case <-done:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			stopNotify()
			close(done)
		})
	}
}

// WithRaw runs f with the terminal referred to by file in raw mode, restoring
// it when f returns or panics.
func WithRaw(file *os.File, f func(*RawMode) error) (err error) {
	rm, err := EnableRaw(file)
	if err != nil {
		return err
	}
	stop := rm.RestoreOnSignal()
	defer func() {
		stop()
		err = errutil.Multi(err, rm.Restore())
	}()
	return f(rm)
}
