//go:build unix

package sys

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

const sigsChanBufferSize = 16

// TerminationSignals are the signals delivered by NotifyTermination. Signals
// generated from the keyboard are not included, since a terminal in raw mode
// does not generate them.
var TerminationSignals = []os.Signal{unix.SIGTERM, unix.SIGHUP, unix.SIGQUIT}

// NotifySignals returns a channel on which the given signals get delivered,
// and a function that stops the delivery.
func NotifySignals(sigs ...os.Signal) (<-chan os.Signal, func()) {
	sigCh := make(chan os.Signal, sigsChanBufferSize)
	signal.Notify(sigCh, sigs...)
	return sigCh, func() { signal.Stop(sigCh) }
}

// NotifyTermination is like NotifySignals with TerminationSignals.
func NotifyTermination() (<-chan os.Signal, func()) {
	return NotifySignals(TerminationSignals...)
}

// Reraise restores the default disposition of sig and sends it to the current
// process again.
func Reraise(sig os.Signal) error {
	s, ok := sig.(unix.Signal)
	if !ok {
		return nil
	}
	signal.Reset(s)
	return unix.Kill(os.Getpid(), s)
}
