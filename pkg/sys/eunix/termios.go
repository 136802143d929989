//go:build unix

// Package eunix provides the Unix primitives used by the terminal reader.
package eunix

import (
	"golang.org/x/sys/unix"
)

// Termios is the terminal attribute structure.
type Termios = unix.Termios

// GetTermios reads the terminal attributes of fd.
func GetTermios(fd int) (*Termios, error) {
	return unix.IoctlGetTermios(fd, getAttrIOCTL)
}

// SetTermios applies the terminal attributes to fd immediately.
func SetTermios(fd int, t *Termios) error {
	return unix.IoctlSetTermios(fd, setAttrNowIOCTL, t)
}

// MakeRaw modifies t to disable line buffering, local echo, signal-generating
// control characters, software flow control and CR to NL translation. Reads
// return as soon as one byte is available.
func MakeRaw(t *Termios) {
	t.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	t.Iflag &^= unix.IXON | unix.ICRNL
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
}
