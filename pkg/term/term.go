// Package term decodes keys from a terminal in raw mode.
//
// A Decoder reads bytes from a ByteSource and turns them into keys.Key
// values. FileSource is the ByteSource for terminal files, and RawMode puts
// the terminal into the raw mode the Decoder expects.
package term

import (
	"errors"
	"fmt"
	"io"
	"time"

	"src.rawkey.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[term] ")

// ByteSource is the input consumed by a Decoder.
type ByteSource interface {
	// ReadByte blocks until a byte is available and returns it. It returns
	// io.EOF when the input has ended.
	io.ByteReader
	// WaitForByte reports whether a byte, or the end of input, becomes
	// available within the timeout. A negative timeout means no timeout.
	WaitForByte(timeout time.Duration) (bool, error)
}

// ErrStopped is returned when a read is aborted by Stop or Close.
var ErrStopped = errors.New("stopped")

// SeqError is returned alongside a zero keys.Key when a complete escape
// sequence was consumed but not recognized.
type SeqError struct {
	Msg string
	Seq string
}

func (err *SeqError) Error() string {
	return fmt.Sprintf("%s: %q", err.Msg, err.Seq)
}

// IsReadErrorRecoverable returns whether decoding may continue after an error
// returned by Decoder.ReadKey.
func IsReadErrorRecoverable(err error) bool {
	var seqErr *SeqError
	return errors.As(err, &seqErr)
}
