//go:build unix

package term

import (
	"errors"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"src.rawkey.dev/pkg/sys/eunix"
)

// FileSource is a ByteSource reading from a terminal file one byte at a time.
// Reads can be aborted with Stop.
type FileSource struct {
	file  *os.File
	rStop *os.File
	wStop *os.File
	// A mutex that is held when a read is in process.
	mutex  sync.Mutex
	closed bool
}

var _ ByteSource = (*FileSource)(nil)

// NewFileSource creates a FileSource reading from file.
func NewFileSource(file *os.File) (*FileSource, error) {
	rStop, wStop, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &FileSource{file: file, rStop: rStop, wStop: wStop}, nil
}

// ReadByte blocks until a byte is available and returns it.
func (s *FileSource) ReadByte() (byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ready, err := s.wait(-1)
	if err != nil {
		return 0, err
	}
	if !ready {
		// Without a timeout, select only returns when a file is ready.
		return 0, io.ErrNoProgress
	}
	var b [1]byte
	nr, err := s.file.Read(b[:])
	if err != nil {
		return 0, err
	}
	if nr != 1 {
		return 0, io.ErrNoProgress
	}
	return b[0], nil
}

// WaitForByte reports whether the file becomes readable within the timeout.
// The end of input counts as readable.
func (s *FileSource) WaitForByte(timeout time.Duration) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.wait(timeout)
}

func (s *FileSource) wait(timeout time.Duration) (bool, error) {
	if s.closed {
		return false, ErrStopped
	}
	deadline := time.Now().Add(timeout)
	for {
		ready, err := eunix.WaitForRead(timeout, s.file, s.rStop)
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				if timeout >= 0 {
					timeout = max(time.Until(deadline), 0)
				}
				continue
			}
			return false, err
		}
		if ready[1] {
			var b [1]byte
			s.rStop.Read(b[:])
			return false, ErrStopped
		}
		return ready[0], nil
	}
}

// Stop aborts any outstanding read call, which returns ErrStopped. It blocks
// until the read returns. If no read is in process, the next one is aborted.
func (s *FileSource) Stop() error {
	_, err := s.wStop.Write([]byte{'q'})
	s.mutex.Lock()
	s.mutex.Unlock()
	return err
}

// Close stops any outstanding read and releases resources allocated by the
// FileSource. Subsequent reads return ErrStopped. It does not close the
// underlying file.
func (s *FileSource) Close() error {
	s.Stop()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.rStop.Close()
	if err2 := s.wStop.Close(); err == nil {
		err = err2
	}
	return err
}
