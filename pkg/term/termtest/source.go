// Package termtest provides a deterministic term.ByteSource for tests.
package termtest

import (
	"io"
	"sync"
	"time"
)

// Source replays scripted input. Input is fed in chunks: the bytes of one
// chunk arrive together, and the gap between two chunks behaves like a pause
// longer than any timeout passed to WaitForByte. No call ever sleeps.
//
// A Source is safe for concurrent use.
type Source struct {
	mu       sync.Mutex
	chunks   [][]byte
	consumed int
	waits    []time.Duration
}

// NewSource creates a Source with the given chunks.
func NewSource(chunks ...string) *Source {
	s := &Source{}
	s.Feed(chunks...)
	return s
}

// Feed appends chunks to the input.
func (s *Source) Feed(chunks ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks = append(s.chunks, []byte(chunk))
	}
}

// ReadByte returns the next byte, skipping over gaps. It returns io.EOF when
// all chunks have been consumed.
func (s *Source) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.chunks) > 0 && len(s.chunks[0]) == 0 {
		s.chunks = s.chunks[1:]
	}
	if len(s.chunks) == 0 {
		return 0, io.EOF
	}
	b := s.chunks[0][0]
	s.chunks[0] = s.chunks[0][1:]
	s.consumed++
	return b, nil
}

// WaitForByte returns true if the current chunk has more bytes, or if the
// input has ended. At the end of a chunk it returns false and the gap is
// considered elapsed.
func (s *Source) WaitForByte(timeout time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, timeout)
	if len(s.chunks) == 0 {
		return true, nil
	}
	if len(s.chunks[0]) > 0 {
		return true, nil
	}
	s.chunks = s.chunks[1:]
	return false, nil
}

// Consumed returns the number of bytes read so far.
func (s *Source) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed
}

// Remaining returns the bytes not read yet, with gaps removed.
func (s *Source) Remaining() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rest []byte
	for _, chunk := range s.chunks {
		rest = append(rest, chunk...)
	}
	return string(rest)
}

// Waits returns the timeouts passed to WaitForByte so far.
func (s *Source) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}
