package termtest

import (
	"io"
	"testing"
	"time"
)

func TestSource(t *testing.T) {
	s := NewSource("ab", "c")

	mustRead(t, s, 'a')
	if ready, _ := s.WaitForByte(time.Second); !ready {
		t.Errorf("WaitForByte within a chunk -> false, want true")
	}
	mustRead(t, s, 'b')
	if ready, _ := s.WaitForByte(time.Second); ready {
		t.Errorf("WaitForByte at a chunk boundary -> true, want false")
	}
	mustRead(t, s, 'c')
	if ready, _ := s.WaitForByte(time.Second); ready {
		t.Errorf("WaitForByte at the end of the last chunk -> true, want false")
	}
	if ready, _ := s.WaitForByte(time.Second); !ready {
		t.Errorf("WaitForByte at EOF -> false, want true")
	}
	if _, err := s.ReadByte(); err != io.EOF {
		t.Errorf("ReadByte at EOF -> %v, want io.EOF", err)
	}
	if s.Consumed() != 3 {
		t.Errorf("Consumed() -> %d, want 3", s.Consumed())
	}
	if n := len(s.Waits()); n != 4 {
		t.Errorf("got %d recorded waits, want 4", n)
	}
}

func TestSource_ReadByteSkipsGaps(t *testing.T) {
	s := NewSource("a", "", "b")
	mustRead(t, s, 'a')
	mustRead(t, s, 'b')
	if s.Remaining() != "" {
		t.Errorf("Remaining() -> %q, want empty", s.Remaining())
	}
}

func TestSource_Feed(t *testing.T) {
	s := NewSource()
	s.Feed("xy")
	if s.Remaining() != "xy" {
		t.Errorf("Remaining() -> %q, want %q", s.Remaining(), "xy")
	}
}

func mustRead(t *testing.T, s *Source, want byte) {
	t.Helper()
	b, err := s.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte errors: %v", err)
	}
	if b != want {
		t.Errorf("ReadByte -> %q, want %q", b, want)
	}
}
