//go:build unix

package eunix

import (
	"testing"
	"time"

	"src.rawkey.dev/pkg/testutil"
)

func TestWaitForRead(t *testing.T) {
	r0, w0 := testutil.MustPipe(t)
	r1, _ := testutil.MustPipe(t)

	w0.WriteString("x")
	ready, err := WaitForRead(-1, r0, r1)
	if err != nil {
		t.Error("WaitForRead errors:", err)
	}
	if !ready[0] {
		t.Error("Want ready[0]")
	}
	if ready[1] {
		t.Error("Don't want ready[1]")
	}
}

func TestWaitForRead_Timeout(t *testing.T) {
	r, _ := testutil.MustPipe(t)

	start := time.Now()
	ready, err := WaitForRead(testutil.Scaled(10*time.Millisecond), r)
	if err != nil {
		t.Error("WaitForRead errors:", err)
	}
	if ready[0] {
		t.Error("Don't want ready[0]")
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("WaitForRead returned after %v, want at least 5ms", elapsed)
	}
}

func TestWaitForRead_ClosedWriterIsReady(t *testing.T) {
	r, w := testutil.MustPipe(t)
	w.Close()

	ready, err := WaitForRead(0, r)
	if err != nil {
		t.Error("WaitForRead errors:", err)
	}
	if !ready[0] {
		t.Error("Want ready[0] on EOF")
	}
}
