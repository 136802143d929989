//go:build unix

package sys

import (
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"src.rawkey.dev/pkg/testutil"
)

func TestIsATTY(t *testing.T) {
	r, _ := testutil.MustPipe(t)
	if IsATTY(r) {
		t.Errorf("IsATTY(pipe) -> true, want false")
	}

	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skip("cannot open pty:", err)
	}
	defer ptmx.Close()
	defer tty.Close()
	if !IsATTY(tty) {
		t.Errorf("IsATTY(tty) -> false, want true")
	}
}

func TestNotifyTermination(t *testing.T) {
	sigCh, stop := NotifyTermination()
	defer stop()

	testutil.Must(unix.Kill(os.Getpid(), unix.SIGHUP))
	select {
	case sig := <-sigCh:
		if sig != unix.SIGHUP {
			t.Errorf("got signal %v, want SIGHUP", sig)
		}
	case <-time.After(testutil.Scaled(time.Second)):
		t.Fatal("SIGHUP not delivered")
	}
}

func TestNotifySignals(t *testing.T) {
	sigCh, stop := NotifySignals(unix.SIGWINCH)
	defer stop()

	testutil.Must(unix.Kill(os.Getpid(), unix.SIGWINCH))
	select {
	case sig := <-sigCh:
		if sig != unix.SIGWINCH {
			t.Errorf("got signal %v, want SIGWINCH", sig)
		}
	case <-time.After(testutil.Scaled(time.Second)):
		t.Fatal("SIGWINCH not delivered")
	}
}
