package prog_test

import (
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"src.rawkey.dev/pkg/logutil"
	. "src.rawkey.dev/pkg/prog"
	"src.rawkey.dev/pkg/prog/progtest"
	"src.rawkey.dev/pkg/testutil"
)

var (
	Test = progtest.Test
	That = progtest.That
)

func TestCommonFlagHandling(t *testing.T) {
	Test(t, testProgram{},
		That("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		That("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		That("-help").
			WritesStdoutContaining("Usage: keydump [flags]"),

		That("extra").
			ExitsWith(2).
			WritesStderrContaining("unexpected arguments: [extra]"),
	)
}

func TestLogFlag(t *testing.T) {
	t.Cleanup(func() { logutil.SetOutput(io.Discard) })
	logPath := testutil.TempFile(t, "log")
	Test(t, testProgram{}, That("-log", logPath).DoesNothing())
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestFlagsArePassed(t *testing.T) {
	var got *Flags
	Test(t, testProgram{capture: &got},
		That("-json", "-timeout", "20ms", "-record", "keys.db").DoesNothing())

	if got == nil {
		t.Fatal("program not run")
	}
	if !got.JSON || got.EscapeTimeout != 20*time.Millisecond || got.Record != "keys.db" {
		t.Errorf("got flags %+v", got)
	}
	for _, name := range []string{"json", "timeout", "record"} {
		if !got.Set[name] {
			t.Errorf("flag %s not recorded as set", name)
		}
	}
	if got.Set["replay"] {
		t.Errorf("flag replay recorded as set")
	}
}

func TestBadUsageError(t *testing.T) {
	Test(t, testProgram{returnErr: BadUsage("lorem ipsum")},
		That().ExitsWith(2).WritesStderrContaining("lorem ipsum\nUsage:"))
}

func TestWrappedBadUsageError(t *testing.T) {
	Test(t, testProgram{returnErr: fmt.Errorf("config: %w", BadUsage("bad quit key"))},
		That().ExitsWith(2).WritesStderrContaining("config: bad quit key\nUsage:"))
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		That().ExitsWith(3))
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		That().ExitsWith(0))
}

func TestWrappedExitError(t *testing.T) {
	Test(t, testProgram{returnErr: fmt.Errorf("wrapped: %w", Exit(4))},
		That().ExitsWith(4).WritesStderr("wrapped: \n"))
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{notSuitable: true},
		That().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}),
		That().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{notSuitable: true}),
		That().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
	capture     **Flags
}

func (p testProgram) Run(fds [3]*os.File, f *Flags) error {
	if p.notSuitable {
		return ErrNotSuitable
	}
	if p.capture != nil {
		*p.capture = f
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}
