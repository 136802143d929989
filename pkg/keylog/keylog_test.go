package keylog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.rawkey.dev/pkg/keys"
	"src.rawkey.dev/pkg/testutil"
)

func setupKeyLog(t *testing.T) (*KeyLog, string) {
	path := testutil.TempFile(t, "keys.db")
	kl, err := Open(path)
	if err != nil {
		t.Fatal("Open errors:", err)
	}
	t.Cleanup(func() { kl.Close() })
	return kl, path
}

var recorded = []keys.Key{
	keys.K('a'),
	keys.K('A', keys.Arrow, keys.Shift),
	keys.K('C', keys.Ctrl),
	{},
	keys.K(27, keys.Escape),
}

func TestKeyLog_AddAndEntries(t *testing.T) {
	kl, _ := setupKeyLog(t)

	if seq, _ := kl.NextSeq(); seq != 1 {
		t.Errorf("NextSeq() on empty log -> %d, want 1", seq)
	}
	for i, k := range recorded {
		seq, err := kl.Add(k)
		if err != nil {
			t.Fatalf("Add(%v) errors: %v", k, err)
		}
		if seq != i+1 {
			t.Errorf("Add(%v) -> seq %d, want %d", k, seq, i+1)
		}
	}

	entries, err := kl.Entries(0, 0)
	if err != nil {
		t.Fatal("Entries errors:", err)
	}
	var want []Entry
	for i, k := range recorded {
		want = append(want, Entry{i + 1, k})
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Entries (-want +got):\n%s", diff)
	}

	entries, _ = kl.Entries(2, 4)
	if diff := cmp.Diff(want[1:3], entries); diff != "" {
		t.Errorf("Entries(2, 4) (-want +got):\n%s", diff)
	}

	entries, _ = kl.Entries(-1, 0)
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Entries(-1, 0) (-want +got):\n%s", diff)
	}
}

func TestKeyLog_Key(t *testing.T) {
	kl, _ := setupKeyLog(t)
	kl.Add(keys.K('x', keys.Alt))

	k, err := kl.Key(1)
	if err != nil || k != keys.K('x', keys.Alt) {
		t.Errorf("Key(1) -> (%v, %v), want (Alt-x, nil)", k, err)
	}
	if _, err := kl.Key(2); !errors.Is(err, ErrNoMatchingKey) {
		t.Errorf("Key(2) -> err %v, want %v", err, ErrNoMatchingKey)
	}
}

func TestKeyLog_Persists(t *testing.T) {
	kl, path := setupKeyLog(t)
	kl.Add(keys.K('q'))
	testutil.Must(kl.Close())

	kl, err := Open(path)
	if err != nil {
		t.Fatal("reopen errors:", err)
	}
	defer kl.Close()
	if seq, _ := kl.NextSeq(); seq != 2 {
		t.Errorf("NextSeq() after reopen -> %d, want 2", seq)
	}
	if k, _ := kl.Key(1); k != keys.K('q') {
		t.Errorf("Key(1) after reopen -> %v, want q", k)
	}
}

func TestKeyLog_Clear(t *testing.T) {
	kl, _ := setupKeyLog(t)
	kl.Add(keys.K('a'))
	kl.Add(keys.K('b'))

	testutil.Must(kl.Clear())
	entries, _ := kl.Entries(0, 0)
	if len(entries) != 0 {
		t.Errorf("got entries %v after Clear", entries)
	}
	if seq, _ := kl.NextSeq(); seq != 1 {
		t.Errorf("NextSeq() after Clear -> %d, want 1", seq)
	}
}

func TestObserver(t *testing.T) {
	kl, _ := setupKeyLog(t)
	observe := Observer(kl, func(err error) { t.Error(err) })
	for _, k := range recorded {
		observe(k)
	}
	entries, _ := kl.Entries(0, 0)
	if len(entries) != len(recorded) {
		t.Errorf("got %d entries, want %d", len(entries), len(recorded))
	}
}
