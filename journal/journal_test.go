package journal

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rphilander/lispy"
)

func testJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalAppendEntries(t *testing.T) {
	j := testJournal(t)

	for _, src := range []string{"(def x 1)", "(defn inc (n) (+ n 1))"} {
		if err := j.Append(src); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := j.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Source != "(def x 1)" || entries[1].Source != "(defn inc (n) (+ n 1))" {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if entries[0].Seq >= entries[1].Seq {
		t.Fatalf("expected increasing seq, got %d then %d", entries[0].Seq, entries[1].Seq)
	}
	if entries[0].CreatedAt == "" {
		t.Fatal("expected created_at to be set")
	}
}

func TestJournalReplay(t *testing.T) {
	j := testJournal(t)
	j.Append("(def x 41)")
	j.Append("(defn inc (n) (+ n 1))")
	j.Append(`(print "replayed")`)

	var out bytes.Buffer
	env := lispy.NewGlobalEnv(&out)
	n, err := j.Replay(env)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 entries replayed, got %d", n)
	}
	val, err := lispy.Run("(inc x)", env)
	if err != nil {
		t.Fatal(err)
	}
	if !lispy.ValuesEqual(val, lispy.IntVal(42)) {
		t.Fatalf("expected 42, got %s", val.String())
	}
	if out.String() != "replayed\n" {
		t.Fatalf("expected replayed output, got %q", out.String())
	}
}

func TestJournalReplayStopsAtFailure(t *testing.T) {
	j := testJournal(t)
	j.Append("(def x 1)")
	j.Append("(def x 2)")
	j.Append("(def y 3)")

	env := lispy.NewGlobalEnv(&bytes.Buffer{})
	n, err := j.Replay(env)
	if err == nil {
		t.Fatal("expected replay error on redefinition")
	}
	if !lispy.IsSemantic(err) {
		t.Fatalf("expected wrapped SemanticError, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 entry replayed, got %d", n)
	}
	if env.Has("y") {
		t.Fatal("entries after the failure must not run")
	}
}

func TestJournalTruncate(t *testing.T) {
	j := testJournal(t)
	j.Append("(def x 1)")
	if err := j.Truncate(); err != nil {
		t.Fatal(err)
	}
	entries, err := j.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty journal, got %d entries", len(entries))
	}
}

func TestJournalPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	j.Append("(def greeting \"hi\")")
	j.Close()

	j2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j2.Close()
	entries, err := j2.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Source != "(def greeting \"hi\")" {
		t.Fatalf("expected persisted entry, got %+v", entries)
	}
	if j2.Path() != path {
		t.Fatalf("expected path %s, got %s", path, j2.Path())
	}
}
