package session

import (
	"fmt"
	"testing"

	"github.com/rphilander/lispy"
)

func TestTraceToGo(t *testing.T) {
	tr := &Trace{
		Source:    "(+ 40 2)",
		Result:    lispy.IntVal(42),
		Output:    "",
		Timestamp: "2026-02-27T20:00:00Z",
	}

	m := tr.ToGo()
	if m["source"] != "(+ 40 2)" {
		t.Fatalf("source mismatch: %v", m["source"])
	}
	if m["timestamp"] != "2026-02-27T20:00:00Z" {
		t.Fatalf("timestamp mismatch: %v", m["timestamp"])
	}
	if m["result"] != "42" {
		t.Fatalf("result mismatch: %v", m["result"])
	}
	if m["error"] != nil {
		t.Fatalf("error should be nil, got %v", m["error"])
	}
}

func TestTraceToGoWithError(t *testing.T) {
	tr := &Trace{
		Source:    "(undefined)",
		Output:    "partial\n",
		Error:     "undefined symbol 'undefined'",
		Timestamp: "2026-02-27T20:00:00Z",
	}

	m := tr.ToGo()
	if m["error"] != "undefined symbol 'undefined'" {
		t.Fatalf("error mismatch: %v", m["error"])
	}
	if m["result"] != nil {
		t.Fatalf("result should be nil on error, got %v", m["result"])
	}
	if m["output"] != "partial\n" {
		t.Fatalf("output mismatch: %v", m["output"])
	}
}

func TestTraceRingCap(t *testing.T) {
	r := traceRing{max: 3}
	for i := 0; i < 5; i++ {
		r.add(&Trace{Source: fmt.Sprintf("%d", i)})
	}
	if len(r.traces) != 3 {
		t.Fatalf("expected 3 traces, got %d", len(r.traces))
	}
	// Should have traces 2, 3, 4
	if r.traces[0].Source != "2" {
		t.Fatalf("expected oldest trace '2', got %q", r.traces[0].Source)
	}
	if r.traces[2].Source != "4" {
		t.Fatalf("expected newest trace '4', got %q", r.traces[2].Source)
	}
}

func TestTraceRingLast(t *testing.T) {
	r := traceRing{max: 10}
	for i := 0; i < 4; i++ {
		r.add(&Trace{Source: fmt.Sprintf("%d", i)})
	}
	last := r.last(2)
	if len(last) != 2 || last[0].Source != "2" || last[1].Source != "3" {
		t.Fatalf("expected traces 2 and 3, got %+v", last)
	}
	if all := r.last(-1); len(all) != 4 {
		t.Fatalf("expected all 4 traces, got %d", len(all))
	}
	if over := r.last(99); len(over) != 4 {
		t.Fatalf("expected limit clamped to 4, got %d", len(over))
	}
	r.reset()
	if len(r.last(-1)) != 0 {
		t.Fatal("expected empty ring after reset")
	}
}
