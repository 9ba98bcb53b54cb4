package main

import "testing"

func TestRequestFromInput(t *testing.T) {
	msg := requestFromInput([]byte(`{"op": "names"}`))
	if msg["op"] != "names" {
		t.Fatalf("expected names op, got %v", msg)
	}
	if id, _ := msg["id"].(string); id == "" {
		t.Fatal("expected an id to be filled in")
	}

	msg = requestFromInput([]byte(`{"id": "mine", "op": "traces"}`))
	if msg["id"] != "mine" {
		t.Fatalf("existing id must be kept, got %v", msg["id"])
	}

	msg = requestFromInput([]byte("(+ 1 2)\n"))
	if msg["op"] != "eval" || msg["expr"] != "(+ 1 2)\n" {
		t.Fatalf("expected raw source as eval, got %v", msg)
	}

	// Valid JSON that is not an object is still source.
	msg = requestFromInput([]byte("42"))
	if msg["op"] != "eval" || msg["expr"] != "42" {
		t.Fatalf("expected eval of 42, got %v", msg)
	}
}
