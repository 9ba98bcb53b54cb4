package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/rphilander/lispy/session"
)

// Reads one JSON request from stdin, sends it to lispyd and prints the reply.
// A bare source text (not a JSON object) is sent as an eval request.
func main() {
	sockPath := os.Getenv("LISPY_SOCK")
	if sockPath == "" {
		sockPath = "/tmp/lispy.sock"
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
		os.Exit(1)
	}

	msg := requestFromInput(data)

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := session.WriteMsg(conn, msg); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		os.Exit(1)
	}

	resp, err := session.ReadMsg(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "receive: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func requestFromInput(data []byte) map[string]any {
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil || msg == nil {
		msg = map[string]any{"op": "eval", "expr": string(data)}
	}
	if _, ok := msg["id"]; !ok {
		msg["id"] = session.NextID()
	}
	return msg
}
