package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rphilander/lispy/session"
)

// bridge forwards tool calls to a lispyd session over one connection.
type bridge struct {
	conn net.Conn
	mu   sync.Mutex
}

// send sends a request to the session and returns the response.
func (b *bridge) send(req map[string]any) (map[string]any, error) {
	req["id"] = session.NextID()
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := session.WriteMsg(b.conn, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	resp, err := session.ReadMsg(b.conn)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return resp, nil
}

// formatResult turns a session response into an MCP tool result.
func formatResult(resp map[string]any) (*mcp.CallToolResult, error) {
	ok, _ := resp["ok"].(bool)
	if !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		return mcp.NewToolResultError(errMsg), nil
	}
	out, err := json.MarshalIndent(resp["value"], "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// formatEval shows printed output first, then the result as the REPL would.
func formatEval(resp map[string]any) *mcp.CallToolResult {
	var b strings.Builder
	output, _ := resp["output"].(string)
	b.WriteString(output)

	if ok, _ := resp["ok"].(bool); !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		fmt.Fprintf(&b, "Error: %s", errMsg)
		return mcp.NewToolResultError(b.String())
	}
	repr, _ := resp["repr"].(string)
	fmt.Fprintf(&b, "=> %s", repr)
	return mcp.NewToolResultText(b.String())
}

func (b *bridge) handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp, err := b.send(map[string]any{"op": "eval", "expr": expr})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatEval(resp), nil
}

func (b *bridge) handleNames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := b.send(map[string]any{"op": "names"})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func (b *bridge) handleTraces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := map[string]any{"op": "traces"}
	if limit := request.GetInt("limit", 0); limit > 0 {
		req["limit"] = limit
	}
	resp, err := b.send(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func (b *bridge) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := b.send(map[string]any{"op": "reset"})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func newMCPServer(b *bridge) *server.MCPServer {
	s := server.NewMCPServer(
		"lispy",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("lispy_eval",
			mcp.WithDescription("Evaluate lispy source in the shared session. Definitions persist between calls. Returns printed output and the result."),
			mcp.WithString("expr",
				mcp.Required(),
				mcp.Description("Source to evaluate, e.g. (defn sq (x) (* x x)) or (sq 12)"),
			),
		),
		b.handleEval,
	)

	s.AddTool(
		mcp.NewTool("lispy_names",
			mcp.WithDescription("List the names defined in the session, sorted. Builtins are not included."),
		),
		b.handleNames,
	)

	s.AddTool(
		mcp.NewTool("lispy_traces",
			mcp.WithDescription("Recent evaluations with their source, output, result or error, oldest first."),
			mcp.WithNumber("limit",
				mcp.Description("Return at most this many traces"),
			),
		),
		b.handleTraces,
	)

	s.AddTool(
		mcp.NewTool("lispy_reset",
			mcp.WithDescription("Discard every session definition, clear traces and truncate the journal."),
		),
		b.handleReset,
	)

	return s
}

func main() {
	sockPath := os.Getenv("LISPY_SOCK")
	if sockPath == "" {
		sockPath = "/tmp/lispy.sock"
	}

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		log.Fatalf("connect to %s: %v", sockPath, err)
	}
	defer conn.Close()
	log.Printf("connected to lispy session: %s", sockPath)

	s := newMCPServer(&bridge{conn: conn})
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
