// Package session serves one long-lived interpreter over a unix socket.
// A single actor goroutine owns the interpreter; connection goroutines hand
// it requests over a channel and wait for the reply.
package session

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rphilander/lispy"
)

// Recorder persists sources that evaluated successfully and can rebuild an
// environment from them. *journal.Journal implements it.
type Recorder interface {
	Append(src string) error
	Replay(env *lispy.Env) (int, error)
	Truncate() error
}

// Server is the actor that owns the interpreter and handles requests.
type Server struct {
	interp *lispy.Interpreter
	out    *bytes.Buffer
	base   map[string]bool // names bound before any user code ran
	rec    Recorder
	traces traceRing

	requests chan request
	done     chan struct{}
	stopOnce sync.Once
	listener net.Listener
}

type request struct {
	msg      map[string]any
	response chan map[string]any
}

// New creates a server with a fresh interpreter. When rec is non-nil its
// entries are replayed first and every later successful eval is appended.
func New(rec Recorder) (*Server, error) {
	s := &Server{
		rec:      rec,
		traces:   traceRing{max: 1000},
		requests: make(chan request, 64),
		done:     make(chan struct{}),
	}
	s.resetInterpreter()

	if rec != nil {
		n, err := rec.Replay(s.interp.Global)
		if err != nil {
			return nil, fmt.Errorf("replay journal: %w", err)
		}
		if n > 0 {
			log.Printf("replayed %d journal entries", n)
		}
	}
	return s, nil
}

func (s *Server) resetInterpreter() {
	s.out = &bytes.Buffer{}
	s.interp = lispy.NewInterpreter(s.out)
	s.base = make(map[string]bool)
	for _, name := range s.interp.Global.Names() {
		s.base[name] = true
	}
}

// Listen binds the unix socket at sockPath, removing a stale one first.
func (s *Server) Listen(sockPath string) error {
	os.Remove(sockPath)
	l, err := net.Listen("unix", sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = l
	return nil
}

// Run starts the actor and accepts connections until Shutdown.
func (s *Server) Run() {
	go s.actorLoop()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.ServeConn(conn)
	}
}

// Shutdown stops the actor and closes the listener.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
	})
}

func (s *Server) actorLoop() {
	for {
		select {
		case req := <-s.requests:
			req.response <- s.handleRequest(req.msg)
		case <-s.done:
			return
		}
	}
}

// sendToActor reports false once the server is shutting down.
func (s *Server) sendToActor(msg map[string]any) (map[string]any, bool) {
	resp := make(chan map[string]any, 1)
	select {
	case s.requests <- request{msg: msg, response: resp}:
	case <-s.done:
		return nil, false
	}
	select {
	case r := <-resp:
		return r, true
	case <-s.done:
		return nil, false
	}
}

// ServeConn answers framed requests on conn until it closes.
func (s *Server) ServeConn(conn net.Conn) {
	defer conn.Close()

	for {
		msg, err := ReadMsg(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("read client message: %v", err)
			}
			return
		}

		resp, ok := s.sendToActor(msg)
		if !ok {
			return
		}
		if err := WriteMsg(conn, resp); err != nil {
			log.Printf("write client response: %v", err)
			return
		}
	}
}

func (s *Server) handleRequest(msg map[string]any) map[string]any {
	id, _ := msg["id"].(string)

	op, _ := msg["op"].(string)
	switch op {
	case "":
		return s.manual(id)
	case "eval":
		return s.handleEval(id, msg)
	case "names":
		return s.handleNames(id)
	case "traces":
		return s.handleTraces(id, msg)
	case "reset":
		return s.handleReset(id)
	default:
		return errorResponse(id, fmt.Sprintf("unknown op: %s", op))
	}
}

func (s *Server) manual(id string) map[string]any {
	names := make([]string, 0)
	for name := range lispy.Builtins(io.Discard) {
		names = append(names, name)
	}
	sort.Strings(names)
	builtins := make([]any, len(names))
	for i, n := range names {
		builtins[i] = n
	}
	forms := make([]any, 0)
	for _, f := range lispy.FormNames() {
		forms = append(forms, f)
	}

	return map[string]any{
		"id": id,
		"ok": true,
		"value": map[string]any{
			"name":    "lispy",
			"version": "1.0.0",
			"ops": map[string]any{
				"eval":   "Evaluate source against the session environment. Params: expr (string). Returns value, repr and output.",
				"names":  "List names defined by the session, sorted.",
				"traces": "Recent eval traces, oldest first. Params: limit (number, optional)",
				"reset":  "Discard the session environment and truncate the journal.",
			},
			"builtins": builtins,
			"forms":    forms,
		},
	}
}

func (s *Server) handleEval(id string, msg map[string]any) map[string]any {
	expr, ok := msg["expr"].(string)
	if !ok {
		return errorResponse(id, "eval: missing 'expr' string")
	}

	s.out.Reset()
	trace := &Trace{
		Source:    expr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	val, err := s.interp.Run(expr)
	output := s.out.String()
	trace.Output = output

	if err != nil {
		trace.Error = err.Error()
		s.traces.add(trace)
		resp := errorResponse(id, err.Error())
		resp["output"] = output
		return resp
	}

	trace.Result = val
	s.traces.add(trace)

	if s.rec != nil && strings.TrimSpace(expr) != "" {
		if err := s.rec.Append(expr); err != nil {
			log.Printf("journal append: %v", err)
		}
	}

	goVal, err := lispy.ValueToGo(val)
	if err != nil {
		return errorResponse(id, fmt.Sprintf("serialize result: %s", err))
	}
	return map[string]any{
		"id":     id,
		"ok":     true,
		"value":  goVal,
		"repr":   val.String(),
		"output": output,
	}
}

func (s *Server) handleNames(id string) map[string]any {
	result := make([]any, 0)
	for _, name := range s.interp.Global.Names() {
		if !s.base[name] {
			result = append(result, name)
		}
	}
	return map[string]any{"id": id, "ok": true, "value": result}
}

func (s *Server) handleTraces(id string, msg map[string]any) map[string]any {
	limit := -1
	if raw, ok := msg["limit"]; ok {
		n, isNum := raw.(float64)
		if !isNum || n < 0 {
			return errorResponse(id, "traces: 'limit' must be a non-negative number")
		}
		limit = int(n)
	}
	traces := s.traces.last(limit)
	result := make([]any, len(traces))
	for i := range traces {
		result[i] = traces[i].ToGo()
	}
	return map[string]any{"id": id, "ok": true, "value": result}
}

func (s *Server) handleReset(id string) map[string]any {
	s.resetInterpreter()
	s.traces.reset()
	if s.rec != nil {
		if err := s.rec.Truncate(); err != nil {
			return errorResponse(id, err.Error())
		}
	}
	return map[string]any{"id": id, "ok": true, "value": "reset"}
}

func errorResponse(id, errMsg string) map[string]any {
	return map[string]any{"id": id, "ok": false, "error": errMsg}
}
