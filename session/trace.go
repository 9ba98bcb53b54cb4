package session

import "github.com/rphilander/lispy"

// Trace records one eval request: the source, what print wrote, and either
// the result or the error.
type Trace struct {
	Source    string
	Result    lispy.Value
	Output    string
	Error     string // non-empty on error
	Timestamp string // RFC 3339
}

// ToGo converts a Trace to a JSON-ready map.
func (t *Trace) ToGo() map[string]any {
	m := map[string]any{
		"source":    t.Source,
		"output":    t.Output,
		"timestamp": t.Timestamp,
		"result":    nil,
		"error":     nil,
	}
	if t.Error != "" {
		m["error"] = t.Error
	} else {
		m["result"] = t.Result.String()
	}
	return m
}

// traceRing keeps the newest max traces.
type traceRing struct {
	traces []Trace
	max    int
}

func (r *traceRing) add(t *Trace) {
	r.traces = append(r.traces, *t)
	if len(r.traces) > r.max {
		excess := len(r.traces) - r.max
		r.traces = r.traces[excess:]
	}
}

// last returns up to n of the newest traces, oldest first. n < 0 means all.
func (r *traceRing) last(n int) []Trace {
	if n < 0 || n > len(r.traces) {
		n = len(r.traces)
	}
	out := make([]Trace, n)
	copy(out, r.traces[len(r.traces)-n:])
	return out
}

func (r *traceRing) reset() {
	r.traces = nil
}
