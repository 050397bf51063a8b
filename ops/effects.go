package ops

import (
	"net/http"
	"strconv"
	"time"

	"github.com/evan-idocoding/fxkit/rt/scope"
	"github.com/evan-idocoding/fxkit/rt/task"
)

// EffectView is the JSON view of one effect.
type EffectView struct {
	Owner     string     `json:"owner"`
	Name      string     `json:"name"`
	Kind      string     `json:"kind"`
	State     string     `json:"state"`
	Target    string     `json:"target"`
	End       string     `json:"end,omitempty"`
	Cycles    int        `json:"cycles,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

func effectView(owner string, st task.Status) EffectView {
	v := EffectView{
		Owner:     owner,
		Name:      st.Name,
		Kind:      st.Kind.String(),
		State:     st.State.String(),
		Target:    st.Target,
		Cycles:    st.Cycles,
		LastError: st.LastError,
	}
	if st.End != task.EndNone {
		v.End = st.End.String()
	}
	if !st.StartedAt.IsZero() {
		t := st.StartedAt
		v.StartedAt = &t
	}
	if !st.EndedAt.IsZero() {
		t := st.EndedAt
		v.EndedAt = &t
	}
	return v
}

// ScopesResponse is the body of ScopesSnapshotHandler.
type ScopesResponse struct {
	OK      bool         `json:"ok"`
	Scopes  int          `json:"scopes"`
	Effects []EffectView `json:"effects"`
}

func (s ScopesResponse) failed() string { return "" }

func (s ScopesResponse) text() string {
	var t textLines
	t.row("scopes", strconv.Itoa(s.Scopes))
	t.row("effects", strconv.Itoa(len(s.Effects)))
	for _, e := range s.Effects {
		end := e.End
		if end == "" {
			end = "-"
		}
		t.row("effect", e.Owner, e.Name, e.Kind, e.State, e.Target, end, strconv.Itoa(e.Cycles))
	}
	return t.String()
}

// ScopesSnapshotHandler lists every live effect of c, sorted by owner then name.
//
// Only GET and HEAD are allowed. An owner guard hides owners it rejects.
//
// Text output:
//
//	scopes\t<n>
//	effects\t<n>
//	effect\t<owner>\t<name>\t<kind>\t<state>\t<target>\t<end>\t<cycles>
func ScopesSnapshotHandler(c *scope.Coordinator, opts ...Option) http.Handler {
	if c == nil {
		panic("ops: nil coordinator")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodGet, http.MethodHead) {
			return
		}
		snap := c.Snapshot()
		resp := ScopesResponse{OK: true, Effects: []EffectView{}}
		for _, sc := range snap.Scopes {
			if !cfg.allowed(sc.Owner) {
				continue
			}
			resp.Scopes++
			for _, st := range sc.Effects {
				resp.Effects = append(resp.Effects, effectView(sc.Owner, st))
			}
		}
		writeResponse(w, r, f, http.StatusOK, resp)
	})
}

// ActionResponse is the body of the effect write handlers.
type ActionResponse struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
	Owner  string `json:"owner,omitempty"`
	Name   string `json:"name,omitempty"`
	// Found reports whether the addressed scope or effect existed.
	Found bool `json:"found"`
}

func (a ActionResponse) failed() string { return "" }

func (a ActionResponse) text() string {
	var t textLines
	fields := []string{a.Action}
	if a.Owner != "" {
		fields = append(fields, a.Owner)
	}
	if a.Name != "" {
		fields = append(fields, a.Name)
	}
	fields = append(fields, strconv.FormatBool(a.Found))
	t.row("ok", fields...)
	return t.String()
}

// ScopeDisposeHandler disposes the scope named by ?owner=.
//
// Only POST is allowed. A missing owner is a 400, a guarded owner a 403. Disposing an
// unknown owner is not an error: the response reports found=false.
func ScopeDisposeHandler(c *scope.Coordinator, opts ...Option) http.Handler {
	if c == nil {
		panic("ops: nil coordinator")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodPost) {
			return
		}
		owner, ok := requireOwner(w, r, f, cfg)
		if !ok {
			return
		}
		found := c.DisposeScope(owner)
		writeResponse(w, r, f, http.StatusOK, ActionResponse{OK: true, Action: "dispose_scope", Owner: owner, Found: found})
	})
}

// EffectStopHandler stops the effect named by ?owner=&name=.
//
// Only POST is allowed. The stop is bounded by the request context.
func EffectStopHandler(c *scope.Coordinator, opts ...Option) http.Handler {
	if c == nil {
		panic("ops: nil coordinator")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodPost) {
			return
		}
		owner, ok := requireOwner(w, r, f, cfg)
		if !ok {
			return
		}
		name := query(r, "name")
		if name == "" {
			writeResponse(w, r, f, http.StatusBadRequest, fail("missing name"))
			return
		}
		found := false
		if reg, ok := c.Lookup(owner); ok {
			found = reg.Stop(r.Context(), name)
		}
		writeResponse(w, r, f, http.StatusOK, ActionResponse{OK: true, Action: "stop_effect", Owner: owner, Name: name, Found: found})
	})
}

// DisposeAllHandler disposes every scope of c.
//
// Only POST is allowed. Owner guards do not apply: mount it only where a global teardown
// is acceptable. If the request ends while another DisposeAll holds the gate the response
// is a 503.
func DisposeAllHandler(c *scope.Coordinator, opts ...Option) http.Handler {
	if c == nil {
		panic("ops: nil coordinator")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodPost) {
			return
		}
		n := len(c.Owners())
		if err := c.DisposeAll(r.Context()); err != nil {
			writeResponse(w, r, f, http.StatusServiceUnavailable, fail("dispose all: "+err.Error()))
			return
		}
		writeResponse(w, r, f, http.StatusOK, ActionResponse{OK: true, Action: "dispose_all", Found: n > 0})
	})
}

func requireOwner(w http.ResponseWriter, r *http.Request, f Format, cfg config) (string, bool) {
	owner := query(r, "owner")
	if owner == "" {
		writeResponse(w, r, f, http.StatusBadRequest, fail("missing owner"))
		return "", false
	}
	if !cfg.allowed(owner) {
		writeResponse(w, r, f, http.StatusForbidden, fail("owner not allowed"))
		return "", false
	}
	return owner, true
}
