package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/render"
	"github.com/evan-idocoding/fxkit/rt/scope"
)

type rig struct {
	loop    *render.Loop
	surface *render.Surface
	coord   *scope.Coordinator
}

func newRig(t *testing.T) *rig {
	t.Helper()
	loop := render.NewLoop()
	s := render.NewSurface()
	a := render.NewAnimator(loop, s, render.WithFrameInterval(time.Millisecond))
	c := scope.NewCoordinator(a)
	t.Cleanup(func() {
		_ = c.DisposeAll(context.Background())
		loop.Close()
	})
	return &rig{loop: loop, surface: s, coord: c}
}

// startPulse registers a forever pulse under owner/name.
func (g *rig) startPulse(t *testing.T, owner, name string) {
	t.Helper()
	reg, err := g.coord.GetOrCreateScope(owner)
	if err != nil {
		t.Fatalf("GetOrCreateScope: %v", err)
	}
	cfg := effect.PulseSubtle()
	cfg.PulseCount = effect.Forever
	if _, err := reg.Start(context.Background(), name, g.surface.Node(owner+"/"+name), cfg); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}
