package main

import (
	"context"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/render"
	"github.com/evan-idocoding/fxkit/rt/scope"
)

// element is one drawable label bound to a surface node.
type element struct {
	key   string
	label string
	x, y  int
	color colorful.Color
}

// page is a UI owner: its effects live in its own scope and die with it.
type page struct {
	name     string
	elements []element
	start    func(ctx context.Context, reg *scope.Registry, s *render.Surface) error
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func demoPages() []*page {
	return []*page{
		{
			name: "home",
			elements: []element{
				{key: "home/title", label: "fxkit", x: 4, y: 3, color: mustHex("#e8e8e8")},
				{key: "home/cta", label: "[ Get started ]", x: 4, y: 6, color: mustHex("#ffb347")},
			},
			start: func(ctx context.Context, reg *scope.Registry, s *render.Surface) error {
				if _, err := reg.Start(ctx, "title", s.Node("home/title"), effect.FadeIn()); err != nil {
					return err
				}
				_, err := reg.Start(ctx, "cta", s.Node("home/cta"), effect.PulseCallToAction())
				return err
			},
		},
		{
			name: "gallery",
			elements: []element{
				{key: "gallery/a", label: "[ dunes ]", x: 4, y: 4, color: mustHex("#f4d35e")},
				{key: "gallery/b", label: "[ reef ]", x: 18, y: 4, color: mustHex("#0d9488")},
				{key: "gallery/c", label: "[ tundra ]", x: 31, y: 4, color: mustHex("#93c5fd")},
			},
			start: func(ctx context.Context, reg *scope.Registry, s *render.Surface) error {
				for i, k := range []string{"a", "b", "c"} {
					cfg := effect.FadeIn()
					cfg.Duration = 600 * time.Millisecond
					cfg.InitialDelay = time.Duration(i) * 200 * time.Millisecond
					if _, err := reg.Start(ctx, "tile-"+k, s.Node("gallery/"+k), cfg); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			name: "form",
			elements: []element{
				{key: "form/toast", label: " saved ", x: 4, y: 3, color: mustHex("#86efac")},
				{key: "form/field", label: "email: not-an-address", x: 4, y: 7, color: mustHex("#f87171")},
			},
			start: func(ctx context.Context, reg *scope.Registry, s *render.Surface) error {
				if _, err := reg.Start(ctx, "toast", s.Node("form/toast"), effect.SlideIn(-3)); err != nil {
					return err
				}
				nudge := effect.Nudge(2)
				nudge.InitialDelay = 400 * time.Millisecond
				_, err := reg.Start(ctx, "invalid", s.Node("form/field"), nudge)
				return err
			},
		},
	}
}
