package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/render"
)

var background = mustHex("#1c1c24")

// view paints pages from surface values.
type view struct {
	screen  tcell.Screen
	surface *render.Surface
	bg      tcell.Style
}

func newView(screen tcell.Screen, s *render.Surface) *view {
	bg := tcell.StyleDefault.Background(toTcell(background))
	screen.SetStyle(bg)
	screen.HideCursor()
	return &view{screen: screen, surface: s, bg: bg}
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

type status struct {
	pages    []*page
	current  int
	effects  int
	fidelity bool
}

func (v *view) draw(st status) {
	v.screen.Clear()
	w, h := v.screen.Size()

	x := 1
	for i, p := range st.pages {
		style := v.bg.Foreground(tcell.ColorGray)
		if i == st.current {
			style = v.bg.Foreground(tcell.ColorWhite).Bold(true).Underline(true)
		}
		x = v.text(x, 0, p.name, style) + 2
	}

	for _, el := range st.pages[st.current].elements {
		v.element(el)
	}

	fid := "full"
	if !st.fidelity {
		fid = "reduced"
	}
	v.text(1, h-2, fmt.Sprintf("effects: %d   fidelity: %s", st.effects, fid), v.bg.Foreground(tcell.ColorGray))
	help := "tab/←/→ page   r replay   s stop   f fidelity   q quit"
	if len(help) < w {
		v.text(1, h-1, help, v.bg.Foreground(tcell.ColorDarkGray))
	}
	v.screen.Show()
}

// element draws el with its animated opacity (blended towards the background in Lab),
// scale (horizontal padding, bold past the first step) and translation (cell offset).
func (v *view) element(el element) {
	opacity := clamp01(v.surface.Value(el.key, effect.PropertyOpacity))
	scale := v.surface.Value(el.key, effect.PropertyScale)
	dx := int(math.Round(v.surface.Value(el.key, effect.PropertyTranslationX)))
	dy := int(math.Round(v.surface.Value(el.key, effect.PropertyTranslationY)))

	fg := el.color.BlendLab(background, 1-opacity)
	style := v.bg.Foreground(toTcell(fg))

	pad := int(math.Round((scale - 1) * 10))
	if pad < 0 {
		pad = 0
	}
	if pad > 0 {
		style = style.Bold(true)
	}
	label := el.label
	for i := 0; i < pad; i++ {
		label = " " + label + " "
	}
	v.text(el.x+dx-pad, el.y+dy, label, style)
}

// text draws s at (x, y) and returns the column after it.
func (v *view) text(x, y int, s string, style tcell.Style) int {
	w, h := v.screen.Size()
	if y < 0 || y >= h {
		return x
	}
	for _, r := range s {
		if x >= 0 && x < w {
			v.screen.SetContent(x, y, r, nil, style)
		}
		x++
	}
	return x
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
