// Command fxdemo drives the effect runtime in a terminal.
//
// Each page owns a scope; switching pages disposes the old page's scope, so its effects
// stop and its elements return to rest before the next page starts its own.
//
// Usage:
//
//	fxdemo [-admin 127.0.0.1:7070] [-token secret] [-log fxdemo.log]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/evan-idocoding/fxkit"
	"github.com/evan-idocoding/fxkit/admin"
	"github.com/evan-idocoding/fxkit/render"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fxdemo:", err)
		os.Exit(1)
	}
}

func run() error {
	adminAddr := flag.String("admin", "", "serve the admin subtree on this address")
	token := flag.String("token", "", "admin write token (writes disabled when empty)")
	logPath := flag.String("log", "", "write logs to this file (discarded when empty)")
	flag.Parse()

	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	pages := demoPages()
	current := 0

	spec := fxkit.KitSpec{
		LogOutput: out,
		Owner:     func() any { return pages[current] },
		Signals:   fxkit.SignalSpec{Disable: true},
	}
	if *adminAddr != "" {
		spec.Admin = &fxkit.AdminSpec{
			Addr:           *adminAddr,
			ReadGuard:      fxkit.IPAllowList("127.0.0.1", "::1"),
			OwnerAccess:    admin.AccessSpec{AllowFunc: func(string) bool { return true }},
			SettingsAccess: admin.AccessSpec{AllowPrefixes: []string{"fx.", "log."}},
		}
		if *token != "" {
			spec.Admin.WriteGuard = fxkit.Tokens([]string{*token})
		}
	}
	kit := fxkit.NewDefaultKit(spec)
	logger := kit.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kit.Start(ctx); err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := kit.Shutdown(sctx); err != nil {
			logger.Warn("shutdown", slog.Any("err", err))
		}
	}()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	d := &demo{kit: kit, pages: pages, current: &current, view: newView(screen, kit.Surface), log: logger}
	return d.loop(ctx, screen)
}

type demo struct {
	kit     *fxkit.Kit
	pages   []*page
	current *int
	view    *view
	log     *slog.Logger
}

func (d *demo) loop(ctx context.Context, screen tcell.Screen) error {
	redraw := make(chan struct{}, 1)
	poke := func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	}
	cancelObserve := d.kit.Surface.Observe(func(render.Change) { poke() })
	defer cancelObserve()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go screen.ChannelEvents(events, quit)

	d.enter(ctx)
	poke()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-redraw:
			d.draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				poke()
			case *tcell.EventKey:
				if !d.key(ctx, ev) {
					return nil
				}
				poke()
			}
		}
	}
}

// key handles one key press; it returns false to quit.
func (d *demo) key(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab, tcell.KeyRight:
		d.switchTo(ctx, (*d.current+1)%len(d.pages))
	case tcell.KeyLeft, tcell.KeyBacktab:
		d.switchTo(ctx, (*d.current+len(d.pages)-1)%len(d.pages))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'r':
			d.enter(ctx)
		case 's':
			if reg, err := d.kit.Current(); err == nil {
				reg.StopAll(0)
			}
		case 'f':
			cur, _ := d.kit.Settings.Lookup(fxkit.KeyFullFidelity)
			next := "false"
			if cur.Value == "false" {
				next = "true"
			}
			if err := d.kit.Settings.SetFromString(fxkit.KeyFullFidelity, next); err != nil {
				d.log.Warn("toggle fidelity", slog.Any("err", err))
			}
			d.enter(ctx)
		}
	}
	return true
}

func (d *demo) switchTo(ctx context.Context, i int) {
	if i == *d.current {
		return
	}
	d.kit.DisposeScope(d.pages[*d.current])
	*d.current = i
	d.enter(ctx)
}

// enter starts (or restarts, superseding by name) the effects of the current page.
func (d *demo) enter(ctx context.Context) {
	reg, err := d.kit.Current()
	if err != nil {
		d.log.Error("current scope", slog.Any("err", err))
		return
	}
	if err := d.pages[*d.current].start(ctx, reg, d.kit.Surface); err != nil {
		d.log.Error("start page effects", slog.String("page", d.pages[*d.current].name), slog.Any("err", err))
	}
}

func (d *demo) draw() {
	full, _ := d.kit.Settings.Lookup(fxkit.KeyFullFidelity)
	d.view.draw(status{
		pages:    d.pages,
		current:  *d.current,
		effects:  d.kit.Coordinator.Snapshot().Effects(),
		fidelity: full.Value != "false",
	})
}
